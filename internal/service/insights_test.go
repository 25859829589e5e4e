package service

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vitalflow/analytics/internal/models"
)

func rollupWith(steps int64, sleep, avgHR float64) models.DailyRollup {
	return models.DailyRollup{
		Username:     "alice",
		Date:         day("2025-03-10"),
		TotalSteps:   steps,
		SleepHours:   sleep,
		AvgHeartRate: avgHR,
	}
}

func insightTypes(insights []models.Insight) []models.InsightType {
	types := make([]models.InsightType, 0, len(insights))
	for _, in := range insights {
		types = append(types, in.Type)
	}
	return types
}

func TestEvaluateRulesAllFiring(t *testing.T) {
	today := rollupWith(12000, 5, 105)
	yesterday := rollupWith(5000, 7, 80)

	insights := EvaluateRules(today, &yesterday)

	want := []models.InsightType{
		models.InsightTypeAnomaly,
		models.InsightTypeRecommendation,
		models.InsightTypeAchievement,
		models.InsightTypeTrend,
	}
	if got := insightTypes(insights); !reflect.DeepEqual(got, want) {
		t.Errorf("types = %v, want %v", got, want)
	}
}

func TestEvaluateRulesQuietDay(t *testing.T) {
	// Mid-range steps, healthy sleep, normal heart rate, no yesterday.
	if insights := EvaluateRules(rollupWith(5000, 8, 70), nil); len(insights) != 0 {
		t.Errorf("expected no insights, got %v", insightTypes(insights))
	}
}

func TestEvaluateRulesHeartRate(t *testing.T) {
	insights := EvaluateRules(rollupWith(5000, 8, 105.4), nil)
	if len(insights) != 1 || insights[0].Type != models.InsightTypeAnomaly {
		t.Fatalf("got %v, want single anomaly", insightTypes(insights))
	}
	if insights[0].Severity != models.SeverityWarning {
		t.Errorf("Severity = %s, want %s", insights[0].Severity, models.SeverityWarning)
	}
	if !strings.Contains(insights[0].Message, "105.4 bpm") {
		t.Errorf("message missing formatted rate: %q", insights[0].Message)
	}

	// Exactly 100 does not fire; the comparison is strict.
	if insights := EvaluateRules(rollupWith(5000, 8, 100), nil); len(insights) != 0 {
		t.Errorf("boundary 100 bpm fired: %v", insightTypes(insights))
	}
}

func TestEvaluateRulesSleep(t *testing.T) {
	insights := EvaluateRules(rollupWith(5000, 5.5, 70), nil)
	if len(insights) != 1 || insights[0].Type != models.InsightTypeRecommendation {
		t.Fatalf("got %v, want single recommendation", insightTypes(insights))
	}
	if !strings.Contains(insights[0].Message, "5.5 hours") {
		t.Errorf("message missing hours: %q", insights[0].Message)
	}

	// Whole-hour values keep one decimal place.
	insights = EvaluateRules(rollupWith(5000, 5, 70), nil)
	if !strings.Contains(insights[0].Message, "slept 5.0 hours") {
		t.Errorf("message = %q, want one decimal place", insights[0].Message)
	}

	// Zero means unlogged and raises nothing; six is the exclusive bound.
	for _, sleep := range []float64{0, 6, 8} {
		if insights := EvaluateRules(rollupWith(5000, sleep, 70), nil); len(insights) != 0 {
			t.Errorf("sleep=%g fired: %v", sleep, insightTypes(insights))
		}
	}
}

func TestEvaluateRulesStepBands(t *testing.T) {
	tests := []struct {
		steps int64
		want  []models.InsightType
	}{
		{0, []models.InsightType{models.InsightTypeMotivation}},
		{999, []models.InsightType{models.InsightTypeMotivation}},
		{1000, nil},
		{9999, nil},
		{10000, []models.InsightType{models.InsightTypeAchievement}},
		{15000, []models.InsightType{models.InsightTypeAchievement}},
	}
	for _, tt := range tests {
		got := insightTypes(EvaluateRules(rollupWith(tt.steps, 8, 70), nil))
		if len(got) == 0 {
			got = nil
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("steps=%d: got %v, want %v", tt.steps, got, tt.want)
		}
	}
}

func TestEvaluateRulesTrendBoundary(t *testing.T) {
	yesterday := rollupWith(1000, 8, 70)

	// 1200 is exactly 20% more and must not fire, nor anything below it.
	for _, steps := range []int64{1199, 1200} {
		if insights := EvaluateRules(rollupWith(steps, 8, 70), &yesterday); len(insights) != 0 {
			t.Errorf("steps=%d fired: %v", steps, insightTypes(insights))
		}
	}
	insights := EvaluateRules(rollupWith(1300, 8, 70), &yesterday)
	if len(insights) != 1 || insights[0].Type != models.InsightTypeTrend {
		t.Errorf("1300 vs 1000: got %v, want trend", insightTypes(insights))
	}

	// Without yesterday the rule is skipped entirely.
	if insights := EvaluateRules(rollupWith(20000, 8, 70), nil); len(insights) != 1 {
		t.Errorf("missing yesterday: got %v, want achievement only", insightTypes(insights))
	}
}

func TestEvaluateRulesPurity(t *testing.T) {
	today := rollupWith(12000, 5, 105)
	yesterday := rollupWith(5000, 7, 80)

	first := EvaluateRules(today, &yesterday)
	second := EvaluateRules(today, &yesterday)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs yielded different insights")
	}
	for _, in := range first {
		if in.ID != "" || !in.GeneratedAt.IsZero() {
			t.Error("rule evaluation must not stamp identity or time")
		}
	}
}
