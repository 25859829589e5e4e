package service

import (
	"fmt"

	"github.com/vitalflow/analytics/internal/models"
)

const (
	// HighHeartRateBPM is the average heart rate above which an anomaly
	// insight is raised.
	HighHeartRateBPM = 100.0

	// ShortSleepHours is the exclusive upper bound of the short-sleep band;
	// zero hours means no sleep was logged and raises nothing.
	ShortSleepHours = 6.0

	// DailyStepGoal triggers the achievement insight.
	DailyStepGoal = 10000

	// SedentarySteps triggers the motivation insight. Values in
	// [SedentarySteps, DailyStepGoal) trigger neither.
	SedentarySteps = 1000

	// TrendStepFactor is the day-over-day multiplier for the upward
	// activity trend.
	TrendStepFactor = 1.2
)

// EvaluateRules derives insights from today's rollup and, when available,
// yesterday's. It is a pure function: identical inputs yield identical
// sequences, in rule order. New rules append to the sequence; earlier rules
// never change position.
func EvaluateRules(today models.DailyRollup, yesterday *models.DailyRollup) []models.Insight {
	var insights []models.Insight

	// 1. Anomaly: elevated average heart rate.
	if today.AvgHeartRate > HighHeartRateBPM {
		insights = append(insights, models.Insight{
			Username: today.Username,
			Type:     models.InsightTypeAnomaly,
			Severity: models.SeverityWarning,
			Message: fmt.Sprintf(
				"Your average heart rate today was high (%.1f bpm). Resting heart rates above 100 bpm may indicate stress or other issues.",
				today.AvgHeartRate),
		})
	}

	// 2. Recommendation: short sleep.
	if today.SleepHours > 0 && today.SleepHours < ShortSleepHours {
		insights = append(insights, models.Insight{
			Username: today.Username,
			Type:     models.InsightTypeRecommendation,
			Severity: models.SeverityInfo,
			Message: fmt.Sprintf(
				"You only slept %.1f hours. Adequate sleep (7-9 hours) is crucial for recovery.",
				today.SleepHours),
		})
	}

	// 3. Achievement or motivation, mutually exclusive.
	if today.TotalSteps >= DailyStepGoal {
		insights = append(insights, models.Insight{
			Username: today.Username,
			Type:     models.InsightTypeAchievement,
			Severity: models.SeverityInfo,
			Message:  "Great job! You hit 10,000 steps today. Keep staying active!",
		})
	} else if today.TotalSteps < SedentarySteps {
		insights = append(insights, models.Insight{
			Username: today.Username,
			Type:     models.InsightTypeMotivation,
			Severity: models.SeverityInfo,
			Message:  "You've been quite sedentary today (<1000 steps). Try taking a short walk.",
		})
	}

	// 4. Trend: strictly more than 20% over yesterday.
	if yesterday != nil && float64(today.TotalSteps) > float64(yesterday.TotalSteps)*TrendStepFactor {
		insights = append(insights, models.Insight{
			Username: today.Username,
			Type:     models.InsightTypeTrend,
			Severity: models.SeverityInfo,
			Message:  "Your activity levels are trending up! You walked 20% more than yesterday.",
		})
	}

	return insights
}
