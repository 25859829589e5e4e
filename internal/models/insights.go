package models

import "time"

// InsightType categorizes a generated insight.
type InsightType string

const (
	InsightTypeAnomaly        InsightType = "Anomaly"
	InsightTypeRecommendation InsightType = "Recommendation"
	InsightTypeAchievement    InsightType = "Achievement"
	InsightTypeMotivation     InsightType = "Motivation"
	InsightTypeTrend          InsightType = "Trend"
)

// Severity ranks how urgent an insight is.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Insight is a derived, human-readable observation about a user's day.
// Insights are immutable once produced; the engine hands them off to the
// publisher and keeps no further state.
type Insight struct {
	ID          string      `json:"id,omitempty"`
	Username    string      `json:"username"`
	Type        InsightType `json:"type"`
	Severity    Severity    `json:"severity"`
	Message     string      `json:"message"`
	GeneratedAt time.Time   `json:"timestamp"`
}
