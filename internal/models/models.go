package models

import "time"

// DateLayout is the canonical wire and storage format for rollup dates.
const DateLayout = "2006-01-02"

// DailyRollup holds the per-(username, date) aggregate maintained
// incrementally from record lifecycle events. Heart-rate statistics carry
// the running mean and sample count; the exact sum of contributing samples
// is always AvgHeartRate * HeartRateSampleCount.
type DailyRollup struct {
	Username string    `json:"username"`
	Date     time.Time `json:"date"`

	TotalSteps int64   `json:"total_steps"`
	SleepHours float64 `json:"sleep_hours"`

	AvgHeartRate         float64 `json:"avg_heart_rate"`
	HeartRateSampleCount int     `json:"heart_rate_sample_count"`
	MinHeartRate         *int    `json:"min_heart_rate,omitempty"`
	MaxHeartRate         *int    `json:"max_heart_rate,omitempty"`

	AvgWeight         float64 `json:"avg_weight"`
	WeightSampleCount int     `json:"weight_sample_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDailyRollup creates an empty rollup for the given key.
func NewDailyRollup(username string, date time.Time) *DailyRollup {
	now := time.Now().UTC()
	return &DailyRollup{
		Username:  username,
		Date:      NormalizeDate(date),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeDate truncates a timestamp to its UTC calendar day.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LifetimeStats is the coarse per-user counter updated only when records
// are created; updates and deletes never compensate it.
type LifetimeStats struct {
	Username     string  `json:"username"`
	TotalSteps   int64   `json:"total_steps"`
	RecordCount  int64   `json:"record_count"`
	AverageSteps float64 `json:"average_steps"`
}
