package service

import (
	"context"
	"time"

	"github.com/vitalflow/analytics/internal/models"
)

// Applier applies decoded record lifecycle events to the per-day rollups.
// Apply serializes events sharing a (username, date) key; events for
// different keys may run concurrently. Insights are returned only for
// creation events; updates and deletes compensate the aggregates silently.
type Applier interface {
	Apply(ctx context.Context, event models.RecordEvent) ([]models.Insight, error)
}

// ReportingService exposes the read paths used by reporting collaborators.
type ReportingService interface {
	GetRollup(ctx context.Context, username string, date time.Time) (*models.DailyRollup, error)
	GetRecentRollups(ctx context.Context, username string, since time.Time) ([]models.DailyRollup, error)
	GetLifetimeStats(ctx context.Context, username string) (*models.LifetimeStats, error)
	GetWeeklySummary(ctx context.Context, username string) (string, error)
}
