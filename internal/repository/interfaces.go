package repository

import (
	"context"
	"time"

	"github.com/vitalflow/analytics/internal/models"
)

// RollupRepository defines the interface for daily rollup data access.
// Get returns (nil, nil) when no rollup exists for the key; a missing
// rollup is a normal condition, not an error.
type RollupRepository interface {
	Get(ctx context.Context, username string, date time.Time) (*models.DailyRollup, error)
	Upsert(ctx context.Context, rollup *models.DailyRollup) error
	// GetPreviousDay returns the rollup for the calendar day immediately
	// before date, or (nil, nil) when absent.
	GetPreviousDay(ctx context.Context, username string, date time.Time) (*models.DailyRollup, error)
	// GetRange returns all rollups with since <= date <= until, ordered by
	// date ascending.
	GetRange(ctx context.Context, username string, since, until time.Time) ([]models.DailyRollup, error)
}

// CounterRepository defines the interface for lifetime counter data access.
// Get returns (nil, nil) when the user has no counter yet.
type CounterRepository interface {
	Get(ctx context.Context, username string) (*models.LifetimeStats, error)
	Upsert(ctx context.Context, stats *models.LifetimeStats) error
}
