package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vitalflow/analytics/internal/models"
)

type memoryRollupRepository struct {
	mu      sync.RWMutex
	rollups map[string]models.DailyRollup // username|date -> rollup
}

// NewMemoryRollupRepository creates an in-memory rollup store. Intended for
// tests and single-process deployments without durability requirements.
func NewMemoryRollupRepository() RollupRepository {
	return &memoryRollupRepository{
		rollups: make(map[string]models.DailyRollup),
	}
}

func rollupKey(username string, date time.Time) string {
	return username + "|" + models.NormalizeDate(date).Format(models.DateLayout)
}

func (r *memoryRollupRepository) Get(ctx context.Context, username string, date time.Time) (*models.DailyRollup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rollup, ok := r.rollups[rollupKey(username, date)]
	if !ok {
		return nil, nil
	}
	copied := rollup
	return &copied, nil
}

func (r *memoryRollupRepository) Upsert(ctx context.Context, rollup *models.DailyRollup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rollup.UpdatedAt = time.Now().UTC()
	r.rollups[rollupKey(rollup.Username, rollup.Date)] = *rollup
	return nil
}

func (r *memoryRollupRepository) GetPreviousDay(ctx context.Context, username string, date time.Time) (*models.DailyRollup, error) {
	return r.Get(ctx, username, models.NormalizeDate(date).AddDate(0, 0, -1))
}

func (r *memoryRollupRepository) GetRange(ctx context.Context, username string, since, until time.Time) ([]models.DailyRollup, error) {
	since = models.NormalizeDate(since)
	until = models.NormalizeDate(until)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.DailyRollup
	for _, rollup := range r.rollups {
		if rollup.Username != username {
			continue
		}
		if rollup.Date.Before(since) || rollup.Date.After(until) {
			continue
		}
		result = append(result, rollup)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

type memoryCounterRepository struct {
	mu       sync.RWMutex
	counters map[string]models.LifetimeStats
}

// NewMemoryCounterRepository creates an in-memory lifetime counter store.
func NewMemoryCounterRepository() CounterRepository {
	return &memoryCounterRepository{
		counters: make(map[string]models.LifetimeStats),
	}
}

func (r *memoryCounterRepository) Get(ctx context.Context, username string) (*models.LifetimeStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats, ok := r.counters[username]
	if !ok {
		return nil, nil
	}
	copied := stats
	return &copied, nil
}

func (r *memoryCounterRepository) Upsert(ctx context.Context, stats *models.LifetimeStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[stats.Username] = *stats
	return nil
}
