package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalflow/analytics/internal/models"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestMemoryRollupRoundTrip(t *testing.T) {
	repo := NewMemoryRollupRepository()
	ctx := context.Background()
	d := day(t, "2025-03-10")

	got, err := repo.Get(ctx, "alice", d)
	require.NoError(t, err)
	assert.Nil(t, got, "absent rollup should be nil without error")

	rollup := models.NewDailyRollup("alice", d)
	rollup.TotalSteps = 5000
	require.NoError(t, repo.Upsert(ctx, rollup))

	got, err = repo.Get(ctx, "alice", d)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(5000), got.TotalSteps)
	assert.False(t, got.UpdatedAt.IsZero(), "Upsert should stamp UpdatedAt")
}

func TestMemoryRollupGetReturnsCopy(t *testing.T) {
	repo := NewMemoryRollupRepository()
	ctx := context.Background()
	d := day(t, "2025-03-10")

	rollup := models.NewDailyRollup("alice", d)
	rollup.TotalSteps = 5000
	require.NoError(t, repo.Upsert(ctx, rollup))

	got, err := repo.Get(ctx, "alice", d)
	require.NoError(t, err)
	got.TotalSteps = 99999

	again, err := repo.Get(ctx, "alice", d)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), again.TotalSteps, "mutating a returned rollup must not affect the store")
}

func TestMemoryRollupNormalizesDates(t *testing.T) {
	repo := NewMemoryRollupRepository()
	ctx := context.Background()

	rollup := models.NewDailyRollup("alice", day(t, "2025-03-10"))
	require.NoError(t, repo.Upsert(ctx, rollup))

	// A mid-day timestamp on the same date resolves to the same rollup.
	noon := time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)
	got, err := repo.Get(ctx, "alice", noon)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestMemoryRollupGetPreviousDay(t *testing.T) {
	repo := NewMemoryRollupRepository()
	ctx := context.Background()

	prev := models.NewDailyRollup("alice", day(t, "2025-03-09"))
	prev.TotalSteps = 1000
	require.NoError(t, repo.Upsert(ctx, prev))

	got, err := repo.GetPreviousDay(ctx, "alice", day(t, "2025-03-10"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1000), got.TotalSteps)

	missing, err := repo.GetPreviousDay(ctx, "alice", day(t, "2025-03-09"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryRollupGetRange(t *testing.T) {
	repo := NewMemoryRollupRepository()
	ctx := context.Background()

	for _, d := range []string{"2025-03-05", "2025-03-08", "2025-03-10", "2025-03-12"} {
		require.NoError(t, repo.Upsert(ctx, models.NewDailyRollup("alice", day(t, d))))
	}
	require.NoError(t, repo.Upsert(ctx, models.NewDailyRollup("bob", day(t, "2025-03-09"))))

	rollups, err := repo.GetRange(ctx, "alice", day(t, "2025-03-08"), day(t, "2025-03-10"))
	require.NoError(t, err)
	require.Len(t, rollups, 2, "range is inclusive on both ends, scoped to the user")
	assert.Equal(t, day(t, "2025-03-08"), rollups[0].Date)
	assert.Equal(t, day(t, "2025-03-10"), rollups[1].Date)
}

func TestMemoryCounterRoundTrip(t *testing.T) {
	repo := NewMemoryCounterRepository()
	ctx := context.Background()

	got, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)

	stats := &models.LifetimeStats{Username: "alice", TotalSteps: 12000, RecordCount: 2, AverageSteps: 6000}
	require.NoError(t, repo.Upsert(ctx, stats))

	got, err = repo.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(12000), got.TotalSteps)
	assert.Equal(t, int64(2), got.RecordCount)
}
