package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vitalflow/analytics/internal/logger"
	"github.com/vitalflow/analytics/internal/metrics"
	"github.com/vitalflow/analytics/internal/models"
	"github.com/vitalflow/analytics/internal/publisher"
	"github.com/vitalflow/analytics/internal/repository"
	"github.com/vitalflow/analytics/internal/stats"
)

type applier struct {
	rollupRepo  repository.RollupRepository
	counterRepo repository.CounterRepository
	pub         publisher.Publisher
	collector   *metrics.Collector
	log         logger.Logger
	keys        *keyedMutex
}

// NewApplier creates the event applier. All collaborators are injected;
// the applier owns no global state beyond its per-key locks.
func NewApplier(
	rollupRepo repository.RollupRepository,
	counterRepo repository.CounterRepository,
	pub publisher.Publisher,
	collector *metrics.Collector,
	log logger.Logger,
) Applier {
	return &applier{
		rollupRepo:  rollupRepo,
		counterRepo: counterRepo,
		pub:         pub,
		collector:   collector,
		log:         log,
		keys:        newKeyedMutex(),
	}
}

// Apply dispatches the event by kind while holding the (username, date)
// lock for the whole read-modify-write, so two events for the same key
// never interleave. Store failures propagate to the caller; the transport
// decides on redelivery.
func (a *applier) Apply(ctx context.Context, event models.RecordEvent) ([]models.Insight, error) {
	start := time.Now()

	unlock := a.keys.Lock(event.Key())
	defer unlock()

	var insights []models.Insight
	var err error

	switch event.Kind {
	case models.KindCreated:
		insights, err = a.applyCreated(ctx, event)
	case models.KindUpdated:
		err = a.applyUpdated(ctx, event)
	case models.KindDeleted:
		err = a.applyDeleted(ctx, event)
	default:
		err = fmt.Errorf("unknown event kind %q", event.Kind)
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	a.collector.RecordEvent(string(event.Kind), status, time.Since(start).Seconds())

	return insights, err
}

func (a *applier) applyCreated(ctx context.Context, event models.RecordEvent) ([]models.Insight, error) {
	fields := event.Created
	if fields == nil {
		return nil, fmt.Errorf("created event for %s has no payload", event.Username)
	}

	rollup, err := a.rollupRepo.Get(ctx, event.Username, event.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to load rollup: %w", err)
	}
	if rollup == nil {
		rollup = models.NewDailyRollup(event.Username, event.Date)
	}

	rollup.TotalSteps += fields.Steps
	rollup.SleepHours += fields.SleepHours

	if fields.HeartRate != nil {
		v := *fields.HeartRate
		rollup.AvgHeartRate, rollup.HeartRateSampleCount =
			stats.Add(rollup.AvgHeartRate, rollup.HeartRateSampleCount, float64(v))
		rollup.MinHeartRate = stats.WidenMin(rollup.MinHeartRate, v)
		rollup.MaxHeartRate = stats.WidenMax(rollup.MaxHeartRate, v)
	}

	// Weight is last-write-wins; the sample count only records how many
	// records contributed one.
	if fields.Weight > 0 {
		rollup.AvgWeight = fields.Weight
		rollup.WeightSampleCount++
	}

	if err := a.rollupRepo.Upsert(ctx, rollup); err != nil {
		return nil, fmt.Errorf("failed to persist rollup: %w", err)
	}

	if err := a.updateLifetimeStats(ctx, event.Username, fields.Steps); err != nil {
		return nil, err
	}

	return a.generateInsights(ctx, rollup)
}

// updateLifetimeStats maintains the per-user lifetime counter. Only the
// creation path reaches here; updates and deletes leave the counter stale
// on purpose.
//
// The counter is shared by every date of one user, so its read-modify-write
// serializes on the bare username. The caller already holds the composite
// (username, date) lock; bare usernames never collide with composite keys
// (those always contain the separator), and the two locks are always taken
// in this order, so no cycle can form.
func (a *applier) updateLifetimeStats(ctx context.Context, username string, steps int64) error {
	unlock := a.keys.Lock(username)
	defer unlock()

	counter, err := a.counterRepo.Get(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to load lifetime stats: %w", err)
	}
	if counter == nil {
		counter = &models.LifetimeStats{Username: username}
	}

	counter.TotalSteps += steps
	counter.RecordCount++
	if counter.RecordCount > 0 {
		counter.AverageSteps = float64(counter.TotalSteps) / float64(counter.RecordCount)
	}

	if err := a.counterRepo.Upsert(ctx, counter); err != nil {
		return fmt.Errorf("failed to persist lifetime stats: %w", err)
	}
	return nil
}

// generateInsights evaluates the rules against the freshly persisted rollup
// and yesterday's, then hands each insight to the publisher. Publication is
// best-effort: a failure is logged and the insight dropped, never rolled
// back into the already-persisted aggregate.
func (a *applier) generateInsights(ctx context.Context, rollup *models.DailyRollup) ([]models.Insight, error) {
	yesterday, err := a.rollupRepo.GetPreviousDay(ctx, rollup.Username, rollup.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous day rollup: %w", err)
	}

	insights := EvaluateRules(*rollup, yesterday)
	now := time.Now().UTC()

	for i := range insights {
		insights[i].ID = uuid.NewString()
		insights[i].GeneratedAt = now
		a.collector.RecordInsight(string(insights[i].Type))

		if err := a.pub.Publish(ctx, insights[i]); err != nil {
			a.collector.RecordPublishFailure()
			a.log.Error("failed to publish insight",
				logger.String("username", insights[i].Username),
				logger.String("type", string(insights[i].Type)),
				logger.Err(err),
			)
		}
	}

	return insights, nil
}

func (a *applier) applyUpdated(ctx context.Context, event models.RecordEvent) error {
	fields := event.Updated
	if fields == nil {
		return fmt.Errorf("updated event for %s has no payload", event.Username)
	}

	rollup, err := a.rollupRepo.Get(ctx, event.Username, event.Date)
	if err != nil {
		return fmt.Errorf("failed to load rollup: %w", err)
	}
	if rollup == nil {
		// The day was never aggregated, e.g. the aggregator started after
		// the record existed. Nothing to compensate.
		a.log.Debug("update for unaggregated day, skipping",
			logger.String("username", event.Username),
			logger.String("date", event.Date.Format(models.DateLayout)),
		)
		return nil
	}

	for field, newV := range fields.Changed {
		oldV, hadOld := fields.Previous[field]

		switch field {
		case models.FieldSteps:
			rollup.TotalSteps += int64(newV) - int64(oldV)
		case models.FieldSleepHours:
			rollup.SleepHours += newV - oldV
		case models.FieldHeartRate:
			// Replace the old sample in the running mean at fixed count.
			// Min/max are left as-is and may go stale (too wide).
			if hadOld && rollup.HeartRateSampleCount > 0 {
				rollup.AvgHeartRate = stats.Replace(
					rollup.AvgHeartRate, rollup.HeartRateSampleCount, oldV, newV)
			}
		}
	}

	a.warnOnNegative(rollup)

	if err := a.rollupRepo.Upsert(ctx, rollup); err != nil {
		return fmt.Errorf("failed to persist rollup: %w", err)
	}
	return nil
}

func (a *applier) applyDeleted(ctx context.Context, event models.RecordEvent) error {
	fields := event.Deleted
	if fields == nil {
		return fmt.Errorf("deleted event for %s has no payload", event.Username)
	}

	rollup, err := a.rollupRepo.Get(ctx, event.Username, event.Date)
	if err != nil {
		return fmt.Errorf("failed to load rollup: %w", err)
	}
	if rollup == nil {
		a.log.Debug("delete for unaggregated day, skipping",
			logger.String("username", event.Username),
			logger.String("date", event.Date.Format(models.DateLayout)),
		)
		return nil
	}

	if v, ok := fields.Removed[models.FieldSteps]; ok {
		rollup.TotalSteps -= int64(v)
	}
	if v, ok := fields.Removed[models.FieldSleepHours]; ok {
		rollup.SleepHours -= v
	}
	if v, ok := fields.Removed[models.FieldHeartRate]; ok && rollup.HeartRateSampleCount > 0 {
		rollup.AvgHeartRate, rollup.HeartRateSampleCount =
			stats.Remove(rollup.AvgHeartRate, rollup.HeartRateSampleCount, v)
		if rollup.HeartRateSampleCount == 0 {
			// Back to the empty state; the extrema of remaining samples are
			// unknowable without raw history, but with zero samples there
			// is nothing left to approximate.
			rollup.MinHeartRate = nil
			rollup.MaxHeartRate = nil
		}
	}

	a.warnOnNegative(rollup)

	if err := a.rollupRepo.Upsert(ctx, rollup); err != nil {
		return fmt.Errorf("failed to persist rollup: %w", err)
	}
	return nil
}

// warnOnNegative flags sums driven below zero. That indicates compensation
// drift (double-delivered deletes, updates for records never aggregated);
// it is logged, not fixed, so the drift stays visible.
func (a *applier) warnOnNegative(rollup *models.DailyRollup) {
	if rollup.TotalSteps < 0 || rollup.SleepHours < 0 {
		a.log.Warn("aggregate sum went negative",
			logger.String("username", rollup.Username),
			logger.String("date", rollup.Date.Format(models.DateLayout)),
			logger.Int64("total_steps", rollup.TotalSteps),
			logger.Float64("sleep_hours", rollup.SleepHours),
		)
	}
}
