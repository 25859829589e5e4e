package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vitalflow/analytics/internal/models"
	"github.com/vitalflow/analytics/internal/repository"
)

// SummaryWindowDays is how far back the narrative weekly summary looks.
const SummaryWindowDays = 7

// Narrative thresholds for the weekly summary.
const (
	summaryActiveSteps = 10000
	summaryGoodSteps   = 7000
	summaryGoodSleep   = 7.0
	summaryLowSleep    = 5.0
	summaryHealthyBPM  = 80.0
)

// summaryFallback is returned when the window holds no rollups at all.
const summaryFallback = "Not enough data to generate a summary for this week. Start logging your health metrics!"

type reportingService struct {
	rollupRepo  repository.RollupRepository
	counterRepo repository.CounterRepository
	now         func() time.Time
}

// NewReportingService creates the read-path service over the aggregate
// store.
func NewReportingService(rollupRepo repository.RollupRepository, counterRepo repository.CounterRepository) ReportingService {
	return &reportingService{
		rollupRepo:  rollupRepo,
		counterRepo: counterRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *reportingService) GetRollup(ctx context.Context, username string, date time.Time) (*models.DailyRollup, error) {
	rollup, err := s.rollupRepo.Get(ctx, username, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get rollup: %w", err)
	}
	return rollup, nil
}

func (s *reportingService) GetRecentRollups(ctx context.Context, username string, since time.Time) ([]models.DailyRollup, error) {
	rollups, err := s.rollupRepo.GetRange(ctx, username, since, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get rollups: %w", err)
	}
	return rollups, nil
}

func (s *reportingService) GetLifetimeStats(ctx context.Context, username string) (*models.LifetimeStats, error) {
	stats, err := s.counterRepo.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get lifetime stats: %w", err)
	}
	return stats, nil
}

func (s *reportingService) GetWeeklySummary(ctx context.Context, username string) (string, error) {
	end := s.now()
	start := models.NormalizeDate(end).AddDate(0, 0, -SummaryWindowDays)

	rollups, err := s.rollupRepo.GetRange(ctx, username, start, end)
	if err != nil {
		return "", fmt.Errorf("failed to get rollups for summary: %w", err)
	}

	return buildWeeklySummary(rollups), nil
}

// buildWeeklySummary folds a window of rollups into threshold-based prose.
// Pure; the service wrapper supplies the window.
func buildWeeklySummary(rollups []models.DailyRollup) string {
	if len(rollups) == 0 {
		return summaryFallback
	}

	daysLogged := len(rollups)

	var totalSteps int64
	var totalSleep, totalHR float64
	hrDays := 0
	for _, r := range rollups {
		totalSteps += r.TotalSteps
		totalSleep += r.SleepHours
		if r.AvgHeartRate > 0 {
			totalHR += r.AvgHeartRate
			hrDays++
		}
	}

	avgSteps := float64(totalSteps) / float64(daysLogged)
	avgSleep := totalSleep / float64(daysLogged)

	parts := []string{fmt.Sprintf("Health Summary for the last %d days:", daysLogged)}

	switch {
	case avgSteps > summaryActiveSteps:
		parts = append(parts, fmt.Sprintf("You've been incredibly active, averaging %d steps/day. Excellent work!", int(avgSteps)))
	case avgSteps > summaryGoodSteps:
		parts = append(parts, fmt.Sprintf("Your activity level is good, with an average of %d steps/day.", int(avgSteps)))
	default:
		parts = append(parts, fmt.Sprintf("Your activity is on the lower side (%d avg steps). Try to aim for 7,000+ daily.", int(avgSteps)))
	}

	switch {
	case avgSleep >= summaryGoodSleep:
		parts = append(parts, fmt.Sprintf("Your sleep hygiene is great, averaging %.1f hours.", avgSleep))
	case avgSleep >= summaryLowSleep:
		parts = append(parts, fmt.Sprintf("You're averaging %.1f hours of sleep. Try to get a bit more rest.", avgSleep))
	default:
		parts = append(parts, fmt.Sprintf("Your sleep is quite low (%.1fh avg). Prioritize recovery this week.", avgSleep))
	}

	if hrDays > 0 {
		avgHR := totalHR / float64(hrDays)
		if avgHR < summaryHealthyBPM {
			parts = append(parts, fmt.Sprintf("Your average heart rate is healthy at %d bpm.", int(avgHR)))
		} else {
			parts = append(parts, fmt.Sprintf("Your average heart rate (%d bpm) is a bit high. Watch out for stress.", int(avgHR)))
		}
	}

	return strings.Join(parts, " ")
}
