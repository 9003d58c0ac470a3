package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campusworks/grievance-api/internal/models"
	appErrors "github.com/campusworks/grievance-api/pkg/errors"
)

type statsRepository interface {
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
}

const statsCacheKey = "stats:charts"

// trendMonths is the length of the trailing submission trend.
const trendMonths = 6

// StatsService assembles the read-only statistics surface for the
// dashboard charts. Pure aggregation over the grievance table.
type StatsService struct {
	repo   statsRepository
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
}

// NewStatsService constructs a StatsService instance.
func NewStatsService(repo statsRepository, cache *CacheService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Charts returns per-category counts, per-status counts and the
// trailing six-month submission trend. The second return value reports
// whether the payload came from cache.
func (s *StatsService) Charts(ctx context.Context) (*models.ChartStats, bool, error) {
	var cached models.ChartStats
	if hit, _ := s.cache.Get(ctx, statsCacheKey, &cached); hit {
		return &cached, true, nil
	}

	stats := &models.ChartStats{
		Categories: make(map[models.GrievanceCategory]int, len(models.Categories())),
		Statuses:   make(map[models.GrievanceStatus]int, len(models.Statuses())),
	}
	// Every bucket appears in the payload, zero counts included.
	for _, c := range models.Categories() {
		stats.Categories[c] = 0
	}
	for _, st := range models.Statuses() {
		stats.Statuses[st] = 0
	}

	categoryCounts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate categories")
	}
	for _, c := range categoryCounts {
		stats.Categories[c.Category] = c.Count
	}

	statusCounts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate statuses")
	}
	for _, c := range statusCounts {
		stats.Statuses[c.Status] = c.Count
	}

	monthly, err := s.monthlyTrend(ctx)
	if err != nil {
		return nil, false, err
	}
	stats.Monthly = monthly

	s.cache.Set(ctx, statsCacheKey, stats)
	return stats, false, nil
}

// monthlyTrend counts submissions per calendar month for the trailing
// window, oldest month first. The current month is cut off at now.
func (s *StatsService) monthlyTrend(ctx context.Context) ([]models.MonthlyCount, error) {
	now := s.now()
	trend := make([]models.MonthlyCount, 0, trendMonths)

	for i := trendMonths - 1; i >= 0; i-- {
		start := monthStart(now).AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		if i == 0 {
			end = now
		}

		count, err := s.repo.CountCreatedBetween(ctx, start, end)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate monthly trend")
		}
		trend = append(trend, models.MonthlyCount{Label: start.Format("Jan 2006"), Count: count})
	}

	return trend, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
