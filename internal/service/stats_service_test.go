package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/grievance-api/internal/models"
)

type mockStatsRepo struct {
	categories []models.CategoryCount
	statuses   []models.StatusCount
	monthly    map[string]int // keyed by range start, "2006-01"
	calls      int
}

func (m *mockStatsRepo) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	return m.categories, nil
}

func (m *mockStatsRepo) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return m.statuses, nil
}

func (m *mockStatsRepo) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	m.calls++
	return m.monthly[from.Format("2006-01")], nil
}

func newStatsFixture(repo *mockStatsRepo, now time.Time) *StatsService {
	svc := NewStatsService(repo, nil, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestChartsZeroFillsBuckets(t *testing.T) {
	repo := &mockStatsRepo{
		categories: []models.CategoryCount{{Category: models.CategoryHostel, Count: 3}},
		statuses:   []models.StatusCount{{Status: models.StatusSubmitted, Count: 2}, {Status: models.StatusResolved, Count: 1}},
	}
	svc := newStatsFixture(repo, time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))

	stats, cached, err := svc.Charts(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	// Every enumeration member appears even with no rows behind it.
	assert.Len(t, stats.Categories, 4)
	assert.Equal(t, 3, stats.Categories[models.CategoryHostel])
	assert.Equal(t, 0, stats.Categories[models.CategoryAcademic])

	assert.Len(t, stats.Statuses, 6)
	assert.Equal(t, 2, stats.Statuses[models.StatusSubmitted])
	assert.Equal(t, 0, stats.Statuses[models.StatusClosed])
}

func TestChartsMonthlyTrend(t *testing.T) {
	repo := &mockStatsRepo{
		monthly: map[string]int{"2026-03": 5, "2026-08": 2},
	}
	svc := newStatsFixture(repo, time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))

	stats, _, err := svc.Charts(context.Background())
	require.NoError(t, err)

	require.Len(t, stats.Monthly, 6)
	assert.Equal(t, 6, repo.calls)

	labels := make([]string, 0, len(stats.Monthly))
	for _, m := range stats.Monthly {
		labels = append(labels, m.Label)
	}
	assert.Equal(t, []string{"Mar 2026", "Apr 2026", "May 2026", "Jun 2026", "Jul 2026", "Aug 2026"}, labels)

	assert.Equal(t, 5, stats.Monthly[0].Count)
	assert.Equal(t, 0, stats.Monthly[1].Count)
	assert.Equal(t, 2, stats.Monthly[5].Count)
}

func TestChartsTrendCrossesYearBoundary(t *testing.T) {
	repo := &mockStatsRepo{monthly: map[string]int{"2025-12": 1}}
	svc := newStatsFixture(repo, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))

	stats, _, err := svc.Charts(context.Background())
	require.NoError(t, err)

	require.Len(t, stats.Monthly, 6)
	assert.Equal(t, "Sep 2025", stats.Monthly[0].Label)
	assert.Equal(t, "Feb 2026", stats.Monthly[5].Label)
	assert.Equal(t, 1, stats.Monthly[3].Count)
}
