package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusworks/grievance-api/internal/models"
)

// StatsRepository exposes read-optimised aggregation queries for the
// statistics surface. Pure reads, no core-state mutation.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository instantiates the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// CountByCategory aggregates grievances per category.
func (r *StatsRepository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	const query = `SELECT category, COUNT(*) AS count FROM grievances GROUP BY category`
	var counts []models.CategoryCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	return counts, nil
}

// CountByStatus aggregates grievances per status.
func (r *StatsRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM grievances GROUP BY status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	return counts, nil
}

// CountCreatedBetween counts grievances submitted in [from, to).
func (r *StatsRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM grievances WHERE created_at >= $1 AND created_at < $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, from, to); err != nil {
		return 0, fmt.Errorf("count created between: %w", err)
	}
	return count, nil
}
