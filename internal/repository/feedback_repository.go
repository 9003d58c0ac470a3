package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusworks/grievance-api/internal/models"
)

// FeedbackRepository provides database access for grievance feedback.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository creates a new instance of FeedbackRepository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// FindByGrievance returns the feedback for a grievance, or
// sql.ErrNoRows when none has been submitted yet.
func (r *FeedbackRepository) FindByGrievance(ctx context.Context, grievanceID string) (*models.Feedback, error) {
	const query = `SELECT id, grievance_id, user_id, rating, comment, created_at FROM feedback WHERE grievance_id = $1 LIMIT 1`
	var fb models.Feedback
	if err := r.db.GetContext(ctx, &fb, query, grievanceID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find feedback: %w", err)
	}
	return &fb, nil
}

// Create inserts a feedback record. The unique constraint on
// grievance_id backs the one-feedback-per-case invariant; a violation
// is returned unwrapped so the caller can surface a conflict.
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO feedback (id, grievance_id, user_id, rating, comment, created_at) VALUES (:id, :grievance_id, :user_id, :rating, :comment, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fb); err != nil {
		if IsUniqueViolation(err, "") {
			return err
		}
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}
