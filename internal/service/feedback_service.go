package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusworks/grievance-api/internal/dto"
	"github.com/campusworks/grievance-api/internal/models"
	"github.com/campusworks/grievance-api/internal/repository"
	appErrors "github.com/campusworks/grievance-api/pkg/errors"
)

type feedbackRepository interface {
	FindByGrievance(ctx context.Context, grievanceID string) (*models.Feedback, error)
	Create(ctx context.Context, fb *models.Feedback) error
}

type feedbackGrievanceReader interface {
	FindByID(ctx context.Context, id string) (*models.Grievance, error)
}

// FeedbackService enforces the at-most-one-feedback-per-case gate.
type FeedbackService struct {
	repo       feedbackRepository
	grievances feedbackGrievanceReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewFeedbackService constructs a FeedbackService instance.
func NewFeedbackService(repo feedbackRepository, grievances feedbackGrievanceReader, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FeedbackService{repo: repo, grievances: grievances, validator: validate, logger: logger}
}

// Submit records feedback for a grievance. The gate is checked by
// presence, not actor identity: once any feedback exists, every further
// submission is rejected and the stored record stays unchanged. Ratings
// outside 1..5 are rejected rather than silently defaulted.
func (s *FeedbackService) Submit(ctx context.Context, actor Actor, grievanceID string, req dto.FeedbackRequest) (*models.Feedback, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rating must be between 1 and 5")
	}

	if _, err := s.grievances.FindByID(ctx, grievanceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grievance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grievance")
	}

	if _, err := s.repo.FindByGrievance(ctx, grievanceID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "feedback already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check feedback")
	}

	actorID := actor.ID
	fb := &models.Feedback{
		GrievanceID: grievanceID,
		UserID:      &actorID,
		Rating:      req.Rating,
	}
	if req.Comment != "" {
		comment := req.Comment
		fb.Comment = &comment
	}

	if err := s.repo.Create(ctx, fb); err != nil {
		// The unique constraint closes the race between two concurrent
		// first submissions.
		if repository.IsUniqueViolation(err, "") {
			return nil, appErrors.Clone(appErrors.ErrConflict, "feedback already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store feedback")
	}

	return fb, nil
}
