package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusworks/grievance-api/internal/dto"
	"github.com/campusworks/grievance-api/internal/models"
	"github.com/campusworks/grievance-api/internal/repository"
	appErrors "github.com/campusworks/grievance-api/pkg/errors"
)

type grievanceRepository interface {
	LastTicketID(ctx context.Context, prefix string) (string, error)
	Create(ctx context.Context, grievance *models.Grievance, initial *models.GrievanceUpdate) error
	FindByID(ctx context.Context, id string) (*models.Grievance, error)
	FindByTicketID(ctx context.Context, ticketID string) (*models.Grievance, error)
	List(ctx context.Context, filter models.GrievanceFilter) ([]models.Grievance, int, error)
	ListAll(ctx context.Context, filter models.GrievanceFilter) ([]models.Grievance, error)
	Save(ctx context.Context, grievance *models.Grievance, update *models.GrievanceUpdate) error
	ListUpdates(ctx context.Context, grievanceID string) ([]models.GrievanceUpdate, error)
}

type grievanceUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FirstAdmin(ctx context.Context) (*models.User, error)
}

type feedbackReader interface {
	FindByGrievance(ctx context.Context, grievanceID string) (*models.Feedback, error)
}

const submittedMessage = "Grievance submitted successfully and routed to the concerned authority."

// GrievanceServiceConfig tunes lifecycle behaviour.
type GrievanceServiceConfig struct {
	// TicketMaxRetries bounds how often ticket allocation retries after
	// a unique-constraint collision before giving up with a conflict.
	TicketMaxRetries int
}

// GrievanceService owns the grievance lifecycle: submission, status
// progression, escalation and the audit trail.
type GrievanceService struct {
	repo      grievanceRepository
	users     grievanceUserRepository
	feedback  feedbackReader
	routing   *RoutingPolicy
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	now       func() time.Time
	cfg       GrievanceServiceConfig
}

// NewGrievanceService constructs a GrievanceService instance.
func NewGrievanceService(repo grievanceRepository, users grievanceUserRepository, feedback feedbackReader, routing *RoutingPolicy, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cfg GrievanceServiceConfig) *GrievanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.TicketMaxRetries <= 0 {
		cfg.TicketMaxRetries = 3
	}
	return &GrievanceService{
		repo:      repo,
		users:     users,
		feedback:  feedback,
		routing:   routing,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
		cfg:       cfg,
	}
}

// Submit files a new grievance: allocates a ticket identifier, computes
// deadline and auto-assignment, then persists the case and its initial
// routing audit entry in one transaction. The submitter may be nil
// (unauthenticated) and is never recorded for anonymous cases.
func (s *GrievanceService) Submit(ctx context.Context, submitter *Actor, req dto.SubmitGrievanceRequest) (*models.Grievance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grievance payload")
	}

	category := models.GrievanceCategory(req.Category)
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", req.Category))
	}

	priority := models.GrievancePriority(req.Priority)
	if req.Priority == "" {
		priority = models.PriorityMedium
	}

	now := s.now()
	deadline := s.routing.DeadlineFor(priority, now)
	assignedTo, err := s.routing.AssignFor(ctx, category)
	if err != nil {
		return nil, err
	}

	var studentID *string
	if submitter != nil && !req.IsAnonymous {
		id := submitter.ID
		studentID = &id
	}

	for attempt := 0; attempt < s.cfg.TicketMaxRetries; attempt++ {
		lastID, err := s.repo.LastTicketID(ctx, ticketDayPrefix(now))
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read last ticket")
		}

		ticketID, err := nextTicketID(now, lastID)
		if err != nil {
			return nil, err
		}

		grievance := &models.Grievance{
			TicketID:    ticketID,
			Title:       req.Title,
			Description: req.Description,
			Category:    category,
			Priority:    priority,
			Status:      models.StatusSubmitted,
			IsAnonymous: req.IsAnonymous,
			StudentID:   studentID,
			AssignedTo:  assignedTo,
			Deadline:    &deadline,
			CreatedAt:   now,
		}
		status := models.StatusSubmitted
		initial := &models.GrievanceUpdate{
			Message:      submittedMessage,
			StatusChange: &status,
		}

		if err := s.repo.Create(ctx, grievance, initial); err != nil {
			if repository.IsUniqueViolation(err, "") {
				s.logger.Warn("ticket id collision, retrying", zap.String("ticket_id", ticketID), zap.Int("attempt", attempt+1))
				if s.metrics != nil {
					s.metrics.RecordTicketRetry()
				}
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grievance")
		}

		return grievance, nil
	}

	return nil, appErrors.Clone(appErrors.ErrConflict, "could not allocate a unique ticket id")
}

// Get returns the full case detail, guarded by the access policy.
func (s *GrievanceService) Get(ctx context.Context, actor Actor, id string) (*dto.GrievanceDetail, error) {
	grievance, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanViewGrievance(actor, grievance) {
		return nil, appErrors.ErrForbidden
	}

	return s.detail(ctx, grievance)
}

// Track looks a case up by its public ticket identifier. No
// authentication is required; the ticket id itself is the credential.
func (s *GrievanceService) Track(ctx context.Context, ticketID string) (*dto.GrievanceDetail, error) {
	grievance, err := s.repo.FindByTicketID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no grievance found with that ticket id")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grievance")
	}

	return s.detail(ctx, grievance)
}

// List returns grievances visible to the actor, newest first.
func (s *GrievanceService) List(ctx context.Context, actor Actor, filter models.GrievanceFilter) ([]models.Grievance, *models.Pagination, error) {
	scoped, err := ScopeFilter(actor, filter)
	if err != nil {
		return nil, nil, err
	}

	grievances, total, err := s.repo.List(ctx, scoped)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grievances")
	}

	page := scoped.Page
	if page < 1 {
		page = 1
	}
	pageSize := scoped.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return grievances, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Dashboard returns the actor's case list with point-in-time stats.
// Stats cover the actor's entire visible set, not one page of it.
func (s *GrievanceService) Dashboard(ctx context.Context, actor Actor) (*dto.DashboardResponse, error) {
	scoped, err := ScopeFilter(actor, models.GrievanceFilter{})
	if err != nil {
		return nil, err
	}

	grievances, err := s.repo.ListAll(ctx, scoped)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard")
	}

	return &dto.DashboardResponse{
		Stats:      ComputeStats(grievances, s.now()),
		Grievances: grievances,
	}, nil
}

// ApplyUpdate applies an authority/admin action to a case: optional
// status change, optional reassignment, optional audit message. The
// whole request is authorization-checked up front and rejected
// atomically when any part of it exceeds the actor's rights; there is
// no silent partial apply.
func (s *GrievanceService) ApplyUpdate(ctx context.Context, actor Actor, id string, req dto.UpdateGrievanceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}
	if req.Message == "" && req.Status == "" && req.AssignedTo == "" {
		return appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}

	if req.Status != "" && !CanChangeStatus(actor) {
		return appErrors.Clone(appErrors.ErrForbidden, "only authorities and admins may change status")
	}
	if req.AssignedTo != "" && !CanReassign(actor) {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins may reassign")
	}

	grievance, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	var statusChange *models.GrievanceStatus
	if req.Status != "" {
		status := models.GrievanceStatus(req.Status)
		grievance.Status = status
		statusChange = &status
		if status.Terminal() {
			// Idempotent: re-resolving simply refreshes the timestamp.
			grievance.ResolvedAt = &now
		}
	}

	if req.AssignedTo != "" {
		assignee, err := s.users.FindByID(ctx, req.AssignedTo)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "assignee not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignee")
		}
		grievance.AssignedTo = &assignee.ID
	}

	// Every mutation carries an audit entry, even when the actor
	// supplied no message.
	message := req.Message
	if message == "" {
		if req.Status != "" {
			message = fmt.Sprintf("Status changed to %s.", req.Status)
		} else {
			message = "Grievance reassigned."
		}
	}

	actorID := actor.ID
	update := &models.GrievanceUpdate{
		UserID:       &actorID,
		Message:      message,
		StatusChange: statusChange,
		CreatedAt:    now,
	}

	if err := s.repo.Save(ctx, grievance, update); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grievance")
	}
	return nil
}

// Escalate raises the case one escalation level, sets the escalated
// status and hands it to an admin when one exists. Any authenticated
// actor may escalate; callers needing stricter control add their own
// authorization check.
func (s *GrievanceService) Escalate(ctx context.Context, actor Actor, id string) error {
	grievance, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}

	grievance.Status = models.StatusEscalated
	grievance.EscalationLevel++

	admin, err := s.users.FirstAdmin(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up admin")
	}
	if admin != nil {
		grievance.AssignedTo = &admin.ID
	}

	status := models.StatusEscalated
	actorID := actor.ID
	update := &models.GrievanceUpdate{
		UserID:       &actorID,
		Message:      fmt.Sprintf("Grievance escalated to level %d. Reassigned to administration.", grievance.EscalationLevel),
		StatusChange: &status,
		CreatedAt:    s.now(),
	}

	if err := s.repo.Save(ctx, grievance, update); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to escalate grievance")
	}
	return nil
}

// ComputeStats derives the dashboard summary over a grievance set.
// Overdue is evaluated against the supplied point in time.
func ComputeStats(grievances []models.Grievance, now time.Time) models.GrievanceStats {
	stats := models.GrievanceStats{Total: len(grievances)}
	for i := range grievances {
		g := &grievances[i]
		switch {
		case g.Status.Pending():
			stats.Pending++
		case g.Status.Terminal():
			stats.Resolved++
		}
		if g.Status == models.StatusEscalated {
			stats.Escalated++
		}
		if g.Overdue(now) {
			stats.Overdue++
		}
	}
	return stats
}

func (s *GrievanceService) findByID(ctx context.Context, id string) (*models.Grievance, error) {
	grievance, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grievance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grievance")
	}
	return grievance, nil
}

func (s *GrievanceService) detail(ctx context.Context, grievance *models.Grievance) (*dto.GrievanceDetail, error) {
	updates, err := s.repo.ListUpdates(ctx, grievance.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load updates")
	}

	detail := &dto.GrievanceDetail{Grievance: grievance, Updates: updates}

	if s.feedback != nil {
		fb, err := s.feedback.FindByGrievance(ctx, grievance.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feedback")
		}
		detail.Feedback = fb
	}

	return detail, nil
}
