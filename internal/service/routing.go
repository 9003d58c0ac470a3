package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/campusworks/grievance-api/internal/models"
	appErrors "github.com/campusworks/grievance-api/pkg/errors"
)

type routingUserRepository interface {
	FirstAuthorityForDepartment(ctx context.Context, department string) (*models.User, error)
	FirstAdmin(ctx context.Context) (*models.User, error)
}

// deadlineDays maps priority to the resolution window in days.
var deadlineDays = map[models.GrievancePriority]int{
	models.PriorityLow:    14,
	models.PriorityMedium: 7,
	models.PriorityHigh:   3,
	models.PriorityUrgent: 1,
}

// defaultDeadlineDays applies to any unrecognized priority value;
// submission does not reject on priority.
const defaultDeadlineDays = 7

// RoutingPolicy assigns new grievances to a responsible authority and
// computes their resolution deadline.
type RoutingPolicy struct {
	users routingUserRepository
}

// NewRoutingPolicy constructs a RoutingPolicy.
func NewRoutingPolicy(users routingUserRepository) *RoutingPolicy {
	return &RoutingPolicy{users: users}
}

// DeadlineFor returns the resolution deadline for a grievance submitted
// now with the given priority.
func (p *RoutingPolicy) DeadlineFor(priority models.GrievancePriority, now time.Time) time.Time {
	days, ok := deadlineDays[priority]
	if !ok {
		days = defaultDeadlineDays
	}
	return now.Add(time.Duration(days) * 24 * time.Hour)
}

// AssignFor selects the handling user for a category: the first active
// authority in the matching department, falling back to any active
// admin, or nil when neither exists.
func (p *RoutingPolicy) AssignFor(ctx context.Context, category models.GrievanceCategory) (*string, error) {
	authority, err := p.users.FirstAuthorityForDepartment(ctx, string(category))
	if err == nil {
		return &authority.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up authority")
	}

	admin, err := p.users.FirstAdmin(ctx)
	if err == nil {
		return &admin.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up admin")
	}

	return nil, nil
}
