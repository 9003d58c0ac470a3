package service

import (
	"github.com/campusworks/grievance-api/internal/models"
	appErrors "github.com/campusworks/grievance-api/pkg/errors"
)

// Actor is the authenticated identity every core operation receives
// from the presentation layer.
type Actor struct {
	ID   string
	Role models.UserRole
}

// CanViewGrievance decides whether the actor may read the case.
// Students see only their own non-anonymous grievances; anonymous
// cases are invisible to every student view, submitter included.
// Authorities see cases assigned to them. Admins see everything.
func CanViewGrievance(actor Actor, grievance *models.Grievance) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleAuthority:
		return grievance.AssignedTo != nil && *grievance.AssignedTo == actor.ID
	case models.RoleStudent:
		if grievance.IsAnonymous {
			return false
		}
		return grievance.StudentID != nil && *grievance.StudentID == actor.ID
	}
	return false
}

// CanChangeStatus reports whether the actor may set a new status.
func CanChangeStatus(actor Actor) bool {
	return actor.Role == models.RoleAuthority || actor.Role == models.RoleAdmin
}

// CanReassign reports whether the actor may change the assignee.
func CanReassign(actor Actor) bool {
	return actor.Role == models.RoleAdmin
}

// CanListUsers reports whether the actor may read the user roster.
func CanListUsers(actor Actor) bool {
	return actor.Role == models.RoleAdmin
}

// ScopeFilter narrows a grievance listing to what the actor may see.
// Admins keep the filter untouched.
func ScopeFilter(actor Actor, filter models.GrievanceFilter) (models.GrievanceFilter, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return filter, nil
	case models.RoleAuthority:
		filter.AssignedTo = actor.ID
		filter.StudentID = ""
		return filter, nil
	case models.RoleStudent:
		filter.StudentID = actor.ID
		filter.AssignedTo = ""
		return filter, nil
	}
	return filter, appErrors.ErrForbidden
}
