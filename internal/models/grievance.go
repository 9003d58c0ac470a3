package models

import "time"

// GrievanceCategory is the closed set of departments a grievance can target.
type GrievanceCategory string

const (
	CategoryAcademic       GrievanceCategory = "academic"
	CategoryAdministrative GrievanceCategory = "administrative"
	CategoryHostel         GrievanceCategory = "hostel"
	CategoryExamination    GrievanceCategory = "examination"
)

// Categories lists every valid grievance category.
func Categories() []GrievanceCategory {
	return []GrievanceCategory{CategoryAcademic, CategoryAdministrative, CategoryHostel, CategoryExamination}
}

// Valid reports whether the category belongs to the closed enumeration.
func (c GrievanceCategory) Valid() bool {
	switch c {
	case CategoryAcademic, CategoryAdministrative, CategoryHostel, CategoryExamination:
		return true
	}
	return false
}

// GrievancePriority ranks how quickly a grievance must be resolved.
type GrievancePriority string

const (
	PriorityLow    GrievancePriority = "low"
	PriorityMedium GrievancePriority = "medium"
	PriorityHigh   GrievancePriority = "high"
	PriorityUrgent GrievancePriority = "urgent"
)

// Valid reports whether the priority belongs to the closed enumeration.
func (p GrievancePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// GrievanceStatus tracks lifecycle progression of a case.
type GrievanceStatus string

const (
	StatusSubmitted  GrievanceStatus = "submitted"
	StatusInReview   GrievanceStatus = "in_review"
	StatusInProgress GrievanceStatus = "in_progress"
	StatusEscalated  GrievanceStatus = "escalated"
	StatusResolved   GrievanceStatus = "resolved"
	StatusClosed     GrievanceStatus = "closed"
)

// Statuses lists every valid grievance status.
func Statuses() []GrievanceStatus {
	return []GrievanceStatus{StatusSubmitted, StatusInReview, StatusInProgress, StatusEscalated, StatusResolved, StatusClosed}
}

// Valid reports whether the status belongs to the closed enumeration.
func (s GrievanceStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusInReview, StatusInProgress, StatusEscalated, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Terminal reports whether the status ends the case. Closure is a status,
// not removal; grievances are never deleted.
func (s GrievanceStatus) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// Pending reports whether the case is still waiting on a handler.
func (s GrievanceStatus) Pending() bool {
	return s == StatusSubmitted || s == StatusInReview || s == StatusInProgress
}

// Grievance is a case record. StudentID is nil for anonymous submissions
// even when the submitter was authenticated.
type Grievance struct {
	ID              string            `db:"id" json:"id"`
	TicketID        string            `db:"ticket_id" json:"ticket_id"`
	Title           string            `db:"title" json:"title"`
	Description     string            `db:"description" json:"description"`
	Category        GrievanceCategory `db:"category" json:"category"`
	Priority        GrievancePriority `db:"priority" json:"priority"`
	Status          GrievanceStatus   `db:"status" json:"status"`
	IsAnonymous     bool              `db:"is_anonymous" json:"is_anonymous"`
	StudentID       *string           `db:"student_id" json:"student_id,omitempty"`
	AssignedTo      *string           `db:"assigned_to" json:"assigned_to,omitempty"`
	EscalationLevel int               `db:"escalation_level" json:"escalation_level"`
	Deadline        *time.Time        `db:"deadline" json:"deadline,omitempty"`
	ResolvedAt      *time.Time        `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// Overdue reports whether the deadline has passed without the case
// reaching a terminal status. Derived at read time; nothing transitions
// a grievance to overdue.
func (g *Grievance) Overdue(now time.Time) bool {
	return g.Deadline != nil && g.Deadline.Before(now) && !g.Status.Terminal()
}

// GrievanceUpdate is an append-only audit entry attached to a grievance.
// UserID is a weak reference; a deleted actor leaves the entry intact.
type GrievanceUpdate struct {
	ID           string           `db:"id" json:"id"`
	GrievanceID  string           `db:"grievance_id" json:"grievance_id"`
	UserID       *string          `db:"user_id" json:"user_id,omitempty"`
	Message      string           `db:"message" json:"message"`
	StatusChange *GrievanceStatus `db:"status_change" json:"status_change,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

// GrievanceFilter captures filtering criteria for listing grievances.
type GrievanceFilter struct {
	StudentID  string
	AssignedTo string
	Status     *GrievanceStatus
	Category   *GrievanceCategory
	Page       int
	PageSize   int
}

// GrievanceStats is the point-in-time dashboard summary.
type GrievanceStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Resolved  int `json:"resolved"`
	Escalated int `json:"escalated"`
	Overdue   int `json:"overdue"`
}
