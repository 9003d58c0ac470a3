package models

import "time"

// Feedback records a resolution rating for a grievance. At most one
// feedback row exists per grievance, enforced by a unique constraint
// on grievance_id in addition to the service-level presence check.
type Feedback struct {
	ID          string    `db:"id" json:"id"`
	GrievanceID string    `db:"grievance_id" json:"grievance_id"`
	UserID      *string   `db:"user_id" json:"user_id,omitempty"`
	Rating      int       `db:"rating" json:"rating"`
	Comment     *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
