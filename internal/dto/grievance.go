package dto

import "github.com/campusworks/grievance-api/internal/models"

// SubmitGrievanceRequest is the payload for filing a new case.
type SubmitGrievanceRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Priority    string `json:"priority"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// UpdateGrievanceRequest carries an authority/admin action on a case.
// Every field is optional; a bare message just extends the audit trail.
type UpdateGrievanceRequest struct {
	Message    string `json:"message"`
	Status     string `json:"status" validate:"omitempty,oneof=submitted in_review in_progress escalated resolved closed"`
	AssignedTo string `json:"assigned_to"`
}

// FeedbackRequest rates a resolved case.
type FeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// GrievanceDetail combines a case with its audit trail and feedback.
type GrievanceDetail struct {
	Grievance *models.Grievance        `json:"grievance"`
	Updates   []models.GrievanceUpdate `json:"updates"`
	Feedback  *models.Feedback         `json:"feedback,omitempty"`
}

// DashboardResponse is the role-scoped landing payload.
type DashboardResponse struct {
	Stats      models.GrievanceStats `json:"stats"`
	Grievances []models.Grievance    `json:"grievances"`
}
