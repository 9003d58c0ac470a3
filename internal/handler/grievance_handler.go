package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/grievance-api/internal/dto"
	"github.com/campusworks/grievance-api/internal/models"
	"github.com/campusworks/grievance-api/internal/service"
	appErrors "github.com/campusworks/grievance-api/pkg/errors"
	"github.com/campusworks/grievance-api/pkg/response"
)

type grievanceService interface {
	Submit(ctx context.Context, submitter *service.Actor, req dto.SubmitGrievanceRequest) (*models.Grievance, error)
	Get(ctx context.Context, actor service.Actor, id string) (*dto.GrievanceDetail, error)
	Track(ctx context.Context, ticketID string) (*dto.GrievanceDetail, error)
	List(ctx context.Context, actor service.Actor, filter models.GrievanceFilter) ([]models.Grievance, *models.Pagination, error)
	Dashboard(ctx context.Context, actor service.Actor) (*dto.DashboardResponse, error)
	ApplyUpdate(ctx context.Context, actor service.Actor, id string, req dto.UpdateGrievanceRequest) error
	Escalate(ctx context.Context, actor service.Actor, id string) error
}

type feedbackService interface {
	Submit(ctx context.Context, actor service.Actor, grievanceID string, req dto.FeedbackRequest) (*models.Feedback, error)
}

// GrievanceHandler wires the grievance lifecycle to HTTP endpoints.
type GrievanceHandler struct {
	grievances grievanceService
	feedback   feedbackService
}

// NewGrievanceHandler constructs the handler.
func NewGrievanceHandler(grievances grievanceService, feedback feedbackService) *GrievanceHandler {
	return &GrievanceHandler{grievances: grievances, feedback: feedback}
}

// Submit godoc
// @Summary File a new grievance
// @Tags Grievances
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /grievances [post]
func (h *GrievanceHandler) Submit(c *gin.Context) {
	var req dto.SubmitGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	grievance, err := h.grievances.Submit(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, grievance)
}

// Track godoc
// @Summary Look a grievance up by its public ticket id
// @Tags Grievances
// @Produce json
// @Param ticketId path string true "Ticket ID"
// @Success 200 {object} response.Envelope
// @Router /track/{ticketId} [get]
func (h *GrievanceHandler) Track(c *gin.Context) {
	ticketID := strings.TrimSpace(c.Param("ticketId"))
	if ticketID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "ticketId is required"))
		return
	}

	detail, err := h.grievances.Track(c.Request.Context(), ticketID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// Get godoc
// @Summary Grievance detail with audit trail and feedback
// @Tags Grievances
// @Produce json
// @Param id path string true "Grievance ID"
// @Success 200 {object} response.Envelope
// @Router /grievances/{id} [get]
func (h *GrievanceHandler) Get(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.grievances.Get(c.Request.Context(), *actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// List godoc
// @Summary Grievances visible to the caller
// @Tags Grievances
// @Produce json
// @Param status query string false "Status filter"
// @Param category query string false "Category filter"
// @Success 200 {object} response.Envelope
// @Router /grievances [get]
func (h *GrievanceHandler) List(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter, err := grievanceFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	grievances, pagination, err := h.grievances.List(c.Request.Context(), *actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, grievances, pagination)
}

// Dashboard godoc
// @Summary Role-scoped dashboard with stats
// @Tags Grievances
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *GrievanceHandler) Dashboard(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.grievances.Dashboard(c.Request.Context(), *actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Update godoc
// @Summary Apply a status change, reassignment or note to a grievance
// @Tags Grievances
// @Accept json
// @Produce json
// @Param id path string true "Grievance ID"
// @Success 204
// @Router /grievances/{id}/update [post]
func (h *GrievanceHandler) Update(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	if err := h.grievances.ApplyUpdate(c.Request.Context(), *actor, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Escalate godoc
// @Summary Escalate a grievance to administrative review
// @Tags Grievances
// @Produce json
// @Param id path string true "Grievance ID"
// @Success 204
// @Router /grievances/{id}/escalate [post]
func (h *GrievanceHandler) Escalate(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.grievances.Escalate(c.Request.Context(), *actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SubmitFeedback godoc
// @Summary Rate a grievance resolution
// @Tags Grievances
// @Accept json
// @Produce json
// @Param id path string true "Grievance ID"
// @Success 201 {object} response.Envelope
// @Router /grievances/{id}/feedback [post]
func (h *GrievanceHandler) SubmitFeedback(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	fb, err := h.feedback.Submit(c.Request.Context(), *actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, fb)
}

func grievanceFilterFromQuery(c *gin.Context) (models.GrievanceFilter, error) {
	var filter models.GrievanceFilter

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.GrievanceStatus(raw)
		if !status.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		category := models.GrievanceCategory(raw)
		if !category.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown category filter")
		}
		filter.Category = &category
	}
	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			filter.Page = page
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if pageSize, err := strconv.Atoi(raw); err == nil {
			filter.PageSize = pageSize
		}
	}

	return filter, nil
}
