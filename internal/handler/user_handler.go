package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/grievance-api/internal/models"
	"github.com/campusworks/grievance-api/internal/service"
	appErrors "github.com/campusworks/grievance-api/pkg/errors"
	"github.com/campusworks/grievance-api/pkg/response"
)

type userListService interface {
	List(ctx context.Context, actor service.Actor, filter models.UserFilter) ([]models.User, *models.Pagination, error)
}

type exportService interface {
	Export(ctx context.Context, actor service.Actor, filter models.GrievanceFilter, format string) ([]byte, string, error)
}

// UserHandler wires the admin user roster and register export to HTTP.
type UserHandler struct {
	users  userListService
	export exportService
}

// NewUserHandler constructs the handler.
func NewUserHandler(users userListService, export exportService) *UserHandler {
	return &UserHandler{users: users, export: export}
}

// List godoc
// @Summary Registered users
// @Tags Admin
// @Produce json
// @Param role query string false "Role filter"
// @Success 200 {object} response.Envelope
// @Router /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.UserFilter
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role := models.UserRole(raw)
		filter.Role = &role
	}
	filter.Search = strings.TrimSpace(c.Query("search"))
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

	users, pagination, err := h.users.List(c.Request.Context(), *actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, users, pagination)
}

// ExportGrievances godoc
// @Summary Export the grievance register as CSV or PDF
// @Tags Admin
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200
// @Router /admin/grievances/export [get]
func (h *UserHandler) ExportGrievances(c *gin.Context) {
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

	format := strings.TrimSpace(c.Query("format"))
	payload, contentType, err := h.export.Export(c.Request.Context(), *actor, filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := "grievances.csv"
	if contentType == "application/pdf" {
		filename = "grievances.pdf"
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, payload)
}
