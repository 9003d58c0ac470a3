package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/grievance-api/internal/models"
	appErrors "github.com/campusworks/grievance-api/pkg/errors"
	"github.com/campusworks/grievance-api/pkg/response"
)

type statsService interface {
	Charts(ctx context.Context) (*models.ChartStats, bool, error)
}

// StatsHandler exposes the read-only statistics surface.
type StatsHandler struct {
	service statsService
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(service statsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// Charts godoc
// @Summary Chart statistics for dashboards
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *StatsHandler) Charts(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	start := time.Now()
	stats, cacheHit, err := h.service.Charts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := map[string]interface{}{
		"cache_hit":          cacheHit,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}
	response.JSON(c, http.StatusOK, stats, nil, meta)
}
