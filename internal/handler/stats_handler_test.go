package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/grievance-api/internal/models"
)

type statsServiceMock struct {
	stats    *models.ChartStats
	cacheHit bool
	err      error
}

func (m *statsServiceMock) Charts(ctx context.Context) (*models.ChartStats, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return m.stats, m.cacheHit, nil
}

func TestStatsHandlerCharts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &statsServiceMock{
		stats: &models.ChartStats{
			Categories: map[models.GrievanceCategory]int{models.CategoryHostel: 3},
			Statuses:   map[models.GrievanceStatus]int{models.StatusSubmitted: 2},
			Monthly:    []models.MonthlyCount{{Label: "Aug 2026", Count: 2}},
		},
		cacheHit: true,
	}
	handler := NewStatsHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/stats", nil)
	c.Request = req

	handler.Charts(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.ChartStats      `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 3, envelope.Data.Categories[models.CategoryHostel])
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")
}

func TestStatsHandlerNilService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStatsHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/stats", nil)
	c.Request = req

	handler.Charts(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
