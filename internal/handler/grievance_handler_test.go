package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/grievance-api/internal/dto"
	"github.com/campusworks/grievance-api/internal/middleware"
	"github.com/campusworks/grievance-api/internal/models"
	"github.com/campusworks/grievance-api/internal/service"
	appErrors "github.com/campusworks/grievance-api/pkg/errors"
)

type grievanceServiceMock struct {
	submitResp    *models.Grievance
	submitErr     error
	lastSubmitter *service.Actor
	trackResp     *dto.GrievanceDetail
	trackErr      error
	getResp       *dto.GrievanceDetail
	getErr        error
	updateErr     error
	escalateErr   error
	lastFilter    models.GrievanceFilter
}

func (m *grievanceServiceMock) Submit(ctx context.Context, submitter *service.Actor, req dto.SubmitGrievanceRequest) (*models.Grievance, error) {
	m.lastSubmitter = submitter
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return m.submitResp, nil
}

func (m *grievanceServiceMock) Get(ctx context.Context, actor service.Actor, id string) (*dto.GrievanceDetail, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getResp, nil
}

func (m *grievanceServiceMock) Track(ctx context.Context, ticketID string) (*dto.GrievanceDetail, error) {
	if m.trackErr != nil {
		return nil, m.trackErr
	}
	return m.trackResp, nil
}

func (m *grievanceServiceMock) List(ctx context.Context, actor service.Actor, filter models.GrievanceFilter) ([]models.Grievance, *models.Pagination, error) {
	m.lastFilter = filter
	return []models.Grievance{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (m *grievanceServiceMock) Dashboard(ctx context.Context, actor service.Actor) (*dto.DashboardResponse, error) {
	return &dto.DashboardResponse{}, nil
}

func (m *grievanceServiceMock) ApplyUpdate(ctx context.Context, actor service.Actor, id string, req dto.UpdateGrievanceRequest) error {
	return m.updateErr
}

func (m *grievanceServiceMock) Escalate(ctx context.Context, actor service.Actor, id string) error {
	return m.escalateErr
}

type feedbackServiceMock struct {
	resp *models.Feedback
	err  error
}

func (m *feedbackServiceMock) Submit(ctx context.Context, actor service.Actor, grievanceID string, req dto.FeedbackRequest) (*models.Feedback, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func newGrievanceTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func setJSONBody(t *testing.T, c *gin.Context, method, target string, body interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(method, target, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
}

func authenticate(c *gin.Context, id string, role models.UserRole) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: id, Role: role})
}

func TestGrievanceHandlerSubmit(t *testing.T) {
	svc := &grievanceServiceMock{submitResp: &models.Grievance{ID: "g-1", TicketID: "GRV-20260219-0001"}}
	handler := NewGrievanceHandler(svc, &feedbackServiceMock{})
	c, w := newGrievanceTestContext(t)
	setJSONBody(t, c, http.MethodPost, "/grievances", dto.SubmitGrievanceRequest{
		Title:       "Leaking pipe",
		Description: "Water everywhere",
		Category:    "hostel",
	})

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.Grievance `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "GRV-20260219-0001", envelope.Data.TicketID)
	// Unauthenticated submission passes no actor through.
	assert.Nil(t, svc.lastSubmitter)
}

func TestGrievanceHandlerSubmitPassesActor(t *testing.T) {
	svc := &grievanceServiceMock{submitResp: &models.Grievance{ID: "g-1"}}
	handler := NewGrievanceHandler(svc, &feedbackServiceMock{})
	c, _ := newGrievanceTestContext(t)
	setJSONBody(t, c, http.MethodPost, "/grievances", dto.SubmitGrievanceRequest{
		Title:       "Library hours",
		Description: "Closes too early",
		Category:    "academic",
	})
	authenticate(c, "stu-1", models.RoleStudent)

	handler.Submit(c)
	require.NotNil(t, svc.lastSubmitter)
	assert.Equal(t, "stu-1", svc.lastSubmitter.ID)
}

func TestGrievanceHandlerSubmitInvalidBody(t *testing.T) {
	handler := NewGrievanceHandler(&grievanceServiceMock{}, &feedbackServiceMock{})
	c, w := newGrievanceTestContext(t)
	req, _ := http.NewRequest(http.MethodPost, "/grievances", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Submit(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGrievanceHandlerTrack(t *testing.T) {
	detail := &dto.GrievanceDetail{Grievance: &models.Grievance{TicketID: "GRV-20260219-0001"}}
	handler := NewGrievanceHandler(&grievanceServiceMock{trackResp: detail}, &feedbackServiceMock{})
	c, w := newGrievanceTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/track/GRV-20260219-0001", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "ticketId", Value: "GRV-20260219-0001"}}

	handler.Track(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGrievanceHandlerTrackNotFound(t *testing.T) {
	svc := &grievanceServiceMock{trackErr: appErrors.ErrNotFound}
	handler := NewGrievanceHandler(svc, &feedbackServiceMock{})
	c, w := newGrievanceTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/track/GRV-00000000-0000", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "ticketId", Value: "GRV-00000000-0000"}}

	handler.Track(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGrievanceHandlerGetRequiresAuth(t *testing.T) {
	handler := NewGrievanceHandler(&grievanceServiceMock{}, &feedbackServiceMock{})
	c, w := newGrievanceTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/grievances/g-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "g-1"}}

	handler.Get(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGrievanceHandlerGetForbidden(t *testing.T) {
	svc := &grievanceServiceMock{getErr: appErrors.ErrForbidden}
	handler := NewGrievanceHandler(svc, &feedbackServiceMock{})
	c, w := newGrievanceTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/grievances/g-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "g-1"}}
	authenticate(c, "stu-1", models.RoleStudent)

	handler.Get(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGrievanceHandlerListRejectsUnknownStatus(t *testing.T) {
	handler := NewGrievanceHandler(&grievanceServiceMock{}, &feedbackServiceMock{})
	c, w := newGrievanceTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/grievances?status=bogus", nil)
	c.Request = req
	authenticate(c, "stu-1", models.RoleStudent)

	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGrievanceHandlerListParsesFilters(t *testing.T) {
	svc := &grievanceServiceMock{}
	handler := NewGrievanceHandler(svc, &feedbackServiceMock{})
	c, w := newGrievanceTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/grievances?status=submitted&category=hostel&page=2", nil)
	c.Request = req
	authenticate(c, "adm-1", models.RoleAdmin)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastFilter.Status)
	assert.Equal(t, models.StatusSubmitted, *svc.lastFilter.Status)
	require.NotNil(t, svc.lastFilter.Category)
	assert.Equal(t, models.CategoryHostel, *svc.lastFilter.Category)
	assert.Equal(t, 2, svc.lastFilter.Page)
}

func TestGrievanceHandlerUpdate(t *testing.T) {
	handler := NewGrievanceHandler(&grievanceServiceMock{}, &feedbackServiceMock{})
	c, w := newGrievanceTestContext(t)
	setJSONBody(t, c, http.MethodPost, "/grievances/g-1/update", dto.UpdateGrievanceRequest{Status: "in_review"})
	c.Params = gin.Params{{Key: "id", Value: "g-1"}}
	authenticate(c, "auth-1", models.RoleAuthority)

	handler.Update(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGrievanceHandlerUpdateForbidden(t *testing.T) {
	svc := &grievanceServiceMock{updateErr: appErrors.ErrForbidden}
	handler := NewGrievanceHandler(svc, &feedbackServiceMock{})
	c, w := newGrievanceTestContext(t)
	setJSONBody(t, c, http.MethodPost, "/grievances/g-1/update", dto.UpdateGrievanceRequest{Status: "resolved"})
	c.Params = gin.Params{{Key: "id", Value: "g-1"}}
	authenticate(c, "stu-1", models.RoleStudent)

	handler.Update(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGrievanceHandlerEscalate(t *testing.T) {
	handler := NewGrievanceHandler(&grievanceServiceMock{}, &feedbackServiceMock{})
	c, w := newGrievanceTestContext(t)
	req, _ := http.NewRequest(http.MethodPost, "/grievances/g-1/escalate", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "g-1"}}
	authenticate(c, "stu-1", models.RoleStudent)

	handler.Escalate(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGrievanceHandlerFeedbackConflict(t *testing.T) {
	fb := &feedbackServiceMock{err: appErrors.ErrConflict}
	handler := NewGrievanceHandler(&grievanceServiceMock{}, fb)
	c, w := newGrievanceTestContext(t)
	setJSONBody(t, c, http.MethodPost, "/grievances/g-1/feedback", dto.FeedbackRequest{Rating: 4})
	c.Params = gin.Params{{Key: "id", Value: "g-1"}}
	authenticate(c, "stu-1", models.RoleStudent)

	handler.SubmitFeedback(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGrievanceHandlerFeedbackCreated(t *testing.T) {
	fb := &feedbackServiceMock{resp: &models.Feedback{ID: "fb-1", Rating: 5}}
	handler := NewGrievanceHandler(&grievanceServiceMock{}, fb)
	c, w := newGrievanceTestContext(t)
	setJSONBody(t, c, http.MethodPost, "/grievances/g-1/feedback", dto.FeedbackRequest{Rating: 5})
	c.Params = gin.Params{{Key: "id", Value: "g-1"}}
	authenticate(c, "stu-1", models.RoleStudent)

	handler.SubmitFeedback(c)
	assert.Equal(t, http.StatusCreated, w.Code)
}
