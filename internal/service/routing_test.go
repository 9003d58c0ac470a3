package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/grievance-api/internal/models"
)

type mockRoutingUsers struct {
	authorities map[string]*models.User
	admin       *models.User
}

func (m *mockRoutingUsers) FirstAuthorityForDepartment(ctx context.Context, department string) (*models.User, error) {
	if u, ok := m.authorities[department]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRoutingUsers) FirstAdmin(ctx context.Context) (*models.User, error) {
	if m.admin != nil {
		return m.admin, nil
	}
	return nil, sql.ErrNoRows
}

func TestDeadlineForKnownPriorities(t *testing.T) {
	policy := NewRoutingPolicy(&mockRoutingUsers{})
	now := time.Date(2026, 2, 19, 14, 0, 0, 0, time.UTC)

	cases := []struct {
		priority models.GrievancePriority
		days     int
	}{
		{models.PriorityLow, 14},
		{models.PriorityMedium, 7},
		{models.PriorityHigh, 3},
		{models.PriorityUrgent, 1},
	}
	for _, tc := range cases {
		deadline := policy.DeadlineFor(tc.priority, now)
		assert.Equal(t, now.AddDate(0, 0, tc.days), deadline, "priority %s", tc.priority)
	}
}

func TestDeadlineForUnknownPriorityDefaults(t *testing.T) {
	policy := NewRoutingPolicy(&mockRoutingUsers{})
	now := time.Date(2026, 2, 19, 14, 0, 0, 0, time.UTC)

	deadline := policy.DeadlineFor(models.GrievancePriority("whenever"), now)
	assert.Equal(t, now.AddDate(0, 0, 7), deadline)
}

func TestAssignForMatchingAuthority(t *testing.T) {
	warden := &models.User{ID: "warden-1", Role: models.RoleAuthority}
	policy := NewRoutingPolicy(&mockRoutingUsers{
		authorities: map[string]*models.User{"hostel": warden},
		admin:       &models.User{ID: "admin-1", Role: models.RoleAdmin},
	})

	assignee, err := policy.AssignFor(context.Background(), models.CategoryHostel)
	require.NoError(t, err)
	require.NotNil(t, assignee)
	assert.Equal(t, "warden-1", *assignee)
}

func TestAssignForFallsBackToAdmin(t *testing.T) {
	policy := NewRoutingPolicy(&mockRoutingUsers{
		authorities: map[string]*models.User{"academic": {ID: "prof-1"}},
		admin:       &models.User{ID: "admin-1"},
	})

	// Authorities exist for unrelated departments only.
	assignee, err := policy.AssignFor(context.Background(), models.CategoryHostel)
	require.NoError(t, err)
	require.NotNil(t, assignee)
	assert.Equal(t, "admin-1", *assignee)
}

func TestAssignForNobodyAvailable(t *testing.T) {
	policy := NewRoutingPolicy(&mockRoutingUsers{})

	assignee, err := policy.AssignFor(context.Background(), models.CategoryExamination)
	require.NoError(t, err)
	assert.Nil(t, assignee)
}
