package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusworks/grievance-api/internal/models"
	appErrors "github.com/campusworks/grievance-api/pkg/errors"
)

type mockAuthUsers struct {
	user *models.User
}

func (m *mockAuthUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.user != nil && m.user.Username == username {
		return m.user, nil
	}
	return nil, sql.ErrNoRows
}

func newAuthFixture(t *testing.T, active bool) (*AuthService, *models.User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           "u-1",
		Username:     "ravi",
		Email:        "ravi@university.edu",
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		Active:       active,
	}
	svc := NewAuthService(&mockAuthUsers{user: user}, nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "grievance-api",
	})
	return svc, user
}

func TestLoginSuccess(t *testing.T) {
	svc, user := newAuthFixture(t, true)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "ravi", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, user.ID, res.User.ID)
	assert.Equal(t, models.RoleStudent, res.User.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ravi", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, _ := newAuthFixture(t, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ravi", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, user := newAuthFixture(t, true)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "ravi", Password: "secret1"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	other := NewAuthService(&mockAuthUsers{}, nil, nil, AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Hour,
	})

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "ravi", Password: "secret1"})
	require.NoError(t, err)

	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
