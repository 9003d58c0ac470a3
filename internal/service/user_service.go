package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusworks/grievance-api/internal/models"
	appErrors "github.com/campusworks/grievance-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FirstAdmin(ctx context.Context) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Create(ctx context.Context, user *models.User) error
}

// UserService provides registration and roster use cases.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// Register creates a student or authority account. Roles are immutable
// after registration; admin accounts come only from the seed bootstrap.
// Department is set iff the role is authority, making an authority
// without a department unrepresentable.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	role := models.UserRole(req.Role)
	if req.Role == "" {
		role = models.RoleStudent
	}

	var department *string
	switch role {
	case models.RoleAuthority:
		if req.Department == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "authority registration requires a department")
		}
		dept := req.Department
		department = &dept
	case models.RoleStudent:
		if req.Department != "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "students do not have a department")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("role %q cannot be registered", req.Role))
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Department:   department,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("user registered", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return user, nil
}

// List returns the registered users. Admin only.
func (s *UserService) List(ctx context.Context, actor Actor, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	if !CanListUsers(actor) {
		return nil, nil, appErrors.ErrForbidden
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// seedAuthority describes one bootstrap authority account.
type seedAuthority struct {
	username   string
	email      string
	department models.GrievanceCategory
}

var seedAuthorities = []seedAuthority{
	{"academic_head", "academic_head@university.edu", models.CategoryAcademic},
	{"admin_officer", "admin_officer@university.edu", models.CategoryAdministrative},
	{"hostel_warden", "hostel_warden@university.edu", models.CategoryHostel},
	{"exam_controller", "exam_controller@university.edu", models.CategoryExamination},
}

// Seed creates the default admin and one authority per category when no
// admin account exists yet. Idempotent; an operational bootstrap rather
// than core behaviour.
func (s *UserService) Seed(ctx context.Context, adminPassword, authorityPassword string) error {
	if _, err := s.repo.FirstAdmin(ctx); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for admin")
	}

	adminHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash admin password")
	}
	adminDept := "administration"
	if err := s.repo.Create(ctx, &models.User{
		Username:     "admin",
		Email:        "admin@university.edu",
		PasswordHash: string(adminHash),
		Role:         models.RoleAdmin,
		Department:   &adminDept,
		Active:       true,
	}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed admin")
	}

	authHash, err := bcrypt.GenerateFromPassword([]byte(authorityPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash authority password")
	}
	for _, a := range seedAuthorities {
		dept := string(a.department)
		if err := s.repo.Create(ctx, &models.User{
			Username:     a.username,
			Email:        a.email,
			PasswordHash: string(authHash),
			Role:         models.RoleAuthority,
			Department:   &dept,
			Active:       true,
		}); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to seed authority %s", a.username))
		}
	}

	s.logger.Info("seeded default accounts", zap.Int("authorities", len(seedAuthorities)))
	return nil
}
