package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusworks/grievance-api/internal/models"
)

const grievanceColumns = "id, ticket_id, title, description, category, priority, status, is_anonymous, student_id, assigned_to, escalation_level, deadline, resolved_at, created_at, updated_at"

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations, used to turn ticket-id collisions into retryable conflicts.
const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether the error is a unique constraint
// violation, optionally scoped to the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// GrievanceRepository provides database access for grievance cases and
// their append-only audit trail.
type GrievanceRepository struct {
	db *sqlx.DB
}

// NewGrievanceRepository creates a new instance of GrievanceRepository.
func NewGrievanceRepository(db *sqlx.DB) *GrievanceRepository {
	return &GrievanceRepository{db: db}
}

// LastTicketID returns the highest ticket identifier matching the given
// daily prefix, or sql.ErrNoRows when no ticket exists for that day.
func (r *GrievanceRepository) LastTicketID(ctx context.Context, prefix string) (string, error) {
	const query = `SELECT ticket_id FROM grievances WHERE ticket_id LIKE $1 ORDER BY ticket_id DESC LIMIT 1`
	var ticketID string
	if err := r.db.GetContext(ctx, &ticketID, query, prefix+"%"); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("last ticket id: %w", err)
	}
	return ticketID, nil
}

// Create inserts the grievance and its initial audit update inside one
// transaction. A unique violation on ticket_id is returned unwrapped so
// the caller can retry with a fresh sequence number.
func (r *GrievanceRepository) Create(ctx context.Context, grievance *models.Grievance, initial *models.GrievanceUpdate) error {
	if grievance.ID == "" {
		grievance.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grievance.CreatedAt.IsZero() {
		grievance.CreatedAt = now
	}
	grievance.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create grievance: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertGrievance = `INSERT INTO grievances (id, ticket_id, title, description, category, priority, status, is_anonymous, student_id, assigned_to, escalation_level, deadline, resolved_at, created_at, updated_at)
		VALUES (:id, :ticket_id, :title, :description, :category, :priority, :status, :is_anonymous, :student_id, :assigned_to, :escalation_level, :deadline, :resolved_at, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertGrievance, grievance); err != nil {
		if IsUniqueViolation(err, "") {
			return err
		}
		return fmt.Errorf("insert grievance: %w", err)
	}

	if initial != nil {
		initial.GrievanceID = grievance.ID
		if err := insertUpdate(ctx, tx, initial); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create grievance: %w", err)
	}
	return nil
}

// FindByID returns a grievance by surrogate identifier.
func (r *GrievanceRepository) FindByID(ctx context.Context, id string) (*models.Grievance, error) {
	query := fmt.Sprintf("SELECT %s FROM grievances WHERE id = $1 LIMIT 1", grievanceColumns)
	var grievance models.Grievance
	if err := r.db.GetContext(ctx, &grievance, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find grievance by id: %w", err)
	}
	return &grievance, nil
}

// FindByTicketID returns a grievance by its human-readable ticket id.
func (r *GrievanceRepository) FindByTicketID(ctx context.Context, ticketID string) (*models.Grievance, error) {
	query := fmt.Sprintf("SELECT %s FROM grievances WHERE ticket_id = $1 LIMIT 1", grievanceColumns)
	var grievance models.Grievance
	if err := r.db.GetContext(ctx, &grievance, query, ticketID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find grievance by ticket id: %w", err)
	}
	return &grievance, nil
}

// List returns grievances matching the filter with total count, newest
// first.
func (r *GrievanceRepository) List(ctx context.Context, filter models.GrievanceFilter) ([]models.Grievance, int, error) {
	baseQuery, args := grievanceWhere(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", grievanceColumns, baseQuery, pageSize, offset)

	var grievances []models.Grievance
	if err := r.db.SelectContext(ctx, &grievances, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list grievances: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count grievances: %w", err)
	}

	return grievances, total, nil
}

// ListAll returns every grievance matching the filter, newest first,
// with no pagination. Dashboard stats and exports aggregate over the
// whole visible set, so a page cap here would silently skew them.
func (r *GrievanceRepository) ListAll(ctx context.Context, filter models.GrievanceFilter) ([]models.Grievance, error) {
	baseQuery, args := grievanceWhere(filter)
	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC", grievanceColumns, baseQuery)

	var grievances []models.Grievance
	if err := r.db.SelectContext(ctx, &grievances, query, args...); err != nil {
		return nil, fmt.Errorf("list all grievances: %w", err)
	}
	return grievances, nil
}

func grievanceWhere(filter models.GrievanceFilter) (string, []interface{}) {
	baseQuery := `FROM grievances WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.AssignedTo != "" {
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", len(args)+1))
		args = append(args, filter.AssignedTo)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, *filter.Category)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}
	return baseQuery, args
}

// Save persists lifecycle mutations together with the audit entry that
// describes them. Both writes share one transaction so a status change
// can never land without its audit trail, or vice versa.
func (r *GrievanceRepository) Save(ctx context.Context, grievance *models.Grievance, update *models.GrievanceUpdate) error {
	grievance.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save grievance: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const updateQuery = `UPDATE grievances SET status = :status, assigned_to = :assigned_to, escalation_level = :escalation_level, resolved_at = :resolved_at, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, updateQuery, grievance); err != nil {
		return fmt.Errorf("update grievance: %w", err)
	}

	if update != nil {
		update.GrievanceID = grievance.ID
		if err := insertUpdate(ctx, tx, update); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save grievance: %w", err)
	}
	return nil
}

// ListUpdates returns the audit trail for a grievance, newest first.
func (r *GrievanceRepository) ListUpdates(ctx context.Context, grievanceID string) ([]models.GrievanceUpdate, error) {
	const query = `SELECT id, grievance_id, user_id, message, status_change, created_at FROM grievance_updates WHERE grievance_id = $1 ORDER BY created_at DESC`
	var updates []models.GrievanceUpdate
	if err := r.db.SelectContext(ctx, &updates, query, grievanceID); err != nil {
		return nil, fmt.Errorf("list grievance updates: %w", err)
	}
	return updates, nil
}

func insertUpdate(ctx context.Context, tx *sqlx.Tx, update *models.GrievanceUpdate) error {
	if update.ID == "" {
		update.ID = uuid.NewString()
	}
	if update.CreatedAt.IsZero() {
		update.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO grievance_updates (id, grievance_id, user_id, message, status_change, created_at) VALUES (:id, :grievance_id, :user_id, :message, :status_change, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, update); err != nil {
		return fmt.Errorf("insert grievance update: %w", err)
	}
	return nil
}
