package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
)

// DropoutRepository handles dropout request persistence.
type DropoutRepository struct {
	db *sqlx.DB
}

// NewDropoutRepository creates a new dropout repository.
func NewDropoutRepository(db *sqlx.DB) *DropoutRepository {
	return &DropoutRepository{db: db}
}

const dropoutColumns = `id, student_id, student_name, section_id, section_name, reason, details, requested_by, status, reviewed_by, reviewed_at, created_at, updated_at`

// Create inserts a pending dropout request.
func (r *DropoutRepository) Create(ctx context.Context, request *models.DropoutRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	request.CreatedAt = now
	request.UpdatedAt = now
	request.Status = models.DropoutPending
	const query = `INSERT INTO dropout_requests (id, student_id, student_name, section_id, section_name, reason, details, requested_by, status, created_at, updated_at)
        VALUES (:id, :student_id, :student_name, :section_id, :section_name, :reason, :details, :requested_by, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("insert dropout request: %w", err)
	}
	return nil
}

// GetByID returns a dropout request by id.
func (r *DropoutRepository) GetByID(ctx context.Context, id string) (*models.DropoutRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM dropout_requests WHERE id = $1`, dropoutColumns)
	var request models.DropoutRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "dropout request not found")
		}
		return nil, fmt.Errorf("get dropout request: %w", err)
	}
	return &request, nil
}

// List returns dropout requests matching the filter.
func (r *DropoutRepository) List(ctx context.Context, filter models.DropoutFilter) ([]models.DropoutRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM dropout_requests WHERE 1=1`, dropoutColumns)
	var args []interface{}
	query, args = applyDropoutFilter(query, args, filter)
	query += " ORDER BY created_at DESC"
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
	}
	var requests []models.DropoutRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list dropout requests: %w", err)
	}
	return requests, nil
}

// Count returns the number of dropout requests matching the filter.
func (r *DropoutRepository) Count(ctx context.Context, filter models.DropoutFilter) (int, error) {
	query := `SELECT COUNT(*) FROM dropout_requests WHERE 1=1`
	var args []interface{}
	query, args = applyDropoutFilter(query, args, filter)
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count dropout requests: %w", err)
	}
	return count, nil
}

func applyDropoutFilter(query string, args []interface{}, filter models.DropoutFilter) (string, []interface{}) {
	if filter.StudentID != nil {
		query += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, *filter.StudentID)
	}
	if filter.SectionID != nil {
		query += fmt.Sprintf(" AND section_id = $%d", len(args)+1)
		args = append(args, *filter.SectionID)
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}
	return query, args
}

// CountByReason groups requests with the given status per reason.
func (r *DropoutRepository) CountByReason(ctx context.Context, status models.DropoutStatus) ([]models.DropoutReasonCount, error) {
	const query = `SELECT reason, COUNT(*) AS count FROM dropout_requests
        WHERE status = $1 GROUP BY reason ORDER BY count DESC, reason ASC`
	var counts []models.DropoutReasonCount
	if err := r.db.SelectContext(ctx, &counts, query, status); err != nil {
		return nil, fmt.Errorf("count dropouts by reason: %w", err)
	}
	return counts, nil
}

// HasPending reports whether a pending request already exists for the student.
func (r *DropoutRepository) HasPending(ctx context.Context, studentID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM dropout_requests WHERE student_id = $1 AND status = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, models.DropoutPending); err != nil {
		return false, fmt.Errorf("check pending dropout: %w", err)
	}
	return exists, nil
}

// Review transitions a pending request to a terminal status. The status
// guard in the WHERE clause keeps the transition single-shot.
func (r *DropoutRepository) Review(ctx context.Context, id string, status models.DropoutStatus, reviewerID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE dropout_requests SET status = $1, reviewed_by = $2, reviewed_at = NOW(), updated_at = NOW()
         WHERE id = $3 AND status = $4`,
		status, reviewerID, id, models.DropoutPending)
	if err != nil {
		return fmt.Errorf("review dropout request: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "dropout request is not pending")
	}
	return nil
}
