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

// CertificateRepository handles certificate request persistence.
type CertificateRepository struct {
	db *sqlx.DB
}

// NewCertificateRepository creates a new certificate repository.
func NewCertificateRepository(db *sqlx.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

const certificateColumns = `id, student_id, student_name, kind, school_year, status, file_path, requested_by, created_at, updated_at`

// Create inserts a certificate request.
func (r *CertificateRepository) Create(ctx context.Context, request *models.CertificateRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	request.CreatedAt = now
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = models.CertificatePending
	}
	const query = `INSERT INTO certificate_requests (id, student_id, student_name, kind, school_year, status, file_path, requested_by, created_at, updated_at)
        VALUES (:id, :student_id, :student_name, :kind, :school_year, :status, :file_path, :requested_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("insert certificate request: %w", err)
	}
	return nil
}

// GetByID returns a certificate request by id.
func (r *CertificateRepository) GetByID(ctx context.Context, id string) (*models.CertificateRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM certificate_requests WHERE id = $1`, certificateColumns)
	var request models.CertificateRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate request not found")
		}
		return nil, fmt.Errorf("get certificate request: %w", err)
	}
	return &request, nil
}

// List returns certificate requests matching the filter.
func (r *CertificateRepository) List(ctx context.Context, filter models.CertificateFilter) ([]models.CertificateRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM certificate_requests WHERE 1=1`, certificateColumns)
	var args []interface{}
	if filter.StudentID != nil {
		query += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, *filter.StudentID)
	}
	if filter.Kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", len(args)+1)
		args = append(args, *filter.Kind)
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}
	query += " ORDER BY created_at DESC"
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
	}
	var requests []models.CertificateRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list certificate requests: %w", err)
	}
	return requests, nil
}

// MarkReady records the rendered file path and flips the status to Ready.
func (r *CertificateRepository) MarkReady(ctx context.Context, id, filePath string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE certificate_requests SET status = $1, file_path = $2, updated_at = NOW() WHERE id = $3`,
		models.CertificateReady, filePath, id)
	if err != nil {
		return fmt.Errorf("mark certificate ready: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "certificate request not found")
	}
	return nil
}

// MarkFailed flips the status to Failed.
func (r *CertificateRepository) MarkFailed(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE certificate_requests SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.CertificateFailed, id); err != nil {
		return fmt.Errorf("mark certificate failed: %w", err)
	}
	return nil
}
