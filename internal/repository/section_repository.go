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

// SectionRepository handles section persistence.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository creates a new section repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = `id, name, grade_level, strand, tvl_sub_option, semester, adviser_id, school_year, source_id, created_at, updated_at`

// Create inserts a section together with its subject list.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin section tx: %w", err)
	}
	const query = `INSERT INTO sections (id, name, grade_level, strand, tvl_sub_option, semester, adviser_id, school_year, source_id, created_at, updated_at)
        VALUES (:id, :name, :grade_level, :strand, :tvl_sub_option, :semester, :adviser_id, :school_year, :source_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, section); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert section: %w", err)
	}
	for i, subject := range section.Subjects {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO section_subjects (id, section_id, subject, position) VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), section.ID, subject, i); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert section subject: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit section: %w", err)
	}
	return nil
}

// GetByID returns a section and its subject list.
func (r *SectionRepository) GetByID(ctx context.Context, id string) (*models.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections WHERE id = $1`, sectionColumns)
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, fmt.Errorf("get section: %w", err)
	}
	subjects, err := r.Subjects(ctx, id)
	if err != nil {
		return nil, err
	}
	section.Subjects = subjects
	return &section, nil
}

// Subjects returns the ordered subject list for a section.
func (r *SectionRepository) Subjects(ctx context.Context, sectionID string) ([]string, error) {
	var subjects []string
	query := `SELECT subject FROM section_subjects WHERE section_id = $1 ORDER BY position`
	if err := r.db.SelectContext(ctx, &subjects, query, sectionID); err != nil {
		return nil, fmt.Errorf("list section subjects: %w", err)
	}
	return subjects, nil
}

// List returns sections matching the filter.
func (r *SectionRepository) List(ctx context.Context, filter models.SectionFilter) ([]models.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections WHERE 1=1`, sectionColumns)
	var args []interface{}
	query, args = applySectionFilter(query, args, filter)
	query += " ORDER BY grade_level, name"
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
	}
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// Count returns the number of sections matching the filter.
func (r *SectionRepository) Count(ctx context.Context, filter models.SectionFilter) (int, error) {
	query := `SELECT COUNT(*) FROM sections WHERE 1=1`
	var args []interface{}
	query, args = applySectionFilter(query, args, filter)
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count sections: %w", err)
	}
	return count, nil
}

func applySectionFilter(query string, args []interface{}, filter models.SectionFilter) (string, []interface{}) {
	if filter.GradeLevel != nil {
		query += fmt.Sprintf(" AND grade_level = $%d", len(args)+1)
		args = append(args, *filter.GradeLevel)
	}
	if filter.Strand != nil {
		query += fmt.Sprintf(" AND strand = $%d", len(args)+1)
		args = append(args, *filter.Strand)
	}
	if filter.Semester != nil {
		query += fmt.Sprintf(" AND semester = $%d", len(args)+1)
		args = append(args, *filter.Semester)
	}
	if filter.AdviserID != nil {
		query += fmt.Sprintf(" AND adviser_id = $%d", len(args)+1)
		args = append(args, *filter.AdviserID)
	}
	if filter.SchoolYear != "" {
		query += fmt.Sprintf(" AND school_year = $%d", len(args)+1)
		args = append(args, filter.SchoolYear)
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}
	return query, args
}

// AssignAdviser attaches an adviser to the section.
func (r *SectionRepository) AssignAdviser(ctx context.Context, sectionID, adviserID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sections SET adviser_id = $1, updated_at = NOW() WHERE id = $2`, adviserID, sectionID)
	if err != nil {
		return fmt.Errorf("assign adviser: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}
	return nil
}

// AddSubjects appends school-defined subjects to a section, skipping names
// that are already present.
func (r *SectionRepository) AddSubjects(ctx context.Context, sectionID string, subjects []string) error {
	existing, err := r.Subjects(ctx, sectionID)
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(existing))
	for _, s := range existing {
		present[s] = true
	}
	position := len(existing)
	for _, subject := range subjects {
		if present[subject] {
			continue
		}
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO section_subjects (id, section_id, subject, position) VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), sectionID, subject, position); err != nil {
			return fmt.Errorf("add section subject: %w", err)
		}
		present[subject] = true
		position++
	}
	return nil
}
