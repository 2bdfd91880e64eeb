package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
)

// GradeEntryRepository handles grade entry persistence.
type GradeEntryRepository struct {
	db *sqlx.DB
}

// NewGradeEntryRepository creates a new grade entry repository.
func NewGradeEntryRepository(db *sqlx.DB) *GradeEntryRepository {
	return &GradeEntryRepository{db: db}
}

const gradeEntryColumns = `id, student_id, student_name, section_id, section_name, grade_level, strand, semester, adviser_id, school_year, general_average, created_at`

// ExistsForScope reports whether an entry already exists for the
// (student, section, semester) tuple.
func (r *GradeEntryRepository) ExistsForScope(ctx context.Context, studentID, sectionID string, semester *models.Semester) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM grade_entries WHERE student_id = $1 AND section_id = $2 AND semester IS NOT DISTINCT FROM $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, sectionID, semester); err != nil {
		return false, fmt.Errorf("check grade entry: %w", err)
	}
	return exists, nil
}

// Create persists the entry and its subject records in one transaction.
// The unique index on (student_id, section_id, semester) backs the
// duplicate check; a conflict maps to the duplicate entry error.
func (r *GradeEntryRepository) Create(ctx context.Context, entry *models.GradeEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grade entry tx: %w", err)
	}

	const entryQuery = `INSERT INTO grade_entries (id, student_id, student_name, section_id, section_name, grade_level, strand, semester, adviser_id, school_year, general_average, created_at)
        VALUES (:id, :student_id, :student_name, :section_id, :section_name, :grade_level, :strand, :semester, :adviser_id, :school_year, :general_average, :created_at)`
	if _, err := tx.NamedExecContext(ctx, entryQuery, entry); err != nil {
		tx.Rollback() //nolint:errcheck
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return appErrors.ErrDuplicateEntry
		}
		return fmt.Errorf("insert grade entry: %w", err)
	}

	const subjectQuery = `INSERT INTO grade_entry_subjects (id, entry_id, subject, position, q1, q2, q3, q4, final)
        VALUES (:id, :entry_id, :subject, :position, :q1, :q2, :q3, :q4, :final)`
	for i := range entry.Subjects {
		if entry.Subjects[i].ID == "" {
			entry.Subjects[i].ID = uuid.NewString()
		}
		entry.Subjects[i].EntryID = entry.ID
		entry.Subjects[i].Position = i
		if _, err := tx.NamedExecContext(ctx, subjectQuery, entry.Subjects[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert subject record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grade entry: %w", err)
	}
	return nil
}

// GetByID loads an entry with its subject records.
func (r *GradeEntryRepository) GetByID(ctx context.Context, id string) (*models.GradeEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM grade_entries WHERE id = $1`, gradeEntryColumns)
	var entry models.GradeEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade entry not found")
		}
		return nil, fmt.Errorf("get grade entry: %w", err)
	}
	subjects, err := r.loadSubjects(ctx, []string{entry.ID})
	if err != nil {
		return nil, err
	}
	entry.Subjects = subjects[entry.ID]
	return &entry, nil
}

// List returns entries matching the filter, subject records included.
func (r *GradeEntryRepository) List(ctx context.Context, filter models.GradeEntryFilter) ([]models.GradeEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM grade_entries WHERE 1=1`, gradeEntryColumns)
	var args []interface{}
	if filter.StudentID != nil {
		query += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, *filter.StudentID)
	}
	if filter.SectionID != nil {
		query += fmt.Sprintf(" AND section_id = $%d", len(args)+1)
		args = append(args, *filter.SectionID)
	}
	if filter.GradeLevel != nil {
		query += fmt.Sprintf(" AND grade_level = $%d", len(args)+1)
		args = append(args, *filter.GradeLevel)
	}
	if filter.Semester != nil {
		query += fmt.Sprintf(" AND semester = $%d", len(args)+1)
		args = append(args, *filter.Semester)
	}
	if filter.SchoolYear != "" {
		query += fmt.Sprintf(" AND school_year = $%d", len(args)+1)
		args = append(args, filter.SchoolYear)
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

	var entries []models.GradeEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list grade entries: %w", err)
	}
	if len(entries) == 0 {
		return entries, nil
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	subjects, err := r.loadSubjects(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Subjects = subjects[entries[i].ID]
	}
	return entries, nil
}

// Count returns the number of entries matching the filter.
func (r *GradeEntryRepository) Count(ctx context.Context, filter models.GradeEntryFilter) (int, error) {
	query := `SELECT COUNT(*) FROM grade_entries WHERE 1=1`
	var args []interface{}
	if filter.StudentID != nil {
		query += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, *filter.StudentID)
	}
	if filter.SectionID != nil {
		query += fmt.Sprintf(" AND section_id = $%d", len(args)+1)
		args = append(args, *filter.SectionID)
	}
	if filter.GradeLevel != nil {
		query += fmt.Sprintf(" AND grade_level = $%d", len(args)+1)
		args = append(args, *filter.GradeLevel)
	}
	if filter.Semester != nil {
		query += fmt.Sprintf(" AND semester = $%d", len(args)+1)
		args = append(args, *filter.Semester)
	}
	if filter.SchoolYear != "" {
		query += fmt.Sprintf(" AND school_year = $%d", len(args)+1)
		args = append(args, filter.SchoolYear)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count grade entries: %w", err)
	}
	return count, nil
}

// ListFinalizedStudents returns the student ids with a finalized entry for
// the section and semester. Used when a first-semester roster is forwarded.
func (r *GradeEntryRepository) ListFinalizedStudents(ctx context.Context, sectionID string, semester models.Semester) ([]string, error) {
	query := `SELECT student_id FROM grade_entries
        WHERE section_id = $1 AND semester = $2 AND general_average IS NOT NULL
        ORDER BY student_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, sectionID, semester); err != nil {
		return nil, fmt.Errorf("list finalized students: %w", err)
	}
	return ids, nil
}

func (r *GradeEntryRepository) loadSubjects(ctx context.Context, entryIDs []string) (map[string][]models.SubjectRecord, error) {
	query, args, err := sqlx.In(`SELECT id, entry_id, subject, position, q1, q2, q3, q4, final
        FROM grade_entry_subjects WHERE entry_id IN (?) ORDER BY entry_id, position`, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("build subject query: %w", err)
	}
	query = r.db.Rebind(query)
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch subject records: %w", err)
	}
	defer rows.Close()
	result := make(map[string][]models.SubjectRecord, len(entryIDs))
	for rows.Next() {
		var rec models.SubjectRecord
		if err := rows.StructScan(&rec); err != nil {
			return nil, fmt.Errorf("scan subject record: %w", err)
		}
		result[rec.EntryID] = append(result[rec.EntryID], rec)
	}
	return result, rows.Err()
}
