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

// StudentRepository handles student persistence.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, lrn, first_name, middle_name, last_name, sex, birth_date, grade_level, strand, tvl_sub_option, section_id, status, school_year, guardian_name, address, created_at, updated_at`

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, lrn, first_name, middle_name, last_name, sex, birth_date, grade_level, strand, tvl_sub_option, section_id, status, school_year, guardian_name, address, created_at, updated_at)
        VALUES (:id, :lrn, :first_name, :middle_name, :last_name, :sex, :birth_date, :grade_level, :strand, :tvl_sub_option, :section_id, :status, :school_year, :guardian_name, :address, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// GetByID returns a student by id.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &student, nil
}

// GetByLRN returns a student by learner reference number.
func (r *StudentRepository) GetByLRN(ctx context.Context, lrn string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE lrn = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, lrn); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, fmt.Errorf("get student by lrn: %w", err)
	}
	return &student, nil
}

// List returns students matching the filter.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE 1=1`, studentColumns)
	var args []interface{}
	query, args = applyStudentFilter(query, args, filter)

	sortBy := "last_name"
	switch filter.SortBy {
	case "grade_level", "lrn", "created_at", "first_name":
		sortBy = filter.SortBy
	}
	order := "ASC"
	if filter.SortOrder == "desc" {
		order = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, order)
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
	}

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Count returns the number of students matching the filter.
func (r *StudentRepository) Count(ctx context.Context, filter models.StudentFilter) (int, error) {
	query := `SELECT COUNT(*) FROM students WHERE 1=1`
	var args []interface{}
	query, args = applyStudentFilter(query, args, filter)
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// CountBySchoolYear groups students per school year for the enrollment trend.
func (r *StudentRepository) CountBySchoolYear(ctx context.Context) ([]models.SchoolYearEnrollment, error) {
	const query = `SELECT school_year, COUNT(*) AS count FROM students
		GROUP BY school_year ORDER BY school_year ASC`
	var counts []models.SchoolYearEnrollment
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count students by school year: %w", err)
	}
	return counts, nil
}

func applyStudentFilter(query string, args []interface{}, filter models.StudentFilter) (string, []interface{}) {
	if filter.GradeLevel != nil {
		query += fmt.Sprintf(" AND grade_level = $%d", len(args)+1)
		args = append(args, *filter.GradeLevel)
	}
	if filter.SectionID != nil {
		query += fmt.Sprintf(" AND section_id = $%d", len(args)+1)
		args = append(args, *filter.SectionID)
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}
	if filter.Strand != nil {
		query += fmt.Sprintf(" AND strand = $%d", len(args)+1)
		args = append(args, *filter.Strand)
	}
	if filter.SchoolYear != "" {
		query += fmt.Sprintf(" AND school_year = $%d", len(args)+1)
		args = append(args, filter.SchoolYear)
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR lrn ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}
	return query, args
}

// ListBySection returns all students assigned to the section.
func (r *StudentRepository) ListBySection(ctx context.Context, sectionID string) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE section_id = $1 ORDER BY last_name, first_name`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, sectionID); err != nil {
		return nil, fmt.Errorf("list section students: %w", err)
	}
	return students, nil
}

// ListByIDs returns the students with the given ids.
func (r *StudentRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Student, error) {
	if len(ids) == 0 {
		return []models.Student{}, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf(`SELECT %s FROM students WHERE id IN (?)`, studentColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build students query: %w", err)
	}
	query = r.db.Rebind(query)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students by ids: %w", err)
	}
	return students, nil
}

// Update applies the given field map to a student record.
func (r *StudentRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	query := "UPDATE students SET updated_at = NOW()"
	var args []interface{}
	for column, value := range fields {
		query += fmt.Sprintf(", %s = $%d", column, len(args)+1)
		args = append(args, value)
	}
	query += fmt.Sprintf(" WHERE id = $%d", len(args)+1)
	args = append(args, id)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return nil
}

// UpdateStatus sets the student's enrollment status.
func (r *StudentRepository) UpdateStatus(ctx context.Context, id string, status models.StudentStatus) error {
	return r.Update(ctx, id, map[string]interface{}{"status": status})
}

// AssignSection moves the given students into the section.
func (r *StudentRepository) AssignSection(ctx context.Context, sectionID string, studentIDs []string) error {
	if len(studentIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE students SET section_id = ?, updated_at = NOW() WHERE id IN (?)`, sectionID, studentIDs)
	if err != nil {
		return fmt.Errorf("build assign query: %w", err)
	}
	query = r.db.Rebind(query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("assign section: %w", err)
	}
	return nil
}
