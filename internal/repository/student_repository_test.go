package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnhs-dev/student-record-api/internal/models"
)

func newStudentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "lrn", "first_name", "middle_name", "last_name", "sex", "birth_date", "grade_level", "strand", "tvl_sub_option", "section_id", "status", "school_year", "guardian_name", "address", "created_at", "updated_at"})
}

func TestStudentRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{
		LRN:        "123456789012",
		FirstName:  "Juan",
		LastName:   "Dela Cruz",
		Sex:        "Male",
		GradeLevel: 10,
		Status:     models.StudentEnrolled,
		SchoolYear: "2025-2026",
	}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)

	now := time.Now()
	rows := studentRows().
		AddRow(student.ID, student.LRN, student.FirstName, nil, student.LastName, student.Sex, nil, 10, nil, nil, nil, "Enrolled", "2025-2026", nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, lrn, first_name")).
		WithArgs(student.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juan Dela Cruz", found.FullName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	now := time.Now()
	rows := studentRows().
		AddRow("student-1", "123456789012", "Maria", nil, "Santos", "Female", nil, 12, "STEM", nil, "section-1", "Enrolled", "2025-2026", nil, nil, now, now)

	level := 12
	status := models.StudentEnrolled
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, lrn, first_name")).
		WithArgs(level, "Enrolled", "2025-2026").
		WillReturnRows(rows)

	students, err := repo.List(context.Background(), models.StudentFilter{
		GradeLevel: &level,
		Status:     &status,
		SchoolYear: "2025-2026",
	})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Maria", students[0].FirstName)
	require.NotNil(t, students[0].Strand)
	assert.Equal(t, models.StrandSTEM, *students[0].Strand)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "student-1", models.StudentDropout))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateStatusNotFound(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.StudentDropout)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCountBySchoolYear(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	rows := sqlmock.NewRows([]string{"school_year", "count"}).
		AddRow("2024-2025", 2).
		AddRow("2025-2026", 3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT school_year, COUNT(*) AS count FROM students")).
		WillReturnRows(rows)

	counts, err := repo.CountBySchoolYear(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "2024-2025", counts[0].SchoolYear)
	assert.Equal(t, 3, counts[1].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryAssignSection(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET section_id")).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.AssignSection(context.Background(), "section-2", []string{"student-1", "student-2"}))
	require.NoError(t, mock.ExpectationsWereMet())
}
