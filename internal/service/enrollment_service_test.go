package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
)

type fakeEnrollmentStudents struct {
	byID     map[string]*models.Student
	byLRN    map[string]*models.Student
	assigned map[string]string
}

func newFakeEnrollmentStudents() *fakeEnrollmentStudents {
	return &fakeEnrollmentStudents{
		byID:     make(map[string]*models.Student),
		byLRN:    make(map[string]*models.Student),
		assigned: make(map[string]string),
	}
}

func (f *fakeEnrollmentStudents) add(student *models.Student) {
	f.byID[student.ID] = student
	f.byLRN[student.LRN] = student
}

func (f *fakeEnrollmentStudents) Create(_ context.Context, student *models.Student) error {
	student.ID = uuid.NewString()
	f.add(student)
	return nil
}

func (f *fakeEnrollmentStudents) GetByID(_ context.Context, id string) (*models.Student, error) {
	student, ok := f.byID[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

func (f *fakeEnrollmentStudents) GetByLRN(_ context.Context, lrn string) (*models.Student, error) {
	student, ok := f.byLRN[lrn]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

func (f *fakeEnrollmentStudents) List(_ context.Context, _ models.StudentFilter) ([]models.Student, error) {
	students := make([]models.Student, 0, len(f.byID))
	for _, s := range f.byID {
		students = append(students, *s)
	}
	return students, nil
}

func (f *fakeEnrollmentStudents) Count(_ context.Context, _ models.StudentFilter) (int, error) {
	return len(f.byID), nil
}

func (f *fakeEnrollmentStudents) Update(_ context.Context, id string, fields map[string]interface{}) error {
	student, ok := f.byID[id]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if v, ok := fields["first_name"]; ok {
		student.FirstName = v.(string)
	}
	if v, ok := fields["grade_level"]; ok {
		student.GradeLevel = v.(int)
	}
	return nil
}

func (f *fakeEnrollmentStudents) AssignSection(_ context.Context, sectionID string, studentIDs []string) error {
	for _, id := range studentIDs {
		f.assigned[id] = sectionID
	}
	return nil
}

func enrollmentRequest(gradeLevel int) models.CreateStudentRequest {
	return models.CreateStudentRequest{
		LRN:        "101234567890",
		FirstName:  "Jose",
		LastName:   "Cruz",
		Sex:        "Male",
		GradeLevel: gradeLevel,
		SchoolYear: "2025-2026",
	}
}

func TestEnrollmentServiceEnrollJunior(t *testing.T) {
	students := newFakeEnrollmentStudents()
	svc := NewEnrollmentService(students, &fakeSectionReader{}, nil, nil)

	student, err := svc.Enroll(context.Background(), enrollmentRequest(7))
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, models.StudentEnrolled, student.Status)
	assert.Nil(t, student.Strand)
}

func TestEnrollmentServiceDuplicateLRN(t *testing.T) {
	students := newFakeEnrollmentStudents()
	students.add(&models.Student{ID: uuid.NewString(), LRN: "101234567890", Status: models.StudentEnrolled})
	svc := NewEnrollmentService(students, &fakeSectionReader{}, nil, nil)

	_, err := svc.Enroll(context.Background(), enrollmentRequest(7))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceSeniorRequiresStrand(t *testing.T) {
	svc := NewEnrollmentService(newFakeEnrollmentStudents(), &fakeSectionReader{}, nil, nil)

	_, err := svc.Enroll(context.Background(), enrollmentRequest(11))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceTVLRequiresSpecialization(t *testing.T) {
	students := newFakeEnrollmentStudents()
	svc := NewEnrollmentService(students, &fakeSectionReader{}, nil, nil)

	req := enrollmentRequest(11)
	strand := string(models.StrandTVL)
	req.Strand = &strand

	_, err := svc.Enroll(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	sub := "CSS"
	req.TVLSubOption = &sub
	student, err := svc.Enroll(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, student.TVLSubOption)
	assert.Equal(t, models.StrandTVL, *student.Strand)
}

func TestEnrollmentServiceAssignToSection(t *testing.T) {
	students := newFakeEnrollmentStudents()
	enrolled := &models.Student{ID: uuid.NewString(), LRN: "101234567890", GradeLevel: 10, Status: models.StudentEnrolled}
	students.add(enrolled)
	section := &models.Section{ID: uuid.NewString(), Name: "Sampaguita", GradeLevel: 10}
	svc := NewEnrollmentService(students, &fakeSectionReader{section: section}, nil, nil)

	require.NoError(t, svc.AssignToSection(context.Background(), section.ID, []string{enrolled.ID}))
	assert.Equal(t, section.ID, students.assigned[enrolled.ID])
}

func TestEnrollmentServiceAssignRejectsGradeMismatch(t *testing.T) {
	students := newFakeEnrollmentStudents()
	junior := &models.Student{ID: uuid.NewString(), LRN: "101234567890", GradeLevel: 8, Status: models.StudentEnrolled}
	students.add(junior)
	section := &models.Section{ID: uuid.NewString(), Name: "Sampaguita", GradeLevel: 10}
	svc := NewEnrollmentService(students, &fakeSectionReader{section: section}, nil, nil)

	err := svc.AssignToSection(context.Background(), section.ID, []string{junior.ID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, students.assigned)
}

func TestEnrollmentServiceAssignRejectsDroppedStudent(t *testing.T) {
	students := newFakeEnrollmentStudents()
	dropped := &models.Student{ID: uuid.NewString(), LRN: "101234567890", GradeLevel: 10, Status: models.StudentDropout}
	students.add(dropped)
	section := &models.Section{ID: uuid.NewString(), Name: "Sampaguita", GradeLevel: 10}
	svc := NewEnrollmentService(students, &fakeSectionReader{section: section}, nil, nil)

	err := svc.AssignToSection(context.Background(), section.ID, []string{dropped.ID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}
