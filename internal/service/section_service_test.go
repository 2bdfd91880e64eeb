package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnhs-dev/student-record-api/internal/curriculum"
	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
)

type fakeSectionRepo struct {
	sections map[string]*models.Section
	created  []*models.Section
	adviser  map[string]string
	extras   map[string][]string
}

func newFakeSectionRepo() *fakeSectionRepo {
	return &fakeSectionRepo{
		sections: make(map[string]*models.Section),
		adviser:  make(map[string]string),
		extras:   make(map[string][]string),
	}
}

func (f *fakeSectionRepo) Create(_ context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = "section-" + section.Name
	}
	f.sections[section.ID] = section
	f.created = append(f.created, section)
	return nil
}

func (f *fakeSectionRepo) GetByID(_ context.Context, id string) (*models.Section, error) {
	if sec, ok := f.sections[id]; ok {
		return sec, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
}

func (f *fakeSectionRepo) List(_ context.Context, _ models.SectionFilter) ([]models.Section, error) {
	out := make([]models.Section, 0, len(f.sections))
	for _, sec := range f.sections {
		out = append(out, *sec)
	}
	return out, nil
}

func (f *fakeSectionRepo) Count(_ context.Context, _ models.SectionFilter) (int, error) {
	return len(f.sections), nil
}

func (f *fakeSectionRepo) AssignAdviser(_ context.Context, sectionID, adviserID string) error {
	f.adviser[sectionID] = adviserID
	return nil
}

func (f *fakeSectionRepo) AddSubjects(_ context.Context, sectionID string, subjects []string) error {
	f.extras[sectionID] = append(f.extras[sectionID], subjects...)
	return nil
}

type fakeSectionStudents struct {
	bySection map[string][]models.Student
	assigned  map[string][]string
}

func newFakeSectionStudents() *fakeSectionStudents {
	return &fakeSectionStudents{
		bySection: make(map[string][]models.Student),
		assigned:  make(map[string][]string),
	}
}

func (f *fakeSectionStudents) ListBySection(_ context.Context, sectionID string) ([]models.Student, error) {
	return f.bySection[sectionID], nil
}

func (f *fakeSectionStudents) ListByIDs(_ context.Context, ids []string) ([]models.Student, error) {
	out := make([]models.Student, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Student{ID: id, Status: models.StudentEnrolled})
	}
	return out, nil
}

func (f *fakeSectionStudents) AssignSection(_ context.Context, sectionID string, studentIDs []string) error {
	f.assigned[sectionID] = studentIDs
	return nil
}

type fakeFinalizedLister struct {
	ids map[string][]string
}

func (f *fakeFinalizedLister) ListFinalizedStudents(_ context.Context, sectionID string, _ models.Semester) ([]string, error) {
	return f.ids[sectionID], nil
}

type fakeAdviserReader struct {
	users map[string]*models.User
}

func (f *fakeAdviserReader) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
}

func sectionFixture() (*fakeSectionRepo, *fakeSectionStudents, *fakeFinalizedLister, *SectionService) {
	sections := newFakeSectionRepo()
	students := newFakeSectionStudents()
	entries := &fakeFinalizedLister{ids: make(map[string][]string)}
	users := &fakeAdviserReader{users: map[string]*models.User{
		"b3a9e1f0-0000-0000-0000-000000000001": {ID: "b3a9e1f0-0000-0000-0000-000000000001", FullName: "Ana Reyes", Role: models.RoleAdviser},
		"b3a9e1f0-0000-0000-0000-000000000002": {ID: "b3a9e1f0-0000-0000-0000-000000000002", FullName: "Ben Cruz", Role: models.RoleFaculty},
	}}
	svc := NewSectionService(sections, students, entries, users, nil, nil)
	return sections, students, entries, svc
}

func TestCreateSectionSeedsCatalogSubjects(t *testing.T) {
	sections, _, _, svc := sectionFixture()

	section, err := svc.Create(context.Background(), models.CreateSectionRequest{
		Name:          "Sampaguita",
		GradeLevel:    7,
		SchoolYear:    "2025-2026",
		ExtraSubjects: []string{"Journalism", "Filipino"},
	})
	require.NoError(t, err)
	require.Len(t, sections.created, 1)

	assert.Contains(t, section.Subjects, "Mathematics")
	assert.Contains(t, section.Subjects, curriculum.SubjectMAPEH)
	assert.Contains(t, section.Subjects, "Journalism")

	filipino := 0
	for _, s := range section.Subjects {
		if s == "Filipino" {
			filipino++
		}
	}
	assert.Equal(t, 1, filipino, "catalog subjects are not duplicated by extras")
	assert.Nil(t, section.Semester)
}

func TestCreateSeniorHighSectionDefaultsFirstSemester(t *testing.T) {
	_, _, _, svc := sectionFixture()

	strand := "STEM"
	section, err := svc.Create(context.Background(), models.CreateSectionRequest{
		Name:       "Newton",
		GradeLevel: 11,
		Strand:     &strand,
		SchoolYear: "2025-2026",
	})
	require.NoError(t, err)
	require.NotNil(t, section.Semester)
	assert.Equal(t, models.SemesterFirst, *section.Semester)
	assert.Contains(t, section.Subjects, "Pre-Calculus")
}

func TestCreateSectionRejectsSemesterForJuniorHigh(t *testing.T) {
	_, _, _, svc := sectionFixture()

	sem := "1st"
	_, err := svc.Create(context.Background(), models.CreateSectionRequest{
		Name:       "Rosal",
		GradeLevel: 8,
		Semester:   &sem,
		SchoolYear: "2025-2026",
	})
	require.Error(t, err)
}

func TestAssignAdviserChecksRole(t *testing.T) {
	sections, _, _, svc := sectionFixture()
	sections.sections["section-1"] = &models.Section{ID: "section-1", Name: "Sampaguita", GradeLevel: 7}

	err := svc.AssignAdviser(context.Background(), "section-1", models.AssignAdviserRequest{AdviserID: "b3a9e1f0-0000-0000-0000-000000000002"})
	require.Error(t, err, "faculty cannot be assigned as adviser")

	err = svc.AssignAdviser(context.Background(), "section-1", models.AssignAdviserRequest{AdviserID: "b3a9e1f0-0000-0000-0000-000000000001"})
	require.NoError(t, err)
	assert.Equal(t, "b3a9e1f0-0000-0000-0000-000000000001", sections.adviser["section-1"])
}

func TestForwardToSecondSemester(t *testing.T) {
	sections, students, entries, svc := sectionFixture()
	strand := models.StrandSTEM
	first := models.SemesterFirst
	adviser := "b3a9e1f0-0000-0000-0000-000000000001"
	sections.sections["section-1"] = &models.Section{
		ID:         "section-1",
		Name:       "Newton",
		GradeLevel: 11,
		Strand:     &strand,
		Semester:   &first,
		AdviserID:  &adviser,
		SchoolYear: "2025-2026",
		Subjects:   []string{"General Mathematics", "Pre-Calculus"},
	}
	entries.ids["section-1"] = []string{"student-1", "student-2"}

	roster, err := svc.ForwardToSecondSemester(context.Background(), "section-1", models.ForwardSectionRequest{})
	require.NoError(t, err)

	derived := roster.Section
	assert.NotEqual(t, "section-1", derived.ID, "forwarding creates a new section")
	require.NotNil(t, derived.Semester)
	assert.Equal(t, models.SemesterSecond, *derived.Semester)
	require.NotNil(t, derived.SourceID)
	assert.Equal(t, "section-1", *derived.SourceID)
	assert.Equal(t, []string{"General Mathematics", "Pre-Calculus"}, derived.Subjects)

	assert.Equal(t, []string{"student-1", "student-2"}, students.assigned[derived.ID])
	require.Len(t, roster.Students, 2)

	// source remains a first-semester section
	assert.Equal(t, models.SemesterFirst, *sections.sections["section-1"].Semester)
}

func TestForwardRequiresFinalizedGrades(t *testing.T) {
	sections, _, _, svc := sectionFixture()
	strand := models.StrandABM
	first := models.SemesterFirst
	sections.sections["section-1"] = &models.Section{
		ID: "section-1", Name: "Luna", GradeLevel: 11, Strand: &strand, Semester: &first,
	}

	_, err := svc.ForwardToSecondSemester(context.Background(), "section-1", models.ForwardSectionRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestForwardRejectsSecondSemesterSource(t *testing.T) {
	sections, _, entries, svc := sectionFixture()
	strand := models.StrandABM
	second := models.SemesterSecond
	sections.sections["section-2"] = &models.Section{
		ID: "section-2", Name: "Luna", GradeLevel: 11, Strand: &strand, Semester: &second,
	}
	entries.ids["section-2"] = []string{"student-1"}

	_, err := svc.ForwardToSecondSemester(context.Background(), "section-2", models.ForwardSectionRequest{})
	require.Error(t, err)
}
