package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnhs-dev/student-record-api/internal/grading"
	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
)

type memoryCacheRepo struct {
	values map[string][]byte
	sets   int
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{values: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	m.sets++
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.values {
		if strings.HasPrefix(key, prefix) {
			delete(m.values, key)
		}
	}
	return nil
}

type fakeDashboardStudents struct {
	students []models.Student
	trend    []models.SchoolYearEnrollment
	calls    int
}

func (f *fakeDashboardStudents) List(_ context.Context, _ models.StudentFilter) ([]models.Student, error) {
	f.calls++
	return f.students, nil
}

func (f *fakeDashboardStudents) CountBySchoolYear(_ context.Context) ([]models.SchoolYearEnrollment, error) {
	return f.trend, nil
}

type fakeDashboardEntries struct {
	entries []models.GradeEntry
	calls   int
}

func (f *fakeDashboardEntries) List(_ context.Context, filter models.GradeEntryFilter) ([]models.GradeEntry, error) {
	f.calls++
	if filter.SectionID == nil {
		return f.entries, nil
	}
	var out []models.GradeEntry
	for _, e := range f.entries {
		if e.SectionID == *filter.SectionID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeDropoutCounter struct {
	pending int
	reasons []models.DropoutReasonCount
}

func (f *fakeDropoutCounter) Count(_ context.Context, _ models.DropoutFilter) (int, error) {
	return f.pending, nil
}

func (f *fakeDropoutCounter) CountByReason(_ context.Context, _ models.DropoutStatus) ([]models.DropoutReasonCount, error) {
	return f.reasons, nil
}

func avgPtr(v float64) *float64 { return &v }

func dashboardFixture() (*fakeDashboardStudents, *fakeDashboardEntries, *memoryCacheRepo, *DashboardService) {
	sem1, sem2 := models.SemesterFirst, models.SemesterSecond
	students := &fakeDashboardStudents{
		students: []models.Student{
			{ID: "s1", GradeLevel: 10, Status: models.StudentEnrolled},
			{ID: "s2", GradeLevel: 10, Status: models.StudentDropout},
			{ID: "s3", GradeLevel: 12, Status: models.StudentEnrolled},
		},
		trend: []models.SchoolYearEnrollment{
			{SchoolYear: "2024-2025", Count: 2},
			{SchoolYear: "2025-2026", Count: 3},
		},
	}
	entries := &fakeDashboardEntries{entries: []models.GradeEntry{
		{ID: "e1", StudentID: "s1", SectionID: "sec1", GradeLevel: 10, GeneralAverage: avgPtr(88.5),
			Subjects: []models.SubjectRecord{{Subject: "Mathematics", Final: avgPtr(88)}}},
		{ID: "e2", StudentID: "s3", SectionID: "sec2", GradeLevel: 12, Semester: &sem1, GeneralAverage: avgPtr(91.0)},
		{ID: "e3", StudentID: "s3", SectionID: "sec2", GradeLevel: 12, Semester: &sem2, GeneralAverage: avgPtr(90.0)},
	}}
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	dropouts := &fakeDropoutCounter{
		pending: 2,
		reasons: []models.DropoutReasonCount{
			{Reason: "Family relocation", Count: 3},
			{Reason: "Financial hardship", Count: 1},
		},
	}
	svc := NewDashboardService(students, entries, dropouts, cache, nil, DashboardServiceConfig{})
	return students, entries, cacheRepo, svc
}

func TestDashboardOverview(t *testing.T) {
	_, _, _, svc := dashboardFixture()

	overview, err := svc.Overview(context.Background(), "2025-2026")
	require.NoError(t, err)

	assert.Equal(t, 3, overview.TotalStudents)
	assert.Equal(t, 2, overview.Enrollment.Active)
	assert.Equal(t, 1, overview.Enrollment.Dropped)
	assert.Equal(t, 1, overview.Cohorts.JuniorHigh)
	assert.Equal(t, 1, overview.Cohorts.SeniorHigh)
	assert.Equal(t, 1, overview.Cohorts.Completers)
	assert.Equal(t, 1, overview.Cohorts.Graduates)
	assert.Equal(t, 2, overview.PendingDropouts)
	require.Len(t, overview.DropoutsByReason, 2)
	assert.Equal(t, "Family relocation", overview.DropoutsByReason[0].Reason)
	assert.Equal(t, 3, overview.DropoutsByReason[0].Count)
	require.NotEmpty(t, overview.TopStudents)
	assert.Equal(t, "s3", overview.TopStudents[0].StudentID)
	require.Len(t, overview.SubjectAverages, 1)
	assert.Equal(t, "Mathematics", overview.SubjectAverages[0].Subject)
}

func TestDashboardOverviewServedFromCache(t *testing.T) {
	students, entries, cacheRepo, svc := dashboardFixture()

	_, err := svc.Overview(context.Background(), "2025-2026")
	require.NoError(t, err)
	require.Equal(t, 1, cacheRepo.sets)
	firstStudentCalls := students.calls
	firstEntryCalls := entries.calls

	cached, err := svc.Overview(context.Background(), "2025-2026")
	require.NoError(t, err)
	assert.Equal(t, 3, cached.TotalStudents)
	assert.Equal(t, firstStudentCalls, students.calls, "second read must not hit the store")
	assert.Equal(t, firstEntryCalls, entries.calls)
}

func TestDashboardInvalidateForcesRecompute(t *testing.T) {
	students, _, _, svc := dashboardFixture()

	_, err := svc.Overview(context.Background(), "2025-2026")
	require.NoError(t, err)
	callsBefore := students.calls

	require.NoError(t, svc.Invalidate(context.Background()))

	_, err = svc.Overview(context.Background(), "2025-2026")
	require.NoError(t, err)
	assert.Greater(t, students.calls, callsBefore)
}

func TestDashboardTopStudentsScoped(t *testing.T) {
	_, _, _, svc := dashboardFixture()

	level := 10
	ranked, err := svc.TopStudents(context.Background(), "2025-2026", 5, grading.RankScope{GradeLevel: &level})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "s1", ranked[0].StudentID)
}

func TestDashboardSubjectAveragesBySection(t *testing.T) {
	_, _, _, svc := dashboardFixture()

	section := "sec1"
	averages, err := svc.SubjectAverages(context.Background(), "2025-2026", &section)
	require.NoError(t, err)
	require.Len(t, averages, 1)
	assert.Equal(t, 88.0, averages[0].Average)
}

func TestDashboardEnrollmentByLevelExcludesDropped(t *testing.T) {
	_, _, _, svc := dashboardFixture()

	levels, err := svc.EnrollmentByLevel(context.Background(), "2025-2026")
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, 10, levels[0].GradeLevel)
	assert.Equal(t, 1, levels[0].Count, "dropped students are excluded")
	assert.Equal(t, 12, levels[1].GradeLevel)
}

func TestDashboardEnrollmentTrend(t *testing.T) {
	_, _, _, svc := dashboardFixture()

	trend, err := svc.EnrollmentTrend(context.Background())
	require.NoError(t, err)
	require.Len(t, trend, 2)
	assert.Equal(t, "2024-2025", trend[0].SchoolYear)
	assert.Equal(t, 2, trend[0].Count)
	assert.Equal(t, "2025-2026", trend[1].SchoolYear)
	assert.Equal(t, 3, trend[1].Count)
}
