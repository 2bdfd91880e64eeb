package grading

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnhs-dev/student-record-api/internal/models"
)

func entry(studentID string, gradeLevel int, avg *float64) models.GradeEntry {
	return models.GradeEntry{
		ID:             "entry-" + studentID,
		StudentID:      studentID,
		StudentName:    "Student " + studentID,
		SectionID:      "section-1",
		SectionName:    "Sampaguita",
		GradeLevel:     gradeLevel,
		GeneralAverage: avg,
	}
}

func semEntry(studentID string, sem models.Semester, avg *float64) models.GradeEntry {
	e := entry(studentID, 12, avg)
	e.ID = fmt.Sprintf("entry-%s-%s", studentID, sem)
	e.Semester = &sem
	return e
}

func TestRankTopNOrdersAndTruncates(t *testing.T) {
	entries := make([]models.GradeEntry, 0, 12)
	for i := 0; i < 12; i++ {
		avg := 80.0 + float64(i)
		entries = append(entries, entry(fmt.Sprintf("s%02d", i), 10, &avg))
	}
	ranked := RankTopN(entries, 10, RankScope{})
	require.Len(t, ranked, 10)
	assert.Equal(t, "s11", ranked[0].StudentID)
	assert.Equal(t, 91.0, ranked[0].GeneralAverage)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "s02", ranked[9].StudentID)
}

func TestRankTopNFewerThanN(t *testing.T) {
	a, b, c := 88.0, 91.0, 79.5
	entries := []models.GradeEntry{
		entry("s1", 9, &a),
		entry("s2", 9, &b),
		entry("s3", 9, &c),
	}
	ranked := RankTopN(entries, 10, RankScope{})
	require.Len(t, ranked, 3)
	assert.Equal(t, "s2", ranked[0].StudentID)
	assert.Equal(t, "s1", ranked[1].StudentID)
	assert.Equal(t, "s3", ranked[2].StudentID)
}

func TestRankTopNExcludesAbsentAverages(t *testing.T) {
	a := 85.0
	entries := []models.GradeEntry{
		entry("s1", 9, &a),
		entry("s2", 9, nil),
	}
	ranked := RankTopN(entries, 10, RankScope{})
	require.Len(t, ranked, 1)
	assert.Equal(t, "s1", ranked[0].StudentID)
}

func TestRankTopNTieBreaksByStudentID(t *testing.T) {
	avg := 90.0
	entries := []models.GradeEntry{
		entry("s-b", 9, &avg),
		entry("s-a", 9, &avg),
	}
	ranked := RankTopN(entries, 10, RankScope{})
	require.Len(t, ranked, 2)
	assert.Equal(t, "s-a", ranked[0].StudentID)
	assert.Equal(t, "s-b", ranked[1].StudentID)
}

func TestRankTopNScopes(t *testing.T) {
	a, b := 90.0, 95.0
	g7 := entry("s1", 7, &a)
	g8 := entry("s2", 8, &b)
	g8.SectionID = "section-2"

	level := 7
	ranked := RankTopN([]models.GradeEntry{g7, g8}, 10, RankScope{GradeLevel: &level})
	require.Len(t, ranked, 1)
	assert.Equal(t, "s1", ranked[0].StudentID)

	section := "section-2"
	ranked = RankTopN([]models.GradeEntry{g7, g8}, 10, RankScope{SectionID: &section})
	require.Len(t, ranked, 1)
	assert.Equal(t, "s2", ranked[0].StudentID)
}

func TestRankTopNDefaultsN(t *testing.T) {
	entries := make([]models.GradeEntry, 0, 15)
	for i := 0; i < 15; i++ {
		avg := 75.0 + float64(i)
		entries = append(entries, entry(fmt.Sprintf("s%02d", i), 10, &avg))
	}
	ranked := RankTopN(entries, 0, RankScope{})
	assert.Len(t, ranked, DefaultTopN)
}

func TestSubjectAverages(t *testing.T) {
	f1, f2, f3 := 80.0, 90.0, 70.0
	entries := []models.GradeEntry{
		{Subjects: []models.SubjectRecord{
			{Subject: "Mathematics", Final: &f1},
			{Subject: "English", Final: &f3},
		}},
		{Subjects: []models.SubjectRecord{
			{Subject: "Mathematics", Final: &f2},
			{Subject: "Science", Final: nil},
		}},
	}
	averages := SubjectAverages(entries)
	require.Len(t, averages, 2)

	assert.Equal(t, "English", averages[0].Subject)
	assert.Equal(t, 70.0, averages[0].Average)
	assert.True(t, averages[0].BelowPassing)
	assert.Equal(t, 1, averages[0].Count)

	assert.Equal(t, "Mathematics", averages[1].Subject)
	assert.Equal(t, 85.0, averages[1].Average)
	assert.False(t, averages[1].BelowPassing)
	assert.Equal(t, 2, averages[1].Count)
}

func TestClassifyCohort(t *testing.T) {
	avg := 85.0
	students := []models.Student{
		{ID: "jh1", GradeLevel: 8, Status: models.StudentEnrolled},
		{ID: "c1", GradeLevel: 10, Status: models.StudentEnrolled},
		{ID: "g1", GradeLevel: 12, Status: models.StudentEnrolled},
		{ID: "g2", GradeLevel: 12, Status: models.StudentEnrolled},
	}
	entries := []models.GradeEntry{
		func() models.GradeEntry { e := entry("c1", 10, &avg); return e }(),
		semEntry("g1", models.SemesterFirst, &avg),
		semEntry("g1", models.SemesterSecond, &avg),
		semEntry("g2", models.SemesterFirst, &avg),
	}
	counts := ClassifyCohort(students, entries)
	assert.Equal(t, 2, counts.JuniorHigh)
	assert.Equal(t, 2, counts.SeniorHigh)
	assert.Equal(t, 1, counts.Completers)
	assert.Equal(t, 1, counts.Graduates) // g2 lacks a 2nd-semester entry
}

func TestClassifyCohortSecondSemesterPromotesGraduate(t *testing.T) {
	avg := 88.0
	students := []models.Student{{ID: "g2", GradeLevel: 12, Status: models.StudentEnrolled}}
	entries := []models.GradeEntry{semEntry("g2", models.SemesterFirst, &avg)}
	assert.Equal(t, 0, ClassifyCohort(students, entries).Graduates)

	entries = append(entries, semEntry("g2", models.SemesterSecond, &avg))
	assert.Equal(t, 1, ClassifyCohort(students, entries).Graduates)
}

func TestClassifyCohortIgnoresAbsentAverages(t *testing.T) {
	students := []models.Student{{ID: "g1", GradeLevel: 12, Status: models.StudentEnrolled}}
	avg := 88.0
	entries := []models.GradeEntry{
		semEntry("g1", models.SemesterFirst, &avg),
		semEntry("g1", models.SemesterSecond, nil),
	}
	assert.Equal(t, 0, ClassifyCohort(students, entries).Graduates)
}

func TestDropoutAdjustedCount(t *testing.T) {
	students := []models.Student{
		{ID: "s1", Status: models.StudentEnrolled},
		{ID: "s2", Status: models.StudentDropout},
		{ID: "s3", Status: models.StudentEnrolled},
	}
	counts := DropoutAdjustedCount(students)
	assert.Equal(t, 2, counts.Active)
	assert.Equal(t, 1, counts.Dropped)

	active := ActiveStudents(students)
	require.Len(t, active, 2)
	assert.Equal(t, "s1", active[0].ID)
	assert.Equal(t, "s3", active[1].ID)
}
