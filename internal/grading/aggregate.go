package grading

import (
	"sort"

	"github.com/mnhs-dev/student-record-api/internal/models"
)

// RankScope narrows a ranking to a grade level, a section, or the whole
// school when both fields are nil.
type RankScope struct {
	GradeLevel *int
	SectionID  *string
}

// DefaultTopN is the ranking size used when the caller does not ask for one.
const DefaultTopN = 10

// RankTopN orders entries by descending general average and returns the top
// n. Entries without a computable general average are excluded. Ties are
// broken by ascending student id so repeated runs rank identically.
func RankTopN(entries []models.GradeEntry, n int, scope RankScope) []models.RankedStudent {
	if n <= 0 {
		n = DefaultTopN
	}
	qualifying := make([]models.GradeEntry, 0, len(entries))
	for _, e := range entries {
		if e.GeneralAverage == nil {
			continue
		}
		if scope.GradeLevel != nil && e.GradeLevel != *scope.GradeLevel {
			continue
		}
		if scope.SectionID != nil && e.SectionID != *scope.SectionID {
			continue
		}
		qualifying = append(qualifying, e)
	}
	sort.SliceStable(qualifying, func(i, j int) bool {
		a, b := *qualifying[i].GeneralAverage, *qualifying[j].GeneralAverage
		if a != b {
			return a > b
		}
		return qualifying[i].StudentID < qualifying[j].StudentID
	})
	if len(qualifying) > n {
		qualifying = qualifying[:n]
	}
	ranked := make([]models.RankedStudent, 0, len(qualifying))
	for i, e := range qualifying {
		ranked = append(ranked, models.RankedStudent{
			Rank:           i + 1,
			StudentID:      e.StudentID,
			StudentName:    e.StudentName,
			GradeLevel:     e.GradeLevel,
			SectionID:      e.SectionID,
			SectionName:    e.SectionName,
			GeneralAverage: *e.GeneralAverage,
		})
	}
	return ranked
}

// SubjectAverages aggregates per-subject mean final grades across the given
// entries. Entries that omit a subject do not contribute to its average.
// Results are ordered by subject name.
func SubjectAverages(entries []models.GradeEntry) []models.SubjectAverage {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, e := range entries {
		for _, rec := range e.Subjects {
			if rec.Final == nil {
				continue
			}
			sums[rec.Subject] += *rec.Final
			counts[rec.Subject]++
		}
	}
	averages := make([]models.SubjectAverage, 0, len(sums))
	for subject, sum := range sums {
		avg := RoundTwoDecimals(sum / float64(counts[subject]))
		averages = append(averages, models.SubjectAverage{
			Subject:      subject,
			Average:      avg,
			Count:        counts[subject],
			BelowPassing: PassFail(&avg) == models.StatusFailed,
		})
	}
	sort.Slice(averages, func(i, j int) bool {
		return averages[i].Subject < averages[j].Subject
	})
	return averages
}

// CohortCounts breaks a student population into the level-based cohorts
// reported on dashboards.
type CohortCounts struct {
	JuniorHigh int `json:"junior_high"`
	SeniorHigh int `json:"senior_high"`
	Completers int `json:"completers"`
	Graduates  int `json:"graduates"`
}

// ClassifyCohort counts junior-high and senior-high students, grade-10
// completers, and grade-12 graduates. A graduate needs a computable general
// average for both semesters; a completer needs a finalized annual entry.
func ClassifyCohort(students []models.Student, entries []models.GradeEntry) CohortCounts {
	type semesters struct {
		first  bool
		second bool
		annual bool
	}
	finalized := make(map[string]*semesters)
	for _, e := range entries {
		if e.GeneralAverage == nil {
			continue
		}
		s := finalized[e.StudentID]
		if s == nil {
			s = &semesters{}
			finalized[e.StudentID] = s
		}
		switch {
		case e.Semester == nil:
			s.annual = true
		case *e.Semester == models.SemesterFirst:
			s.first = true
		case *e.Semester == models.SemesterSecond:
			s.second = true
		}
	}

	var counts CohortCounts
	for _, st := range students {
		if st.GradeLevel <= 10 {
			counts.JuniorHigh++
		} else {
			counts.SeniorHigh++
		}
		f := finalized[st.ID]
		if f == nil {
			continue
		}
		if st.GradeLevel == 10 && f.annual {
			counts.Completers++
		}
		if st.GradeLevel == 12 && f.first && f.second {
			counts.Graduates++
		}
	}
	return counts
}

// EnrollmentCounts splits a population into active and dropped students.
type EnrollmentCounts struct {
	Active  int `json:"active"`
	Dropped int `json:"dropped"`
}

// DropoutAdjustedCount counts students by enrollment status. The cascaded
// status on the student record is the source of truth; dropout requests are
// the audit trail only.
func DropoutAdjustedCount(students []models.Student) EnrollmentCounts {
	var counts EnrollmentCounts
	for _, st := range students {
		if st.Status == models.StudentDropout {
			counts.Dropped++
		} else {
			counts.Active++
		}
	}
	return counts
}

// ActiveStudents filters out dropped students. Roster counts elsewhere in
// the system exclude dropped students by default.
func ActiveStudents(students []models.Student) []models.Student {
	active := make([]models.Student, 0, len(students))
	for _, st := range students {
		if st.Status != models.StudentDropout {
			active = append(active, st)
		}
	}
	return active
}
