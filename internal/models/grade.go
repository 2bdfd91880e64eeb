package models

import "time"

// PassStatus classifies a final grade against the passing mark.
type PassStatus string

const (
	StatusPassed       PassStatus = "Passed"
	StatusFailed       PassStatus = "Failed"
	StatusUndetermined PassStatus = "Undetermined"
)

// SubjectRecord holds the recorded scores and derived final grade for one
// subject inside a grade entry. Junior-high entries use all four quarters;
// senior-high semester entries use the first two slots only.
type SubjectRecord struct {
	ID       string   `db:"id" json:"id"`
	EntryID  string   `db:"entry_id" json:"-"`
	Subject  string   `db:"subject" json:"subject"`
	Position int      `db:"position" json:"-"`
	Quarter1 *float64 `db:"q1" json:"q1,omitempty"`
	Quarter2 *float64 `db:"q2" json:"q2,omitempty"`
	Quarter3 *float64 `db:"q3" json:"q3,omitempty"`
	Quarter4 *float64 `db:"q4" json:"q4,omitempty"`
	Final    *float64 `db:"final" json:"final,omitempty"`
}

// Scores returns the quarter slots in order.
func (r SubjectRecord) Scores() []*float64 {
	return []*float64{r.Quarter1, r.Quarter2, r.Quarter3, r.Quarter4}
}

// GradeEntry is the finalized grade sheet for one student in one section.
// At most one entry exists per (student, section, semester) tuple.
type GradeEntry struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	StudentName    string    `db:"student_name" json:"student_name"`
	SectionID      string    `db:"section_id" json:"section_id"`
	SectionName    string    `db:"section_name" json:"section_name"`
	GradeLevel     int       `db:"grade_level" json:"grade_level"`
	Strand         *Strand   `db:"strand" json:"strand,omitempty"`
	Semester       *Semester `db:"semester" json:"semester,omitempty"`
	AdviserID      *string   `db:"adviser_id" json:"adviser_id,omitempty"`
	SchoolYear     string    `db:"school_year" json:"school_year"`
	GeneralAverage *float64  `db:"general_average" json:"general_average,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	Subjects []SubjectRecord `db:"-" json:"subjects,omitempty"`
}

// IsSemestral reports whether the entry belongs to the senior-high system.
func (e GradeEntry) IsSemestral() bool {
	return e.Semester != nil
}

// GradeEntryFilter captures filtering criteria for listing grade entries.
type GradeEntryFilter struct {
	StudentID  *string
	SectionID  *string
	GradeLevel *int
	Semester   *Semester
	SchoolYear string
	Page       int
	PageSize   int
}

// SubjectScoresInput carries the raw quarter scores for one subject.
type SubjectScoresInput struct {
	Subject string     `json:"subject" validate:"required"`
	Scores  []*float64 `json:"scores" validate:"required,max=4"`
}

// SaveGradeEntryRequest is an adviser's save payload for a student's grades.
type SaveGradeEntryRequest struct {
	StudentID string               `json:"student_id" validate:"required,uuid"`
	SectionID string               `json:"section_id" validate:"required,uuid"`
	Semester  *string              `json:"semester,omitempty" validate:"omitempty,oneof=1st 2nd"`
	Subjects  []SubjectScoresInput `json:"subjects" validate:"required,min=1,dive"`
}

// SubjectStanding pairs a subject final grade with its pass classification.
type SubjectStanding struct {
	Subject string     `json:"subject"`
	Final   *float64   `json:"final,omitempty"`
	Status  PassStatus `json:"status"`
}

// StudentStanding summarizes one entry's computed results.
type StudentStanding struct {
	EntryID        string            `json:"entry_id"`
	StudentID      string            `json:"student_id"`
	StudentName    string            `json:"student_name"`
	GradeLevel     int               `json:"grade_level"`
	Semester       *Semester         `json:"semester,omitempty"`
	Subjects       []SubjectStanding `json:"subjects"`
	GeneralAverage *float64          `json:"general_average,omitempty"`
	Status         PassStatus        `json:"status"`
}

// RankedStudent is one row of a top-N ranking.
type RankedStudent struct {
	Rank           int     `json:"rank"`
	StudentID      string  `json:"student_id"`
	StudentName    string  `json:"student_name"`
	GradeLevel     int     `json:"grade_level"`
	SectionID      string  `json:"section_id"`
	SectionName    string  `json:"section_name"`
	GeneralAverage float64 `json:"general_average"`
}

// SubjectAverage aggregates a subject's mean final grade across entries.
type SubjectAverage struct {
	Subject      string  `json:"subject"`
	Average      float64 `json:"average"`
	Count        int     `json:"count"`
	BelowPassing bool    `json:"below_passing"`
}
