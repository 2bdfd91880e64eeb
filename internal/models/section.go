package models

import "time"

// Semester tags a senior-high section with its grading period.
type Semester string

const (
	SemesterFirst  Semester = "1st"
	SemesterSecond Semester = "2nd"
)

// Section groups students under an adviser for a school year.
// Senior-high sections additionally carry a strand and a semester tag.
type Section struct {
	ID           string        `db:"id" json:"id"`
	Name         string        `db:"name" json:"name"`
	GradeLevel   int           `db:"grade_level" json:"grade_level"`
	Strand       *Strand       `db:"strand" json:"strand,omitempty"`
	TVLSubOption *TVLSubOption `db:"tvl_sub_option" json:"tvl_sub_option,omitempty"`
	Semester     *Semester     `db:"semester" json:"semester,omitempty"`
	AdviserID    *string       `db:"adviser_id" json:"adviser_id,omitempty"`
	SchoolYear   string        `db:"school_year" json:"school_year"`
	SourceID     *string       `db:"source_id" json:"source_id,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`

	Subjects []string `db:"-" json:"subjects,omitempty"`
}

// IsSeniorHigh reports whether the section belongs to the semester system.
func (s Section) IsSeniorHigh() bool {
	return s.GradeLevel > 10
}

// SectionFilter captures filtering criteria for listing sections.
type SectionFilter struct {
	GradeLevel *int
	Strand     *Strand
	Semester   *Semester
	AdviserID  *string
	SchoolYear string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// CreateSectionRequest is the payload for creating a section.
type CreateSectionRequest struct {
	Name          string   `json:"name" validate:"required"`
	GradeLevel    int      `json:"grade_level" validate:"required,min=7,max=12"`
	Strand        *string  `json:"strand,omitempty" validate:"omitempty,oneof=ABM STEM GAS HUMSS TVL"`
	TVLSubOption  *string  `json:"tvl_sub_option,omitempty" validate:"omitempty,oneof=HE CSS Cookery"`
	Semester      *string  `json:"semester,omitempty" validate:"omitempty,oneof=1st 2nd"`
	AdviserID     *string  `json:"adviser_id,omitempty"`
	SchoolYear    string   `json:"school_year" validate:"required"`
	ExtraSubjects []string `json:"extra_subjects,omitempty"`
}

// AssignAdviserRequest attaches an adviser to a section.
type AssignAdviserRequest struct {
	AdviserID string `json:"adviser_id" validate:"required,uuid"`
}

// ForwardSectionRequest creates a second-semester section from a first-semester one.
type ForwardSectionRequest struct {
	Name string `json:"name,omitempty"`
}

// SectionRoster is a section together with its member students.
type SectionRoster struct {
	Section  Section   `json:"section"`
	Adviser  *UserInfo `json:"adviser,omitempty"`
	Students []Student `json:"students"`
}
