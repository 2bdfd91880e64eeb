package models

import "time"

// StudentStatus tracks a student's enrollment state.
type StudentStatus string

const (
	StudentEnrolled  StudentStatus = "Enrolled"
	StudentDropout   StudentStatus = "Dropout"
	StudentCompleted StudentStatus = "Completed"
	StudentGraduated StudentStatus = "Graduated"
)

// Strand identifies a senior-high specialization track.
type Strand string

const (
	StrandABM   Strand = "ABM"
	StrandSTEM  Strand = "STEM"
	StrandGAS   Strand = "GAS"
	StrandHUMSS Strand = "HUMSS"
	StrandTVL   Strand = "TVL"
)

// TVLSubOption narrows the TVL strand to a specialization.
type TVLSubOption string

const (
	TVLHomeEconomics   TVLSubOption = "HE"
	TVLComputerSystems TVLSubOption = "CSS"
	TVLCookery         TVLSubOption = "Cookery"
)

// Student represents an enrolled learner.
type Student struct {
	ID           string        `db:"id" json:"id"`
	LRN          string        `db:"lrn" json:"lrn"`
	FirstName    string        `db:"first_name" json:"first_name"`
	MiddleName   *string       `db:"middle_name" json:"middle_name,omitempty"`
	LastName     string        `db:"last_name" json:"last_name"`
	Sex          string        `db:"sex" json:"sex"`
	BirthDate    *time.Time    `db:"birth_date" json:"birth_date,omitempty"`
	GradeLevel   int           `db:"grade_level" json:"grade_level"`
	Strand       *Strand       `db:"strand" json:"strand,omitempty"`
	TVLSubOption *TVLSubOption `db:"tvl_sub_option" json:"tvl_sub_option,omitempty"`
	SectionID    *string       `db:"section_id" json:"section_id,omitempty"`
	Status       StudentStatus `db:"status" json:"status"`
	SchoolYear   string        `db:"school_year" json:"school_year"`
	GuardianName *string       `db:"guardian_name" json:"guardian_name,omitempty"`
	Address      *string       `db:"address" json:"address,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// FullName renders the display name used on rosters and certificates.
func (s Student) FullName() string {
	if s.MiddleName != nil && *s.MiddleName != "" {
		return s.FirstName + " " + *s.MiddleName + " " + s.LastName
	}
	return s.FirstName + " " + s.LastName
}

// IsSeniorHigh reports whether the student is in the semester-based levels.
func (s Student) IsSeniorHigh() bool {
	return s.GradeLevel > 10
}

// SchoolYearEnrollment is one point of the enrollment-by-school-year series.
type SchoolYearEnrollment struct {
	SchoolYear string `db:"school_year" json:"school_year"`
	Count      int    `db:"count" json:"count"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	GradeLevel *int
	SectionID  *string
	Status     *StudentStatus
	Strand     *Strand
	SchoolYear string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// CreateStudentRequest is the enrollment intake payload.
type CreateStudentRequest struct {
	LRN          string  `json:"lrn" validate:"required,len=12,numeric"`
	FirstName    string  `json:"first_name" validate:"required"`
	MiddleName   *string `json:"middle_name,omitempty"`
	LastName     string  `json:"last_name" validate:"required"`
	Sex          string  `json:"sex" validate:"required,oneof=Male Female"`
	GradeLevel   int     `json:"grade_level" validate:"required,min=7,max=12"`
	Strand       *string `json:"strand,omitempty" validate:"omitempty,oneof=ABM STEM GAS HUMSS TVL"`
	TVLSubOption *string `json:"tvl_sub_option,omitempty" validate:"omitempty,oneof=HE CSS Cookery"`
	SchoolYear   string  `json:"school_year" validate:"required"`
	GuardianName *string `json:"guardian_name,omitempty"`
	Address      *string `json:"address,omitempty"`
}

// UpdateStudentRequest applies partial updates to a student record.
type UpdateStudentRequest struct {
	FirstName    *string `json:"first_name,omitempty"`
	MiddleName   *string `json:"middle_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	GradeLevel   *int    `json:"grade_level,omitempty" validate:"omitempty,min=7,max=12"`
	Strand       *string `json:"strand,omitempty" validate:"omitempty,oneof=ABM STEM GAS HUMSS TVL"`
	TVLSubOption *string `json:"tvl_sub_option,omitempty" validate:"omitempty,oneof=HE CSS Cookery"`
	GuardianName *string `json:"guardian_name,omitempty"`
	Address      *string `json:"address,omitempty"`
}
