package models

import "time"

// DropoutStatus tracks the review state of a dropout request.
type DropoutStatus string

const (
	DropoutPending  DropoutStatus = "Pending"
	DropoutAccepted DropoutStatus = "Accepted"
	DropoutRejected DropoutStatus = "Rejected"
)

// DropoutReasons is the fixed list an adviser may choose from.
var DropoutReasons = []string{
	"Poverty",
	"Child labor",
	"High cost of education",
	"Distance to school",
	"Pregnancy",
	"Family conflicts",
	"Lack of motivation",
	"Mental health issues",
	"Unsafe school environment (e.g., Bullying)",
	"Natural disasters",
}

// IsValidDropoutReason reports whether the reason is in the fixed list.
func IsValidDropoutReason(reason string) bool {
	for _, r := range DropoutReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// DropoutRequest is an adviser-raised request to mark a student as dropped out.
// Accepted and Rejected are terminal states.
type DropoutRequest struct {
	ID          string        `db:"id" json:"id"`
	StudentID   string        `db:"student_id" json:"student_id"`
	StudentName string        `db:"student_name" json:"student_name"`
	SectionID   string        `db:"section_id" json:"section_id"`
	SectionName string        `db:"section_name" json:"section_name"`
	Reason      string        `db:"reason" json:"reason"`
	Details     *string       `db:"details" json:"details,omitempty"`
	RequestedBy string        `db:"requested_by" json:"requested_by"`
	Status      DropoutStatus `db:"status" json:"status"`
	ReviewedBy  *string       `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time    `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// DropoutReasonCount is one slice of the dropouts-by-reason chart.
type DropoutReasonCount struct {
	Reason string `db:"reason" json:"reason"`
	Count  int    `db:"count" json:"count"`
}

// DropoutFilter captures filtering criteria for listing dropout requests.
type DropoutFilter struct {
	StudentID *string
	SectionID *string
	Status    *DropoutStatus
	Page      int
	PageSize  int
}

// CreateDropoutRequest is the adviser payload raising a dropout request.
type CreateDropoutRequest struct {
	StudentID string  `json:"student_id" validate:"required,uuid"`
	SectionID string  `json:"section_id" validate:"required,uuid"`
	Reason    string  `json:"reason" validate:"required"`
	Details   *string `json:"details,omitempty"`
}
