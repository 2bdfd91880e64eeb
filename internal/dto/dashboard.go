package dto

import (
	"github.com/mnhs-dev/student-record-api/internal/grading"
	"github.com/mnhs-dev/student-record-api/internal/models"
)

// DashboardOverview is the aggregate payload behind the admin dashboard.
type DashboardOverview struct {
	SchoolYear       string                      `json:"school_year"`
	TotalStudents    int                         `json:"total_students"`
	Enrollment       grading.EnrollmentCounts    `json:"enrollment"`
	Cohorts          grading.CohortCounts        `json:"cohorts"`
	PendingDropouts  int                         `json:"pending_dropouts"`
	DropoutsByReason []models.DropoutReasonCount `json:"dropouts_by_reason"`
	TopStudents      []models.RankedStudent      `json:"top_students"`
	SubjectAverages  []models.SubjectAverage     `json:"subject_averages"`
}

// EnrollmentByLevel is one bar of the per-grade-level enrollment chart.
type EnrollmentByLevel struct {
	GradeLevel int `json:"grade_level"`
	Count      int `json:"count"`
}
