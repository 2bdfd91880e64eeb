package models

import "time"

// ReportFormat selects the rendered file format.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportType identifies the dataset a report covers.
type ReportType string

const (
	ReportTypeRoster      ReportType = "roster"
	ReportTypeGrades      ReportType = "grades"
	ReportTypeTopStudents ReportType = "top_students"
)

// ReportRequest is the payload for generating a report export.
type ReportRequest struct {
	Type       string  `json:"type" validate:"required,oneof=roster grades top_students"`
	Format     string  `json:"format" validate:"required,oneof=csv pdf"`
	SectionID  *string `json:"section_id,omitempty" validate:"omitempty,uuid"`
	SchoolYear string  `json:"school_year,omitempty"`
	Limit      int     `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// ReportResult describes a generated report file and its download link.
type ReportResult struct {
	FileName  string       `json:"file_name"`
	Type      ReportType   `json:"type"`
	Format    ReportFormat `json:"format"`
	Rows      int          `json:"rows"`
	URL       string       `json:"url"`
	ExpiresAt time.Time    `json:"expires_at"`
}
