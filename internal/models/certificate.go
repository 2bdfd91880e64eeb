package models

import "time"

// CertificateKind identifies the certificate template to render.
type CertificateKind string

const (
	CertificateEnrollment CertificateKind = "Certificate of Enrollment"
	CertificateCompletion CertificateKind = "Certificate of Completion"
	CertificateDiploma    CertificateKind = "Diploma"
	CertificateGoodMoral  CertificateKind = "Certificate of Good Moral Character"
)

// CertificateStatus tracks a certificate request's lifecycle.
type CertificateStatus string

const (
	CertificatePending CertificateStatus = "Pending"
	CertificateReady   CertificateStatus = "Ready"
	CertificateFailed  CertificateStatus = "Failed"
)

// CertificateRequest records a generated (or requested) certificate document.
type CertificateRequest struct {
	ID          string            `db:"id" json:"id"`
	StudentID   string            `db:"student_id" json:"student_id"`
	StudentName string            `db:"student_name" json:"student_name"`
	Kind        CertificateKind   `db:"kind" json:"kind"`
	SchoolYear  string            `db:"school_year" json:"school_year"`
	Status      CertificateStatus `db:"status" json:"status"`
	FilePath    *string           `db:"file_path" json:"-"`
	RequestedBy string            `db:"requested_by" json:"requested_by"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// CertificateFilter captures filtering criteria for listing requests.
type CertificateFilter struct {
	StudentID *string
	Kind      *CertificateKind
	Status    *CertificateStatus
	Page      int
	PageSize  int
}

// CreateCertificateRequest is the payload for requesting a certificate.
type CreateCertificateRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	Kind      string `json:"kind" validate:"required"`
}

// SignedLink is a time-boxed download link for a generated document.
type SignedLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
