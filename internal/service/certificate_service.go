package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
	"github.com/mnhs-dev/student-record-api/pkg/export"
)

type certificateRepo interface {
	Create(ctx context.Context, request *models.CertificateRequest) error
	GetByID(ctx context.Context, id string) (*models.CertificateRequest, error)
	List(ctx context.Context, filter models.CertificateFilter) ([]models.CertificateRequest, error)
	MarkReady(ctx context.Context, id, filePath string) error
	MarkFailed(ctx context.Context, id string) error
}

type certificateEntryLister interface {
	List(ctx context.Context, filter models.GradeEntryFilter) ([]models.GradeEntry, error)
}

type certificateRenderer interface {
	RenderCertificate(cert export.Certificate) ([]byte, error)
}

type documentStore interface {
	Save(filename string, data []byte) (string, error)
	Path(filename string) string
}

type linkSigner interface {
	Generate(requestID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (requestID, relPath string, expiresAt time.Time, err error)
}

// CertificateServiceConfig carries the school identity stamped on documents.
type CertificateServiceConfig struct {
	SchoolName string
	SchoolYear string
	BaseURL    string
}

// CertificateService renders certificates and issues time-boxed download
// links for them.
type CertificateService struct {
	requests  certificateRepo
	students  studentReader
	entries   certificateEntryLister
	renderer  certificateRenderer
	store     documentStore
	signer    linkSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       CertificateServiceConfig
}

// NewCertificateService constructs CertificateService.
func NewCertificateService(requests certificateRepo, students studentReader, entries certificateEntryLister, renderer certificateRenderer, store documentStore, signer linkSigner, validate *validator.Validate, logger *zap.Logger, cfg CertificateServiceConfig) *CertificateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{
		requests:  requests,
		students:  students,
		entries:   entries,
		renderer:  renderer,
		store:     store,
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

var certificateKinds = map[models.CertificateKind]bool{
	models.CertificateEnrollment: true,
	models.CertificateCompletion: true,
	models.CertificateDiploma:    true,
	models.CertificateGoodMoral:  true,
}

// Request renders a certificate for a student and returns the stored
// request together with a signed download link.
func (s *CertificateService) Request(ctx context.Context, requesterID string, req models.CreateCertificateRequest) (*models.CertificateRequest, *models.SignedLink, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid certificate payload")
	}
	kind := models.CertificateKind(req.Kind)
	if !certificateKinds[kind] {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown certificate kind")
	}

	student, err := s.students.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checkEligibility(ctx, student, kind); err != nil {
		return nil, nil, err
	}

	request := &models.CertificateRequest{
		StudentID:   student.ID,
		StudentName: student.FullName(),
		Kind:        kind,
		SchoolYear:  s.cfg.SchoolYear,
		RequestedBy: requesterID,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create certificate request")
	}

	payload, err := s.renderer.RenderCertificate(export.Certificate{
		Kind:       string(kind),
		FullName:   student.FullName(),
		SchoolName: s.cfg.SchoolName,
		SchoolYear: s.cfg.SchoolYear,
		IssuedOn:   time.Now().Format("January 2, 2006"),
		Body:       certificateBody(kind, student),
	})
	if err != nil {
		_ = s.requests.MarkFailed(ctx, request.ID)
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}

	relPath := fmt.Sprintf("certificates/%s.pdf", request.ID)
	if _, err := s.store.Save(relPath, payload); err != nil {
		_ = s.requests.MarkFailed(ctx, request.ID)
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store certificate")
	}
	if err := s.requests.MarkReady(ctx, request.ID, relPath); err != nil {
		return nil, nil, err
	}
	request.Status = models.CertificateReady
	request.FilePath = &relPath

	link, err := s.signedLink(request.ID, relPath)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("certificate generated",
		zap.String("request_id", request.ID),
		zap.String("student_id", student.ID),
		zap.String("kind", string(kind)))
	return request, link, nil
}

// Link re-issues a signed download link for a ready certificate.
func (s *CertificateService) Link(ctx context.Context, requestID string) (*models.SignedLink, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.CertificateReady || request.FilePath == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "certificate is not ready for download")
	}
	return s.signedLink(request.ID, *request.FilePath)
}

// ResolveDownload validates a signed token and returns the request and the
// absolute file path to serve.
func (s *CertificateService) ResolveDownload(ctx context.Context, token string) (*models.CertificateRequest, string, error) {
	requestID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "download link is invalid or expired")
	}
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, "", err
	}
	if request.FilePath == nil || *request.FilePath != relPath {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "download link does not match the stored document")
	}
	return request, s.store.Path(relPath), nil
}

// List returns certificate requests matching the filter.
func (s *CertificateService) List(ctx context.Context, filter models.CertificateFilter) ([]models.CertificateRequest, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list certificate requests")
	}
	return requests, nil
}

func (s *CertificateService) signedLink(requestID, relPath string) (*models.SignedLink, error) {
	token, expiresAt, err := s.signer.Generate(requestID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &models.SignedLink{
		URL:       fmt.Sprintf("%s/certificates/download?token=%s", s.cfg.BaseURL, token),
		ExpiresAt: expiresAt,
	}, nil
}

// checkEligibility enforces the academic preconditions per certificate kind.
func (s *CertificateService) checkEligibility(ctx context.Context, student *models.Student, kind models.CertificateKind) error {
	switch kind {
	case models.CertificateEnrollment, models.CertificateGoodMoral:
		if student.Status == models.StudentDropout {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not currently enrolled")
		}
		return nil
	case models.CertificateCompletion:
		if student.GradeLevel != 10 {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "completion certificates are issued to grade 10 students")
		}
		finalized, err := s.finalizedSemesters(ctx, student.ID)
		if err != nil {
			return err
		}
		if !finalized.annual {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "student has no finalized annual grades")
		}
		return nil
	case models.CertificateDiploma:
		if student.GradeLevel != 12 {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "diplomas are issued to grade 12 students")
		}
		finalized, err := s.finalizedSemesters(ctx, student.ID)
		if err != nil {
			return err
		}
		if !finalized.first || !finalized.second {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "student has not finalized both semesters")
		}
		return nil
	}
	return nil
}

type finalizedScopes struct {
	annual bool
	first  bool
	second bool
}

func (s *CertificateService) finalizedSemesters(ctx context.Context, studentID string) (finalizedScopes, error) {
	entries, err := s.entries.List(ctx, models.GradeEntryFilter{StudentID: &studentID})
	if err != nil {
		return finalizedScopes{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade entries")
	}
	var scopes finalizedScopes
	for _, e := range entries {
		if e.GeneralAverage == nil {
			continue
		}
		switch {
		case e.Semester == nil:
			scopes.annual = true
		case *e.Semester == models.SemesterFirst:
			scopes.first = true
		case *e.Semester == models.SemesterSecond:
			scopes.second = true
		}
	}
	return scopes, nil
}

func certificateBody(kind models.CertificateKind, student *models.Student) string {
	switch kind {
	case models.CertificateCompletion:
		return "for having satisfactorily completed the requirements of the Junior High School curriculum."
	case models.CertificateDiploma:
		return fmt.Sprintf("for having satisfactorily completed the requirements of the Senior High School curriculum, Grade %d.", student.GradeLevel)
	case models.CertificateGoodMoral:
		return "for having maintained good moral character throughout the school year."
	default:
		return "this is to certify that the above-named student is officially enrolled for the current school year."
	}
}
