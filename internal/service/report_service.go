package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mnhs-dev/student-record-api/internal/grading"
	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
	"github.com/mnhs-dev/student-record-api/pkg/export"
)

type reportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type tableRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type reportStudentLister interface {
	ListBySection(ctx context.Context, sectionID string) ([]models.Student, error)
}

// ReportServiceConfig tunes report links and retention.
type ReportServiceConfig struct {
	BaseURL      string
	RetentionTTL time.Duration
}

// ReportService renders roster and grade datasets into downloadable CSV or
// PDF files kept on local storage for a limited retention window.
type ReportService struct {
	entries   certificateEntryLister
	students  reportStudentLister
	sections  sectionReader
	csv       csvRenderer
	pdf       tableRenderer
	store     reportStorage
	signer    linkSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig
}

// NewReportService constructs ReportService.
func NewReportService(entries certificateEntryLister, students reportStudentLister, sections sectionReader, csv csvRenderer, pdf tableRenderer, store reportStorage, signer linkSigner, validate *validator.Validate, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RetentionTTL <= 0 {
		cfg.RetentionTTL = 24 * time.Hour
	}
	return &ReportService{
		entries:   entries,
		students:  students,
		sections:  sections,
		csv:       csv,
		pdf:       pdf,
		store:     store,
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate builds the requested dataset, renders it into the requested
// format, stores the file, and returns a signed download link.
func (s *ReportService) Generate(ctx context.Context, req models.ReportRequest) (*models.ReportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}

	dataset, title, err := s.buildDataset(ctx, req)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch models.ReportFormat(req.Format) {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(*dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(*dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report format")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	filename := s.buildFilename(req)
	relPath := "reports/" + filename
	if _, err := s.store.Save(relPath, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}

	token, expiresAt, err := s.signer.Generate(filename, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	s.logger.Info("report generated",
		zap.String("type", req.Type),
		zap.String("format", req.Format),
		zap.String("file", filename),
		zap.Int("rows", len(dataset.Rows)))

	return &models.ReportResult{
		FileName:  filename,
		Type:      models.ReportType(req.Type),
		Format:    models.ReportFormat(req.Format),
		Rows:      len(dataset.Rows),
		URL:       fmt.Sprintf("%s/reports/download?token=%s", s.cfg.BaseURL, token),
		ExpiresAt: expiresAt,
	}, nil
}

// ResolveDownload validates a signed token and opens the stored file. The
// caller owns the returned handle.
func (s *ReportService) ResolveDownload(token string) (string, *os.File, error) {
	filename, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "download link is invalid or expired")
	}
	if relPath != "reports/"+filename {
		return "", nil, appErrors.Clone(appErrors.ErrUnauthorized, "download link does not match the stored file")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report file no longer exists")
	}
	return filename, file, nil
}

// Delete removes a stored report file by its signed token, regardless of
// token expiry.
func (s *ReportService) Delete(token string) error {
	filename, relPath, _, err := s.signer.Parse(token, true)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "download link is invalid")
	}
	if relPath != "reports/"+filename {
		return appErrors.Clone(appErrors.ErrUnauthorized, "download link does not match the stored file")
	}
	if err := s.store.Delete(relPath); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete report file")
	}
	return nil
}

// Cleanup removes report files older than the retention window and returns
// the deleted names.
func (s *ReportService) Cleanup() ([]string, error) {
	deleted, err := s.store.CleanupOlderThan(s.cfg.RetentionTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clean up report files")
	}
	if len(deleted) > 0 {
		s.logger.Info("expired reports removed", zap.Int("count", len(deleted)))
	}
	return deleted, nil
}

func (s *ReportService) buildDataset(ctx context.Context, req models.ReportRequest) (*export.Dataset, string, error) {
	switch models.ReportType(req.Type) {
	case models.ReportTypeRoster:
		return s.rosterDataset(ctx, req)
	case models.ReportTypeGrades:
		return s.gradesDataset(ctx, req)
	case models.ReportTypeTopStudents:
		return s.topStudentsDataset(ctx, req)
	}
	return nil, "", appErrors.Clone(appErrors.ErrValidation, "unknown report type")
}

func (s *ReportService) rosterDataset(ctx context.Context, req models.ReportRequest) (*export.Dataset, string, error) {
	if req.SectionID == nil {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "roster reports require a section_id")
	}
	section, err := s.sections.GetByID(ctx, *req.SectionID)
	if err != nil {
		return nil, "", err
	}
	students, err := s.students.ListBySection(ctx, section.ID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section roster")
	}

	dataset := &export.Dataset{
		Headers: []string{"LRN", "Name", "Sex", "Grade Level", "Strand", "Status"},
		Rows:    make([]map[string]string, 0, len(students)),
	}
	for _, st := range students {
		strand := ""
		if st.Strand != nil {
			strand = string(*st.Strand)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"LRN":         st.LRN,
			"Name":        st.FullName(),
			"Sex":         st.Sex,
			"Grade Level": strconv.Itoa(st.GradeLevel),
			"Strand":      strand,
			"Status":      string(st.Status),
		})
	}
	return dataset, fmt.Sprintf("Class Roster - %s", section.Name), nil
}

func (s *ReportService) gradesDataset(ctx context.Context, req models.ReportRequest) (*export.Dataset, string, error) {
	if req.SectionID == nil {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "grade reports require a section_id")
	}
	section, err := s.sections.GetByID(ctx, *req.SectionID)
	if err != nil {
		return nil, "", err
	}
	entries, err := s.entries.List(ctx, models.GradeEntryFilter{SectionID: &section.ID, SchoolYear: req.SchoolYear})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade entries")
	}

	dataset := &export.Dataset{
		Headers: []string{"Student", "Subject", "Q1", "Q2", "Q3", "Q4", "Final", "General Average"},
		Rows:    make([]map[string]string, 0, len(entries)),
	}
	for _, entry := range entries {
		for _, subject := range entry.Subjects {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Student":         entry.StudentName,
				"Subject":         subject.Subject,
				"Q1":              formatScore(subject.Quarter1),
				"Q2":              formatScore(subject.Quarter2),
				"Q3":              formatScore(subject.Quarter3),
				"Q4":              formatScore(subject.Quarter4),
				"Final":           formatScore(subject.Final),
				"General Average": formatScore(entry.GeneralAverage),
			})
		}
	}
	return dataset, fmt.Sprintf("Grade Summary - %s", section.Name), nil
}

func (s *ReportService) topStudentsDataset(ctx context.Context, req models.ReportRequest) (*export.Dataset, string, error) {
	filter := models.GradeEntryFilter{SchoolYear: req.SchoolYear}
	scope := grading.RankScope{SectionID: req.SectionID}
	if req.SectionID != nil {
		filter.SectionID = req.SectionID
	}
	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade entries")
	}
	ranked := grading.RankTopN(entries, req.Limit, scope)

	dataset := &export.Dataset{
		Headers: []string{"Rank", "Student", "Grade Level", "Section", "General Average"},
		Rows:    make([]map[string]string, 0, len(ranked)),
	}
	for _, row := range ranked {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Rank":            strconv.Itoa(row.Rank),
			"Student":         row.StudentName,
			"Grade Level":     strconv.Itoa(row.GradeLevel),
			"Section":         row.SectionName,
			"General Average": strconv.FormatFloat(row.GeneralAverage, 'f', 2, 64),
		})
	}
	return dataset, "Top Students", nil
}

func (s *ReportService) buildFilename(req models.ReportRequest) string {
	scope := "all"
	if req.SectionID != nil {
		scope = *req.SectionID
	}
	stamp := time.Now().Format("20060102-150405")
	return sanitizeFilename(fmt.Sprintf("%s-%s-%s.%s", req.Type, scope, stamp, req.Format))
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func formatScore(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', 2, 64)
}
