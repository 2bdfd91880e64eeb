package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
)

type dropoutRepo interface {
	Create(ctx context.Context, request *models.DropoutRequest) error
	GetByID(ctx context.Context, id string) (*models.DropoutRequest, error)
	List(ctx context.Context, filter models.DropoutFilter) ([]models.DropoutRequest, error)
	Count(ctx context.Context, filter models.DropoutFilter) (int, error)
	HasPending(ctx context.Context, studentID string) (bool, error)
	Review(ctx context.Context, id string, status models.DropoutStatus, reviewerID string) error
}

type dropoutStudentRepo interface {
	GetByID(ctx context.Context, id string) (*models.Student, error)
	UpdateStatus(ctx context.Context, id string, status models.StudentStatus) error
}

// DropoutService runs the adviser-raised, admin-reviewed dropout workflow.
// Accepting a request is the only transition that cascades: it flips the
// student's status to Dropout.
type DropoutService struct {
	requests  dropoutRepo
	students  dropoutStudentRepo
	sections  sectionReader
	cache     dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDropoutService constructs DropoutService.
func NewDropoutService(requests dropoutRepo, students dropoutStudentRepo, sections sectionReader, cache dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *DropoutService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DropoutService{
		requests:  requests,
		students:  students,
		sections:  sections,
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// Submit raises a pending dropout request for a student.
func (s *DropoutService) Submit(ctx context.Context, requesterID string, req models.CreateDropoutRequest) (*models.DropoutRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid dropout payload")
	}
	if !models.IsValidDropoutReason(req.Reason) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason must be one of the listed dropout reasons")
	}

	student, err := s.students.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if student.Status == models.StudentDropout {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student has already dropped out")
	}
	section, err := s.sections.GetByID(ctx, req.SectionID)
	if err != nil {
		return nil, err
	}

	pending, err := s.requests.HasPending(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending requests")
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a pending dropout request already exists for this student")
	}

	request := &models.DropoutRequest{
		StudentID:   student.ID,
		StudentName: student.FullName(),
		SectionID:   section.ID,
		SectionName: section.Name,
		Reason:      req.Reason,
		Details:     req.Details,
		RequestedBy: requesterID,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create dropout request")
	}
	s.logger.Info("dropout request submitted",
		zap.String("request_id", request.ID),
		zap.String("student_id", request.StudentID),
		zap.String("reason", request.Reason))
	return request, nil
}

// Accept transitions a pending request to Accepted and marks the student as
// dropped out.
func (s *DropoutService) Accept(ctx context.Context, requestID, reviewerID string) (*models.DropoutRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.DropoutPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "dropout request is not pending")
	}
	if err := s.requests.Review(ctx, requestID, models.DropoutAccepted, reviewerID); err != nil {
		return nil, err
	}
	if err := s.students.UpdateStatus(ctx, request.StudentID, models.StudentDropout); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student status")
	}
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
	s.logger.Info("dropout request accepted",
		zap.String("request_id", requestID),
		zap.String("student_id", request.StudentID))
	return s.requests.GetByID(ctx, requestID)
}

// Reject transitions a pending request to Rejected. The student record is
// left untouched.
func (s *DropoutService) Reject(ctx context.Context, requestID, reviewerID string) (*models.DropoutRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.DropoutPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "dropout request is not pending")
	}
	if err := s.requests.Review(ctx, requestID, models.DropoutRejected, reviewerID); err != nil {
		return nil, err
	}
	s.logger.Info("dropout request rejected", zap.String("request_id", requestID))
	return s.requests.GetByID(ctx, requestID)
}

// Get returns a dropout request by id.
func (s *DropoutService) Get(ctx context.Context, id string) (*models.DropoutRequest, error) {
	return s.requests.GetByID(ctx, id)
}

// List returns dropout requests matching the filter with pagination metadata.
func (s *DropoutService) List(ctx context.Context, filter models.DropoutFilter) ([]models.DropoutRequest, *models.Pagination, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list dropout requests")
	}
	total, err := s.requests.Count(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count dropout requests")
	}
	return requests, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Reasons exposes the fixed reason list for form rendering.
func (s *DropoutService) Reasons() []string {
	out := make([]string, len(models.DropoutReasons))
	copy(out, models.DropoutReasons)
	return out
}
