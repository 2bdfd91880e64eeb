package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
)

type enrollmentStudentRepo interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	GetByLRN(ctx context.Context, lrn string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	Count(ctx context.Context, filter models.StudentFilter) (int, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	AssignSection(ctx context.Context, sectionID string, studentIDs []string) error
}

// EnrollmentService handles student intake and section membership.
type EnrollmentService struct {
	students  enrollmentStudentRepo
	sections  sectionReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(students enrollmentStudentRepo, sections sectionReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		students:  students,
		sections:  sections,
		validator: validate,
		logger:    logger,
	}
}

// Enroll registers a new student. Grade 11-12 enrollees must pick a strand;
// TVL enrollees additionally need a specialization.
func (s *EnrollmentService) Enroll(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if req.GradeLevel > 10 {
		if req.Strand == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "grade 11-12 enrollment requires a strand")
		}
		if *req.Strand == string(models.StrandTVL) && req.TVLSubOption == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "TVL strand requires a specialization")
		}
	}

	if existing, err := s.students.GetByLRN(ctx, req.LRN); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a student with this LRN is already enrolled")
	} else if err != nil {
		var appErr *appErrors.Error
		if !errors.As(err, &appErr) || appErr.Code != appErrors.ErrNotFound.Code {
			return nil, err
		}
	}

	var strand *models.Strand
	if req.Strand != nil {
		v := models.Strand(*req.Strand)
		strand = &v
	}
	var subOption *models.TVLSubOption
	if req.TVLSubOption != nil {
		v := models.TVLSubOption(*req.TVLSubOption)
		subOption = &v
	}
	student := &models.Student{
		LRN:          req.LRN,
		FirstName:    req.FirstName,
		MiddleName:   req.MiddleName,
		LastName:     req.LastName,
		Sex:          req.Sex,
		GradeLevel:   req.GradeLevel,
		Strand:       strand,
		TVLSubOption: subOption,
		Status:       models.StudentEnrolled,
		SchoolYear:   req.SchoolYear,
		GuardianName: req.GuardianName,
		Address:      req.Address,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
	}
	s.logger.Info("student enrolled", zap.String("student_id", student.ID), zap.Int("grade_level", student.GradeLevel))
	return student, nil
}

// Get returns a student by id.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.Student, error) {
	return s.students.GetByID(ctx, id)
}

// List returns students matching the filter with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	students, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	total, err := s.students.Count(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	return students, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Update applies a partial update to the student record.
func (s *EnrollmentService) Update(ctx context.Context, id string, req models.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.MiddleName != nil {
		fields["middle_name"] = *req.MiddleName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.GradeLevel != nil {
		fields["grade_level"] = *req.GradeLevel
	}
	if req.Strand != nil {
		fields["strand"] = *req.Strand
	}
	if req.TVLSubOption != nil {
		fields["tvl_sub_option"] = *req.TVLSubOption
	}
	if req.GuardianName != nil {
		fields["guardian_name"] = *req.GuardianName
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if len(fields) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if err := s.students.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.students.GetByID(ctx, id)
}

// AssignToSection moves students into a section after checking that every
// student matches the section's grade level and is still enrolled.
func (s *EnrollmentService) AssignToSection(ctx context.Context, sectionID string, studentIDs []string) error {
	if len(studentIDs) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one student is required")
	}
	section, err := s.sections.GetByID(ctx, sectionID)
	if err != nil {
		return err
	}
	for _, id := range studentIDs {
		student, err := s.students.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if student.Status == models.StudentDropout {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "dropped students cannot be sectioned")
		}
		if student.GradeLevel != section.GradeLevel {
			return appErrors.Clone(appErrors.ErrValidation, "student grade level does not match the section")
		}
	}
	if err := s.students.AssignSection(ctx, sectionID, studentIDs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign section")
	}
	s.logger.Info("students sectioned", zap.String("section_id", sectionID), zap.Int("count", len(studentIDs)))
	return nil
}
