package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mnhs-dev/student-record-api/internal/curriculum"
	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
)

type sectionRepo interface {
	Create(ctx context.Context, section *models.Section) error
	GetByID(ctx context.Context, id string) (*models.Section, error)
	List(ctx context.Context, filter models.SectionFilter) ([]models.Section, error)
	Count(ctx context.Context, filter models.SectionFilter) (int, error)
	AssignAdviser(ctx context.Context, sectionID, adviserID string) error
	AddSubjects(ctx context.Context, sectionID string, subjects []string) error
}

type sectionStudentRepo interface {
	ListBySection(ctx context.Context, sectionID string) ([]models.Student, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Student, error)
	AssignSection(ctx context.Context, sectionID string, studentIDs []string) error
}

type finalizedStudentLister interface {
	ListFinalizedStudents(ctx context.Context, sectionID string, semester models.Semester) ([]string, error)
}

type adviserReader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// SectionService manages sections, adviser assignment, and the
// second-semester forwarding flow.
type SectionService struct {
	sections  sectionRepo
	students  sectionStudentRepo
	entries   finalizedStudentLister
	users     adviserReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService constructs SectionService.
func NewSectionService(sections sectionRepo, students sectionStudentRepo, entries finalizedStudentLister, users adviserReader, validate *validator.Validate, logger *zap.Logger) *SectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{
		sections:  sections,
		students:  students,
		entries:   entries,
		users:     users,
		validator: validate,
		logger:    logger,
	}
}

// Create builds a section whose subject list starts from the curriculum
// catalog, with school-defined extras appended.
func (s *SectionService) Create(ctx context.Context, req models.CreateSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
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
	var semester *models.Semester
	if req.GradeLevel > 10 {
		sem := models.SemesterFirst
		if req.Semester != nil {
			sem = models.Semester(*req.Semester)
		}
		semester = &sem
	} else if req.Semester != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade 7-10 sections carry no semester")
	}

	subjects, err := curriculum.SubjectsFor(req.GradeLevel, strand, subOption)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	seen := make(map[string]bool, len(subjects))
	for _, subject := range subjects {
		seen[subject] = true
	}
	for _, subject := range req.ExtraSubjects {
		if !seen[subject] {
			subjects = append(subjects, subject)
			seen[subject] = true
		}
	}

	section := &models.Section{
		Name:         req.Name,
		GradeLevel:   req.GradeLevel,
		Strand:       strand,
		TVLSubOption: subOption,
		Semester:     semester,
		AdviserID:    req.AdviserID,
		SchoolYear:   req.SchoolYear,
		Subjects:     subjects,
	}
	if err := s.sections.Create(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	s.logger.Info("section created", zap.String("section_id", section.ID), zap.Int("grade_level", section.GradeLevel))
	return section, nil
}

// Get returns a section with its subject list.
func (s *SectionService) Get(ctx context.Context, id string) (*models.Section, error) {
	return s.sections.GetByID(ctx, id)
}

// List returns sections matching the filter with pagination metadata.
func (s *SectionService) List(ctx context.Context, filter models.SectionFilter) ([]models.Section, *models.Pagination, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	sections, err := s.sections.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	total, err := s.sections.Count(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sections")
	}
	return sections, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Roster returns the section together with its member students.
func (s *SectionService) Roster(ctx context.Context, sectionID string) (*models.SectionRoster, error) {
	section, err := s.sections.GetByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	students, err := s.students.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	roster := &models.SectionRoster{Section: *section, Students: students}
	if section.AdviserID != nil {
		adviser, err := s.users.GetByID(ctx, *section.AdviserID)
		if err == nil {
			roster.Adviser = &models.UserInfo{ID: adviser.ID, Email: adviser.Email, FullName: adviser.FullName, Role: adviser.Role}
		}
	}
	return roster, nil
}

// AssignAdviser attaches an adviser to the section after checking the role.
func (s *SectionService) AssignAdviser(ctx context.Context, sectionID string, req models.AssignAdviserRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid adviser payload")
	}
	adviser, err := s.users.GetByID(ctx, req.AdviserID)
	if err != nil {
		return err
	}
	if adviser.Role != models.RoleAdviser {
		return appErrors.Clone(appErrors.ErrValidation, "user is not an adviser")
	}
	return s.sections.AssignAdviser(ctx, sectionID, adviser.ID)
}

// AddSubjects appends school-defined subjects to the section's list.
func (s *SectionService) AddSubjects(ctx context.Context, sectionID string, subjects []string) error {
	if len(subjects) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one subject is required")
	}
	if _, err := s.sections.GetByID(ctx, sectionID); err != nil {
		return err
	}
	return s.sections.AddSubjects(ctx, sectionID, subjects)
}

// ForwardToSecondSemester derives a new second-semester section from a
// first-semester one. Only students with a finalized first-semester entry
// are carried over; the source section is never mutated.
func (s *SectionService) ForwardToSecondSemester(ctx context.Context, sectionID string, req models.ForwardSectionRequest) (*models.SectionRoster, error) {
	source, err := s.sections.GetByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if !source.IsSeniorHigh() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only grade 11-12 sections have semesters")
	}
	if source.Semester == nil || *source.Semester != models.SemesterFirst {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only a first-semester section can be forwarded")
	}

	studentIDs, err := s.entries.ListFinalizedStudents(ctx, sectionID, models.SemesterFirst)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve finalized students")
	}
	if len(studentIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no student has finalized first-semester grades")
	}

	name := req.Name
	if name == "" {
		name = source.Name
	}
	second := models.SemesterSecond
	derived := &models.Section{
		Name:         name,
		GradeLevel:   source.GradeLevel,
		Strand:       source.Strand,
		TVLSubOption: source.TVLSubOption,
		Semester:     &second,
		AdviserID:    source.AdviserID,
		SchoolYear:   source.SchoolYear,
		SourceID:     &source.ID,
		Subjects:     source.Subjects,
	}
	if err := s.sections.Create(ctx, derived); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create second-semester section")
	}
	if err := s.students.AssignSection(ctx, derived.ID, studentIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to re-enroll students")
	}

	students, err := s.students.ListByIDs(ctx, studentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load re-enrolled students")
	}
	s.logger.Info("section forwarded to second semester",
		zap.String("source_id", source.ID),
		zap.String("section_id", derived.ID),
		zap.Int("students", len(studentIDs)))
	return &models.SectionRoster{Section: *derived, Students: students}, nil
}
