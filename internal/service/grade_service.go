package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mnhs-dev/student-record-api/internal/curriculum"
	"github.com/mnhs-dev/student-record-api/internal/grading"
	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
)

type gradeEntryRepo interface {
	ExistsForScope(ctx context.Context, studentID, sectionID string, semester *models.Semester) (bool, error)
	Create(ctx context.Context, entry *models.GradeEntry) error
	GetByID(ctx context.Context, id string) (*models.GradeEntry, error)
	List(ctx context.Context, filter models.GradeEntryFilter) ([]models.GradeEntry, error)
	Count(ctx context.Context, filter models.GradeEntryFilter) (int, error)
}

type studentReader interface {
	GetByID(ctx context.Context, id string) (*models.Student, error)
}

type sectionReader interface {
	GetByID(ctx context.Context, id string) (*models.Section, error)
}

type dashboardInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// GradeService orchestrates grade entry saves and standing computation.
type GradeService struct {
	entries   gradeEntryRepo
	students  studentReader
	sections  sectionReader
	cache     dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(entries gradeEntryRepo, students studentReader, sections sectionReader, cache dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		entries:   entries,
		students:  students,
		sections:  sections,
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// quartersFor returns the number of grading periods an entry carries.
func quartersFor(gradeLevel int) int {
	if gradeLevel <= 10 {
		return 4
	}
	return 2
}

// SaveEntry validates and persists an adviser's grade sheet for one student.
// An entry already saved for the same (student, section, semester) tuple is
// rejected without touching the existing record.
func (s *GradeService) SaveEntry(ctx context.Context, adviserID string, req models.SaveGradeEntryRequest) (*models.GradeEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade entry payload")
	}

	student, err := s.students.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if student.Status == models.StudentDropout {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student has dropped out")
	}
	section, err := s.sections.GetByID(ctx, req.SectionID)
	if err != nil {
		return nil, err
	}

	var semester *models.Semester
	if section.IsSeniorHigh() {
		if req.Semester == nil {
			if section.Semester == nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, "semester is required for grade 11-12 entries")
			}
			semester = section.Semester
		} else {
			sem := models.Semester(*req.Semester)
			semester = &sem
		}
	} else if req.Semester != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade 7-10 entries are annual and carry no semester")
	}

	exists, err := s.entries.ExistsForScope(ctx, req.StudentID, req.SectionID, semester)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, appErrors.ErrDuplicateEntry
	}

	quarters := quartersFor(section.GradeLevel)
	rounding := grading.SubjectRounding(section.GradeLevel)

	records := make([]models.SubjectRecord, 0, len(req.Subjects))
	constituents := make(map[string][]*float64, len(curriculum.MAPEHConstituents))
	mapehIndex := -1
	for _, input := range req.Subjects {
		if len(input.Scores) > quarters {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("%s: expected at most %d scores", input.Subject, quarters))
		}
		if err := grading.ValidateScores(input.Subject, input.Scores); err != nil {
			return nil, err
		}
		slots := make([]*float64, quarters)
		copy(slots, input.Scores)
		if input.Subject == curriculum.SubjectMAPEH {
			// derived, recomputed below from its constituents
			mapehIndex = len(records)
		}
		if curriculum.IsMAPEHConstituent(input.Subject) {
			constituents[input.Subject] = slots
		}
		records = append(records, subjectRecord(input.Subject, slots, rounding))
	}

	if curriculum.HasMAPEH(section.GradeLevel) && (len(constituents) > 0 || mapehIndex >= 0) {
		ordered := make([][]*float64, 0, len(curriculum.MAPEHConstituents))
		for _, name := range curriculum.MAPEHConstituents {
			if slots, ok := constituents[name]; ok {
				ordered = append(ordered, slots)
			}
		}
		// With no constituents in the payload this yields an absent
		// composite, wiping any directly entered MAPEH scores.
		composite := grading.MAPEHComposite(ordered, quarters, grading.RoundWhole)
		rec := subjectRecord(curriculum.SubjectMAPEH, composite, rounding)
		if mapehIndex >= 0 {
			records[mapehIndex] = rec
		} else {
			records = append(records, rec)
		}
	}

	finals := make([]*float64, len(records))
	for i, rec := range records {
		finals[i] = rec.Final
	}

	entry := &models.GradeEntry{
		StudentID:      student.ID,
		StudentName:    student.FullName(),
		SectionID:      section.ID,
		SectionName:    section.Name,
		GradeLevel:     section.GradeLevel,
		Strand:         section.Strand,
		Semester:       semester,
		AdviserID:      &adviserID,
		SchoolYear:     section.SchoolYear,
		GeneralAverage: grading.GeneralAverage(finals),
		Subjects:       records,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
	s.logger.Info("grade entry saved",
		zap.String("entry_id", entry.ID),
		zap.String("student_id", entry.StudentID),
		zap.String("section_id", entry.SectionID))
	return entry, nil
}

func subjectRecord(subject string, slots []*float64, rounding grading.Rounding) models.SubjectRecord {
	rec := models.SubjectRecord{Subject: subject}
	for i, v := range slots {
		switch i {
		case 0:
			rec.Quarter1 = v
		case 1:
			rec.Quarter2 = v
		case 2:
			rec.Quarter3 = v
		case 3:
			rec.Quarter4 = v
		}
	}
	rec.Final = grading.FinalGrade(slots, rounding)
	return rec
}

// GetEntry loads an entry with its subject records.
func (s *GradeService) GetEntry(ctx context.Context, id string) (*models.GradeEntry, error) {
	return s.entries.GetByID(ctx, id)
}

// ListEntries returns entries matching the filter with pagination metadata.
func (s *GradeService) ListEntries(ctx context.Context, filter models.GradeEntryFilter) ([]models.GradeEntry, *models.Pagination, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grade entries")
	}
	total, err := s.entries.Count(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count grade entries")
	}
	return entries, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Standing maps an entry to its computed standing view.
func (s *GradeService) Standing(entry models.GradeEntry) models.StudentStanding {
	standing := models.StudentStanding{
		EntryID:        entry.ID,
		StudentID:      entry.StudentID,
		StudentName:    entry.StudentName,
		GradeLevel:     entry.GradeLevel,
		Semester:       entry.Semester,
		GeneralAverage: entry.GeneralAverage,
		Status:         grading.PassFail(entry.GeneralAverage),
	}
	standing.Subjects = make([]models.SubjectStanding, 0, len(entry.Subjects))
	for _, rec := range entry.Subjects {
		standing.Subjects = append(standing.Subjects, models.SubjectStanding{
			Subject: rec.Subject,
			Final:   rec.Final,
			Status:  grading.PassFail(rec.Final),
		})
	}
	return standing
}
