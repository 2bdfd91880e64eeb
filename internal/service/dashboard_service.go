package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mnhs-dev/student-record-api/internal/dto"
	"github.com/mnhs-dev/student-record-api/internal/grading"
	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
)

type dashboardStudentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	CountBySchoolYear(ctx context.Context) ([]models.SchoolYearEnrollment, error)
}

type dashboardEntryLister interface {
	List(ctx context.Context, filter models.GradeEntryFilter) ([]models.GradeEntry, error)
}

type dropoutCounter interface {
	Count(ctx context.Context, filter models.DropoutFilter) (int, error)
	CountByReason(ctx context.Context, status models.DropoutStatus) ([]models.DropoutReasonCount, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
	TopN     int
}

// DashboardService produces the cohort-level aggregate views: rankings,
// subject averages, cohort classification, and enrollment breakdowns.
type DashboardService struct {
	students dashboardStudentLister
	entries  dashboardEntryLister
	dropouts dropoutCounter
	cache    *CacheService
	logger   *zap.Logger
	cfg      DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(students dashboardStudentLister, entries dashboardEntryLister, dropouts dropoutCounter, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TopN <= 0 {
		cfg.TopN = grading.DefaultTopN
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students: students,
		entries:  entries,
		dropouts: dropouts,
		cache:    cache,
		logger:   logger,
		cfg:      cfg,
	}
}

// Overview assembles the full admin dashboard payload for a school year.
func (s *DashboardService) Overview(ctx context.Context, schoolYear string) (*dto.DashboardOverview, error) {
	cacheKey := fmt.Sprintf("dashboard:overview:%s", schoolYear)
	var cached dto.DashboardOverview
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	students, err := s.students.List(ctx, models.StudentFilter{SchoolYear: schoolYear})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	entries, err := s.entries.List(ctx, models.GradeEntryFilter{SchoolYear: schoolYear})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade entries")
	}

	pendingStatus := models.DropoutPending
	pending := 0
	var byReason []models.DropoutReasonCount
	if s.dropouts != nil {
		pending, err = s.dropouts.Count(ctx, models.DropoutFilter{Status: &pendingStatus})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count dropout requests")
		}
		byReason, err = s.dropouts.CountByReason(ctx, models.DropoutAccepted)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count dropouts by reason")
		}
	}

	active := grading.ActiveStudents(students)
	overview := &dto.DashboardOverview{
		SchoolYear:       schoolYear,
		TotalStudents:    len(students),
		Enrollment:       grading.DropoutAdjustedCount(students),
		Cohorts:          grading.ClassifyCohort(active, entries),
		PendingDropouts:  pending,
		DropoutsByReason: byReason,
		TopStudents:      grading.RankTopN(entries, s.cfg.TopN, grading.RankScope{}),
		SubjectAverages:  grading.SubjectAverages(entries),
	}

	if err := s.cache.Set(ctx, cacheKey, overview, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard overview", zap.Error(err))
	}
	return overview, nil
}

// TopStudents returns the top-n ranking for the requested scope.
func (s *DashboardService) TopStudents(ctx context.Context, schoolYear string, n int, scope grading.RankScope) ([]models.RankedStudent, error) {
	if n <= 0 {
		n = s.cfg.TopN
	}
	cacheKey := fmt.Sprintf("dashboard:top:%s:%d:%s:%s", schoolYear, n, scopeKey(scope.GradeLevel), scopeStr(scope.SectionID))
	var cached []models.RankedStudent
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	entries, err := s.entries.List(ctx, models.GradeEntryFilter{SchoolYear: schoolYear})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade entries")
	}
	ranked := grading.RankTopN(entries, n, scope)

	if err := s.cache.Set(ctx, cacheKey, ranked, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache ranking", zap.Error(err))
	}
	return ranked, nil
}

// SubjectAverages returns per-subject mean final grades, optionally scoped
// to a single section.
func (s *DashboardService) SubjectAverages(ctx context.Context, schoolYear string, sectionID *string) ([]models.SubjectAverage, error) {
	filter := models.GradeEntryFilter{SchoolYear: schoolYear, SectionID: sectionID}
	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade entries")
	}
	return grading.SubjectAverages(entries), nil
}

// EnrollmentByLevel counts active students per grade level.
func (s *DashboardService) EnrollmentByLevel(ctx context.Context, schoolYear string) ([]dto.EnrollmentByLevel, error) {
	students, err := s.students.List(ctx, models.StudentFilter{SchoolYear: schoolYear})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	counts := make(map[int]int)
	for _, st := range grading.ActiveStudents(students) {
		counts[st.GradeLevel]++
	}
	levels := make([]dto.EnrollmentByLevel, 0, len(counts))
	for level, count := range counts {
		levels = append(levels, dto.EnrollmentByLevel{GradeLevel: level, Count: count})
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].GradeLevel < levels[j].GradeLevel })
	return levels, nil
}

// EnrollmentTrend counts enrolled students per school year across the
// whole record set.
func (s *DashboardService) EnrollmentTrend(ctx context.Context) ([]models.SchoolYearEnrollment, error) {
	trend, err := s.students.CountBySchoolYear(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students by school year")
	}
	return trend, nil
}

// Invalidate drops every cached dashboard payload.
func (s *DashboardService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, "dashboard:*")
}

func scopeKey(level *int) string {
	if level == nil {
		return "all"
	}
	return fmt.Sprintf("%d", *level)
}

func scopeStr(v *string) string {
	if v == nil {
		return "all"
	}
	return *v
}
