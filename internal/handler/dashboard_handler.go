package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mnhs-dev/student-record-api/internal/grading"
	"github.com/mnhs-dev/student-record-api/internal/service"
	"github.com/mnhs-dev/student-record-api/pkg/response"
)

// DashboardHandler exposes aggregated reporting endpoints.
type DashboardHandler struct {
	dashboard  *service.DashboardService
	schoolYear string
}

// NewDashboardHandler constructs handler. schoolYear is the default school
// year used when the query string does not carry one.
func NewDashboardHandler(dashboard *service.DashboardService, schoolYear string) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, schoolYear: schoolYear}
}

func (h *DashboardHandler) resolveSchoolYear(c *gin.Context) string {
	if sy := c.Query("schoolYear"); sy != "" {
		return sy
	}
	return h.schoolYear
}

// Overview godoc
// @Summary Dashboard overview for a school year
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param schoolYear query string false "School year, defaults to the configured one"
// @Success 200 {object} response.Envelope
// @Router /dashboard/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.dashboard.Overview(c.Request.Context(), h.resolveSchoolYear(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// TopStudents godoc
// @Summary Top performing students ranked by general average
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param schoolYear query string false "School year"
// @Param limit query int false "Number of students, defaults to 10"
// @Param gradeLevel query int false "Restrict to a grade level"
// @Param sectionId query string false "Restrict to a section"
// @Success 200 {object} response.Envelope
// @Router /dashboard/top-students [get]
func (h *DashboardHandler) TopStudents(c *gin.Context) {
	scope := grading.RankScope{
		GradeLevel: queryIntPtr(c, "gradeLevel"),
		SectionID:  queryStrPtr(c, "sectionId"),
	}
	ranked, err := h.dashboard.TopStudents(c.Request.Context(), h.resolveSchoolYear(c), queryInt(c, "limit", 0), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranked, nil)
}

// SubjectAverages godoc
// @Summary Per-subject averages across finalized grade entries
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param schoolYear query string false "School year"
// @Param sectionId query string false "Restrict to a section"
// @Success 200 {object} response.Envelope
// @Router /dashboard/subject-averages [get]
func (h *DashboardHandler) SubjectAverages(c *gin.Context) {
	averages, err := h.dashboard.SubjectAverages(c.Request.Context(), h.resolveSchoolYear(c), queryStrPtr(c, "sectionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, averages, nil)
}

// EnrollmentByLevel godoc
// @Summary Active enrollment counts per grade level
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param schoolYear query string false "School year"
// @Success 200 {object} response.Envelope
// @Router /dashboard/enrollment [get]
func (h *DashboardHandler) EnrollmentByLevel(c *gin.Context) {
	counts, err := h.dashboard.EnrollmentByLevel(c.Request.Context(), h.resolveSchoolYear(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}

// EnrollmentTrend godoc
// @Summary Enrollment counts per school year
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard/enrollment-trend [get]
func (h *DashboardHandler) EnrollmentTrend(c *gin.Context) {
	trend, err := h.dashboard.EnrollmentTrend(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trend, nil)
}

// Invalidate godoc
// @Summary Drop cached dashboard aggregates
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 204
// @Router /dashboard/cache [delete]
func (h *DashboardHandler) Invalidate(c *gin.Context) {
	if err := h.dashboard.Invalidate(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
