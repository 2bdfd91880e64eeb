package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mnhs-dev/student-record-api/internal/models"
	"github.com/mnhs-dev/student-record-api/internal/service"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
	"github.com/mnhs-dev/student-record-api/pkg/response"
)

// GradeHandler exposes grade entry endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Save godoc
// @Summary Save a student's grade entry for a section
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.SaveGradeEntryRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Save(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.SaveGradeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.grades.SaveEntry(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Get godoc
// @Summary Get a grade entry by ID
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Router /grades/{id} [get]
func (h *GradeHandler) Get(c *gin.Context) {
	entry, err := h.grades.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// List godoc
// @Summary List grade entries
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Filter by student"
// @Param sectionId query string false "Filter by section"
// @Param gradeLevel query int false "Filter by grade level"
// @Param semester query string false "Filter by semester (1st or 2nd)"
// @Param schoolYear query string false "Filter by school year"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	filter := models.GradeEntryFilter{
		StudentID:  queryStrPtr(c, "studentId"),
		SectionID:  queryStrPtr(c, "sectionId"),
		GradeLevel: queryIntPtr(c, "gradeLevel"),
		SchoolYear: c.Query("schoolYear"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "pageSize", 20),
	}
	if raw := c.Query("semester"); raw != "" {
		semester := models.Semester(raw)
		filter.Semester = &semester
	}

	entries, pagination, err := h.grades.ListEntries(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// Standing godoc
// @Summary Pass/fail standing for a grade entry
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Router /grades/{id}/standing [get]
func (h *GradeHandler) Standing(c *gin.Context) {
	entry, err := h.grades.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.grades.Standing(*entry), nil)
}
