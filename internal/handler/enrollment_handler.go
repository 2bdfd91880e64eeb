package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mnhs-dev/student-record-api/internal/models"
	"github.com/mnhs-dev/student-record-api/internal/service"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
	"github.com/mnhs-dev/student-record-api/pkg/response"
)

// EnrollmentHandler exposes student enrollment endpoints.
type EnrollmentHandler struct {
	enrollment *service.EnrollmentService
}

// NewEnrollmentHandler constructs handler.
func NewEnrollmentHandler(enrollment *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollment: enrollment}
}

// AssignSectionRequest moves a batch of students into a section.
type AssignSectionRequest struct {
	SectionID  string   `json:"section_id" binding:"required"`
	StudentIDs []string `json:"student_ids" binding:"required,min=1"`
}

// Enroll godoc
// @Summary Enroll a new student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req models.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.enrollment.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Get godoc
// @Summary Get a student by ID
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	student, err := h.enrollment.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param gradeLevel query int false "Filter by grade level"
// @Param sectionId query string false "Filter by section"
// @Param status query string false "Filter by status"
// @Param strand query string false "Filter by strand"
// @Param schoolYear query string false "Filter by school year"
// @Param search query string false "Search by name or LRN"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		GradeLevel: queryIntPtr(c, "gradeLevel"),
		SectionID:  queryStrPtr(c, "sectionId"),
		SchoolYear: c.Query("schoolYear"),
		Search:     c.Query("search"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "pageSize", 20),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.StudentStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("strand"); raw != "" {
		strand := models.Strand(raw)
		filter.Strand = &strand
	}

	students, pagination, err := h.enrollment.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Update godoc
// @Summary Update a student's record
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body models.UpdateStudentRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [patch]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	var req models.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.enrollment.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// AssignSection godoc
// @Summary Assign students to a section
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body AssignSectionRequest true "Assignment payload"
// @Success 204
// @Router /students/assign-section [post]
func (h *EnrollmentHandler) AssignSection(c *gin.Context) {
	var req AssignSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollment.AssignToSection(c.Request.Context(), req.SectionID, req.StudentIDs); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
