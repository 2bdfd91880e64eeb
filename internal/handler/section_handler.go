package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mnhs-dev/student-record-api/internal/models"
	"github.com/mnhs-dev/student-record-api/internal/service"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
	"github.com/mnhs-dev/student-record-api/pkg/response"
)

// SectionHandler exposes section management endpoints.
type SectionHandler struct {
	sections *service.SectionService
}

// NewSectionHandler constructs handler.
func NewSectionHandler(sections *service.SectionService) *SectionHandler {
	return &SectionHandler{sections: sections}
}

// AddSubjectsRequest is the payload for extending a section's subject list.
type AddSubjectsRequest struct {
	Subjects []string `json:"subjects" binding:"required,min=1"`
}

// Create godoc
// @Summary Create a section with its curriculum subjects
// @Tags Sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateSectionRequest true "Section payload"
// @Success 201 {object} response.Envelope
// @Router /sections [post]
func (h *SectionHandler) Create(c *gin.Context) {
	var req models.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	section, err := h.sections.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// Get godoc
// @Summary Get a section by ID
// @Tags Sections
// @Produce json
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id} [get]
func (h *SectionHandler) Get(c *gin.Context) {
	section, err := h.sections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// List godoc
// @Summary List sections
// @Tags Sections
// @Produce json
// @Security BearerAuth
// @Param gradeLevel query int false "Filter by grade level"
// @Param strand query string false "Filter by strand"
// @Param semester query string false "Filter by semester"
// @Param adviserId query string false "Filter by adviser"
// @Param schoolYear query string false "Filter by school year"
// @Param search query string false "Search by name"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sections [get]
func (h *SectionHandler) List(c *gin.Context) {
	filter := models.SectionFilter{
		GradeLevel: queryIntPtr(c, "gradeLevel"),
		AdviserID:  queryStrPtr(c, "adviserId"),
		SchoolYear: c.Query("schoolYear"),
		Search:     c.Query("search"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "pageSize", 20),
	}
	if raw := c.Query("strand"); raw != "" {
		strand := models.Strand(raw)
		filter.Strand = &strand
	}
	if raw := c.Query("semester"); raw != "" {
		semester := models.Semester(raw)
		filter.Semester = &semester
	}

	sections, pagination, err := h.sections.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, pagination)
}

// Roster godoc
// @Summary Section roster with adviser and member students
// @Tags Sections
// @Produce json
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/roster [get]
func (h *SectionHandler) Roster(c *gin.Context) {
	roster, err := h.sections.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// AssignAdviser godoc
// @Summary Assign an adviser to a section
// @Tags Sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Param payload body models.AssignAdviserRequest true "Adviser payload"
// @Success 204
// @Router /sections/{id}/adviser [put]
func (h *SectionHandler) AssignAdviser(c *gin.Context) {
	var req models.AssignAdviserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.sections.AssignAdviser(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddSubjects godoc
// @Summary Add subjects to a section's offering
// @Tags Sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Param payload body AddSubjectsRequest true "Subjects payload"
// @Success 204
// @Router /sections/{id}/subjects [post]
func (h *SectionHandler) AddSubjects(c *gin.Context) {
	var req AddSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.sections.AddSubjects(c.Request.Context(), c.Param("id"), req.Subjects); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Forward godoc
// @Summary Forward a first-semester section to the second semester
// @Tags Sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Param payload body models.ForwardSectionRequest false "Override payload"
// @Success 201 {object} response.Envelope
// @Router /sections/{id}/forward [post]
func (h *SectionHandler) Forward(c *gin.Context) {
	var req models.ForwardSectionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	roster, err := h.sections.ForwardToSecondSemester(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, roster)
}
