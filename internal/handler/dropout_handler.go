package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mnhs-dev/student-record-api/internal/models"
	"github.com/mnhs-dev/student-record-api/internal/service"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
	"github.com/mnhs-dev/student-record-api/pkg/response"
)

// DropoutHandler exposes the dropout request workflow.
type DropoutHandler struct {
	dropouts *service.DropoutService
}

// NewDropoutHandler constructs handler.
func NewDropoutHandler(dropouts *service.DropoutService) *DropoutHandler {
	return &DropoutHandler{dropouts: dropouts}
}

// Submit godoc
// @Summary Submit a dropout request for a student
// @Tags Dropouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateDropoutRequest true "Dropout payload"
// @Success 201 {object} response.Envelope
// @Router /dropouts [post]
func (h *DropoutHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.CreateDropoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.dropouts.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Get godoc
// @Summary Get a dropout request by ID
// @Tags Dropouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /dropouts/{id} [get]
func (h *DropoutHandler) Get(c *gin.Context) {
	request, err := h.dropouts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// List godoc
// @Summary List dropout requests
// @Tags Dropouts
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Filter by student"
// @Param sectionId query string false "Filter by section"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /dropouts [get]
func (h *DropoutHandler) List(c *gin.Context) {
	filter := models.DropoutFilter{
		StudentID: queryStrPtr(c, "studentId"),
		SectionID: queryStrPtr(c, "sectionId"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "pageSize", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.DropoutStatus(raw)
		filter.Status = &status
	}

	requests, pagination, err := h.dropouts.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

// Accept godoc
// @Summary Accept a pending dropout request
// @Tags Dropouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /dropouts/{id}/accept [post]
func (h *DropoutHandler) Accept(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.dropouts.Accept(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Reject godoc
// @Summary Reject a pending dropout request
// @Tags Dropouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /dropouts/{id}/reject [post]
func (h *DropoutHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.dropouts.Reject(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Reasons godoc
// @Summary List the accepted dropout reasons
// @Tags Dropouts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dropouts/reasons [get]
func (h *DropoutHandler) Reasons(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.dropouts.Reasons(), nil)
}
