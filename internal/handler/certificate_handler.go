package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mnhs-dev/student-record-api/internal/models"
	"github.com/mnhs-dev/student-record-api/internal/service"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
	"github.com/mnhs-dev/student-record-api/pkg/response"
)

// CertificateHandler exposes certificate generation and download endpoints.
type CertificateHandler struct {
	certificates *service.CertificateService
}

// NewCertificateHandler constructs handler.
func NewCertificateHandler(certificates *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// Request godoc
// @Summary Generate a certificate for a student
// @Tags Certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateCertificateRequest true "Certificate payload"
// @Success 201 {object} response.Envelope
// @Router /certificates [post]
func (h *CertificateHandler) Request(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.CreateCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, link, err := h.certificates.Request(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"request": request, "download": link}, nil)
}

// List godoc
// @Summary List certificate requests
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /certificates [get]
func (h *CertificateHandler) List(c *gin.Context) {
	filter := models.CertificateFilter{
		StudentID: queryStrPtr(c, "studentId"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "pageSize", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.CertificateStatus(raw)
		filter.Status = &status
	}

	requests, err := h.certificates.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Link godoc
// @Summary Re-issue a signed download link for a ready certificate
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /certificates/{id}/link [get]
func (h *CertificateHandler) Link(c *gin.Context) {
	link, err := h.certificates.Link(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Download godoc
// @Summary Download a certificate using a signed token
// @Tags Certificates
// @Produce application/pdf
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /certificates/download [get]
func (h *CertificateHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token query parameter is required"))
		return
	}
	request, path, err := h.certificates.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := string(request.Kind) + " - " + request.StudentName + ".pdf"
	c.FileAttachment(path, filename)
}
