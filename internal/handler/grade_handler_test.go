package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnhs-dev/student-record-api/internal/middleware"
	"github.com/mnhs-dev/student-record-api/internal/models"
	"github.com/mnhs-dev/student-record-api/internal/service"
)

type handlerEntryRepo struct {
	created *models.GradeEntry
	listed  []models.GradeEntry
}

func (f *handlerEntryRepo) ExistsForScope(context.Context, string, string, *models.Semester) (bool, error) {
	return false, nil
}

func (f *handlerEntryRepo) Create(_ context.Context, entry *models.GradeEntry) error {
	f.created = entry
	return nil
}

func (f *handlerEntryRepo) GetByID(_ context.Context, id string) (*models.GradeEntry, error) {
	if f.created != nil && f.created.ID == id {
		return f.created, nil
	}
	return nil, nil
}

func (f *handlerEntryRepo) List(context.Context, models.GradeEntryFilter) ([]models.GradeEntry, error) {
	return f.listed, nil
}

func (f *handlerEntryRepo) Count(context.Context, models.GradeEntryFilter) (int, error) {
	return len(f.listed), nil
}

type handlerStudentReader struct {
	student *models.Student
}

func (f *handlerStudentReader) GetByID(context.Context, string) (*models.Student, error) {
	return f.student, nil
}

type handlerSectionReader struct {
	section *models.Section
}

func (f *handlerSectionReader) GetByID(context.Context, string) (*models.Section, error) {
	return f.section, nil
}

type handlerInvalidator struct{}

func (handlerInvalidator) DeleteByPattern(context.Context, string) error { return nil }

func gradeHandlerFixture() (*handlerEntryRepo, *GradeHandler) {
	repo := &handlerEntryRepo{}
	students := &handlerStudentReader{student: &models.Student{
		ID:         "b4f1c2d0-0000-0000-0000-000000000001",
		FirstName:  "Jose",
		LastName:   "Cruz",
		GradeLevel: 10,
		Status:     models.StudentEnrolled,
		SchoolYear: "2025-2026",
	}}
	sections := &handlerSectionReader{section: &models.Section{
		ID:         "b4f1c2d0-0000-0000-0000-000000000002",
		Name:       "Sampaguita",
		GradeLevel: 10,
		SchoolYear: "2025-2026",
	}}
	svc := service.NewGradeService(repo, students, sections, handlerInvalidator{}, nil, nil)
	return repo, NewGradeHandler(svc)
}

func TestGradeHandlerSaveRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, handler := gradeHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/grades", bytes.NewBufferString("{}"))

	handler.Save(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGradeHandlerSaveCreatesEntry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo, handler := gradeHandlerFixture()

	payload := map[string]interface{}{
		"student_id": "b4f1c2d0-0000-0000-0000-000000000001",
		"section_id": "b4f1c2d0-0000-0000-0000-000000000002",
		"subjects": []map[string]interface{}{
			{"subject": "Filipino", "scores": []interface{}{80, 82, 84, 86}},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/grades", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "adviser-1", Role: models.RoleAdviser})

	handler.Save(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, repo.created)
	assert.Equal(t, "Jose Cruz", repo.created.StudentName)
	require.NotNil(t, repo.created.GeneralAverage)
	assert.Equal(t, 83.0, *repo.created.GeneralAverage)
}

func TestGradeHandlerSaveRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, handler := gradeHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/grades", bytes.NewBufferString("{not-json"))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "adviser-1", Role: models.RoleAdviser})

	handler.Save(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGradeHandlerListReturnsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo, handler := gradeHandlerFixture()
	repo.listed = []models.GradeEntry{{ID: "entry-1", StudentName: "Jose Cruz"}}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/grades?schoolYear=2025-2026", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data       []models.GradeEntry `json:"data"`
		Pagination *models.Pagination  `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "entry-1", envelope.Data[0].ID)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.TotalCount)
}
