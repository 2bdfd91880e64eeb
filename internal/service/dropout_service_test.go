package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
)

type fakeDropoutRepo struct {
	requests map[string]*models.DropoutRequest
	pending  bool
}

func newFakeDropoutRepo() *fakeDropoutRepo {
	return &fakeDropoutRepo{requests: make(map[string]*models.DropoutRequest)}
}

func (f *fakeDropoutRepo) Create(_ context.Context, request *models.DropoutRequest) error {
	request.ID = "request-1"
	request.Status = models.DropoutPending
	request.CreatedAt = time.Now()
	f.requests[request.ID] = request
	return nil
}

func (f *fakeDropoutRepo) GetByID(_ context.Context, id string) (*models.DropoutRequest, error) {
	if r, ok := f.requests[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "dropout request not found")
}

func (f *fakeDropoutRepo) List(_ context.Context, _ models.DropoutFilter) ([]models.DropoutRequest, error) {
	out := make([]models.DropoutRequest, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeDropoutRepo) Count(_ context.Context, _ models.DropoutFilter) (int, error) {
	return len(f.requests), nil
}

func (f *fakeDropoutRepo) HasPending(_ context.Context, _ string) (bool, error) {
	return f.pending, nil
}

func (f *fakeDropoutRepo) Review(_ context.Context, id string, status models.DropoutStatus, reviewerID string) error {
	r, ok := f.requests[id]
	if !ok || r.Status != models.DropoutPending {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "dropout request is not pending")
	}
	now := time.Now()
	r.Status = status
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &now
	return nil
}

type fakeDropoutStudents struct {
	student  *models.Student
	statuses map[string]models.StudentStatus
}

func (f *fakeDropoutStudents) GetByID(_ context.Context, _ string) (*models.Student, error) {
	if f.student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return f.student, nil
}

func (f *fakeDropoutStudents) UpdateStatus(_ context.Context, id string, status models.StudentStatus) error {
	if f.statuses == nil {
		f.statuses = make(map[string]models.StudentStatus)
	}
	f.statuses[id] = status
	f.student.Status = status
	return nil
}

func dropoutFixture() (*fakeDropoutRepo, *fakeDropoutStudents, *fakeInvalidator, *DropoutService) {
	requests := newFakeDropoutRepo()
	students := &fakeDropoutStudents{student: &models.Student{
		ID:         "student-1",
		FirstName:  "Juan",
		LastName:   "Dela Cruz",
		GradeLevel: 9,
		Status:     models.StudentEnrolled,
	}}
	sections := &fakeSectionReader{section: &models.Section{ID: "section-1", Name: "Sampaguita", GradeLevel: 9}}
	cache := &fakeInvalidator{}
	svc := NewDropoutService(requests, students, sections, cache, nil, nil)
	return requests, students, cache, svc
}

func validDropoutRequest() models.CreateDropoutRequest {
	return models.CreateDropoutRequest{
		StudentID: "c8a9e1f0-0000-0000-0000-000000000001",
		SectionID: "c8a9e1f0-0000-0000-0000-000000000002",
		Reason:    "Distance to school",
	}
}

func TestSubmitDropoutRequest(t *testing.T) {
	_, _, _, svc := dropoutFixture()

	request, err := svc.Submit(context.Background(), "adviser-1", validDropoutRequest())
	require.NoError(t, err)
	assert.Equal(t, models.DropoutPending, request.Status)
	assert.Equal(t, "Juan Dela Cruz", request.StudentName)
	assert.Equal(t, "adviser-1", request.RequestedBy)
}

func TestSubmitRejectsUnknownReason(t *testing.T) {
	_, _, _, svc := dropoutFixture()

	req := validDropoutRequest()
	req.Reason = "Moved abroad"
	_, err := svc.Submit(context.Background(), "adviser-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubmitRejectsDuplicatePending(t *testing.T) {
	requests, _, _, svc := dropoutFixture()
	requests.pending = true

	_, err := svc.Submit(context.Background(), "adviser-1", validDropoutRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAcceptCascadesStudentStatus(t *testing.T) {
	_, students, cache, svc := dropoutFixture()

	submitted, err := svc.Submit(context.Background(), "adviser-1", validDropoutRequest())
	require.NoError(t, err)

	accepted, err := svc.Accept(context.Background(), submitted.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.DropoutAccepted, accepted.Status)
	require.NotNil(t, accepted.ReviewedBy)
	assert.Equal(t, "admin-1", *accepted.ReviewedBy)

	assert.Equal(t, models.StudentDropout, students.statuses["student-1"])
	assert.Contains(t, cache.patterns, "dashboard:*")
}

func TestRejectLeavesStudentUntouched(t *testing.T) {
	_, students, _, svc := dropoutFixture()

	submitted, err := svc.Submit(context.Background(), "adviser-1", validDropoutRequest())
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), submitted.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.DropoutRejected, rejected.Status)
	assert.Empty(t, students.statuses)
}

func TestTerminalStatesAreFinal(t *testing.T) {
	_, _, _, svc := dropoutFixture()

	submitted, err := svc.Submit(context.Background(), "adviser-1", validDropoutRequest())
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), submitted.ID, "admin-1")
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), submitted.ID, "admin-1")
	require.Error(t, err, "accepted requests cannot be rejected")
	_, err = svc.Accept(context.Background(), submitted.ID, "admin-1")
	require.Error(t, err, "accepted requests cannot be re-accepted")
}

func TestSubmitRejectsAlreadyDroppedStudent(t *testing.T) {
	_, students, _, svc := dropoutFixture()
	students.student.Status = models.StudentDropout

	_, err := svc.Submit(context.Background(), "adviser-1", validDropoutRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestDropoutReasonsListIsFixed(t *testing.T) {
	_, _, _, svc := dropoutFixture()

	reasons := svc.Reasons()
	assert.Len(t, reasons, 10)
	assert.Contains(t, reasons, "Poverty")
	assert.Contains(t, reasons, "Unsafe school environment (e.g., Bullying)")

	reasons[0] = "mutated"
	assert.Equal(t, "Poverty", svc.Reasons()[0])
}
