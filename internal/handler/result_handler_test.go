package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matokeo-app/matokeo-api/internal/dto"
	"github.com/matokeo-app/matokeo-api/internal/models"
	appErrors "github.com/matokeo-app/matokeo-api/pkg/errors"
)

type resultServiceMock struct {
	result     *models.SubjectResult
	bulk       *dto.BulkEnterMarksResponse
	listed     []models.SubjectResult
	duplicates *models.DuplicateReport
	cleanup    *models.DuplicateCleanup
	err        error

	lastFilter  models.ResultFilter
	lastResolve dto.ResolveDuplicatesRequest
}

func (m *resultServiceMock) EnterMarks(_ context.Context, req dto.EnterMarksRequest) (*models.SubjectResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *resultServiceMock) BulkEnterMarks(_ context.Context, req dto.BulkEnterMarksRequest) (*dto.BulkEnterMarksResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.bulk, nil
}

func (m *resultServiceMock) ListResults(_ context.Context, filter models.ResultFilter) ([]models.SubjectResult, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	return m.listed, nil
}

func (m *resultServiceMock) DetectDuplicates(_ context.Context, examID string) (*models.DuplicateReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.duplicates, nil
}

func (m *resultServiceMock) ResolveDuplicates(_ context.Context, req dto.ResolveDuplicatesRequest) (*models.DuplicateCleanup, error) {
	m.lastResolve = req
	if m.err != nil {
		return nil, m.err
	}
	return m.cleanup, nil
}

func TestEnterMarksEndpoint(t *testing.T) {
	mock := &resultServiceMock{result: &models.SubjectResult{
		ID:            "res-1",
		StudentID:     "stu-1",
		SubjectID:     "sub-1",
		ExamID:        "exam-1",
		MarksObtained: 67.5,
	}}
	h := NewResultHandler(mock)

	body := []byte(`{"studentId":"stu-1","subjectId":"sub-1","examId":"exam-1","marks":67.5}`)
	c, rec := newGinContext(http.MethodPost, "/results", body)
	h.EnterMarks(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"res-1"`)
}

func TestEnterMarksEndpointRejectsMalformedBody(t *testing.T) {
	h := NewResultHandler(&resultServiceMock{})

	c, rec := newGinContext(http.MethodPost, "/results", []byte(`{not json`))
	h.EnterMarks(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnterMarksEndpointPropagatesInvalidMarks(t *testing.T) {
	h := NewResultHandler(&resultServiceMock{err: appErrors.ErrInvalidMarks})

	body := []byte(`{"studentId":"stu-1","subjectId":"sub-1","examId":"exam-1","marks":101}`)
	c, rec := newGinContext(http.MethodPost, "/results", body)
	h.EnterMarks(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_MARKS")
}

func TestBulkEnterMarksEndpoint(t *testing.T) {
	mock := &resultServiceMock{bulk: &dto.BulkEnterMarksResponse{
		Accepted: 2,
		Rejected: 1,
		Errors:   []string{"row 2: marks must be between 0 and 100"},
	}}
	h := NewResultHandler(mock)

	body := []byte(`{"results":[` +
		`{"studentId":"stu-1","subjectId":"sub-1","examId":"exam-1","marks":50},` +
		`{"studentId":"stu-2","subjectId":"sub-1","examId":"exam-1","marks":70},` +
		`{"studentId":"stu-3","subjectId":"sub-1","examId":"exam-1","marks":120}]}`)
	c, rec := newGinContext(http.MethodPost, "/results/bulk", body)
	h.BulkEnterMarks(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"accepted":2`)
	assert.Contains(t, rec.Body.String(), `"rejected":1`)
}

func TestListResultsEndpointAppliesFilters(t *testing.T) {
	mock := &resultServiceMock{listed: []models.SubjectResult{{ID: "res-1"}}}
	h := NewResultHandler(mock)

	c, rec := newGinContext(http.MethodGet, "/results?examId=exam-1&classId=class-1", nil)
	h.ListResults(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "exam-1", mock.lastFilter.ExamID)
	assert.Equal(t, "class-1", mock.lastFilter.ClassID)
}

func TestDetectDuplicatesEndpoint(t *testing.T) {
	mock := &resultServiceMock{duplicates: &models.DuplicateReport{
		ExamID: "exam-1",
		Resolved: []models.DuplicateResolution{{
			Canonical: models.SubjectResult{ID: "res-2"},
		}},
	}}
	h := NewResultHandler(mock)

	c, rec := newGinContext(http.MethodGet, "/results/duplicates?examId=exam-1", nil)
	h.DetectDuplicates(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"exam_id":"exam-1"`)
}

func TestResolveDuplicatesEndpointDryRun(t *testing.T) {
	mock := &resultServiceMock{cleanup: &models.DuplicateCleanup{
		RemovedIDs:   []string{"res-1"},
		FlaggedCount: 1,
	}}
	h := NewResultHandler(mock)

	body := []byte(`{"examId":"exam-1","dryRun":true}`)
	c, rec := newGinContext(http.MethodPost, "/results/duplicates/resolve", body)
	h.ResolveDuplicates(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, mock.lastResolve.DryRun)
	assert.Equal(t, "exam-1", mock.lastResolve.ExamID)
}
