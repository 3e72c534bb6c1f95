package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matokeo-app/matokeo-api/internal/dto"
	"github.com/matokeo-app/matokeo-api/internal/middleware"
	"github.com/matokeo-app/matokeo-api/internal/models"
	"github.com/matokeo-app/matokeo-api/internal/service"
	appErrors "github.com/matokeo-app/matokeo-api/pkg/errors"
)

type reportServiceMock struct {
	studentReport *models.StudentReport
	classReport   *models.ClassReport
	err           error
}

func (m *reportServiceMock) StudentReport(_ context.Context, studentID, examID string) (*models.StudentReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.studentReport, nil
}

func (m *reportServiceMock) ClassReport(_ context.Context, classID, examID string) (*models.ClassReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.classReport, nil
}

type exportJobServiceMock struct {
	job      *dto.ReportJobResponse
	status   *dto.ReportStatusResponse
	download *service.ReportDownload
	err      error

	createdReq dto.ReportRequest
	actorID    string
}

func (m *exportJobServiceMock) CreateJob(_ context.Context, req dto.ReportRequest, actorID string) (*dto.ReportJobResponse, error) {
	m.createdReq = req
	m.actorID = actorID
	if m.err != nil {
		return nil, m.err
	}
	return m.job, nil
}

func (m *exportJobServiceMock) GetStatus(_ context.Context, id, actorID string, role models.UserRole) (*dto.ReportStatusResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.status, nil
}

func (m *exportJobServiceMock) ResolveDownload(_ context.Context, token string) (*service.ReportDownload, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.download, nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, rec
}

func TestStudentReportEndpoint(t *testing.T) {
	mock := &reportServiceMock{studentReport: &models.StudentReport{
		StudentID:   "stu-1",
		ExamID:      "exam-1",
		Scheme:      models.SchemeOLevel,
		GeneratedAt: time.Now(),
	}}
	h := NewReportHandler(mock, &exportJobServiceMock{})

	c, rec := newGinContext(http.MethodGet, "/reports/students/stu-1/exams/exam-1", nil)
	c.Params = gin.Params{
		{Key: "studentId", Value: "stu-1"},
		{Key: "examId", Value: "exam-1"},
	}
	h.StudentReport(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"student_id":"stu-1"`)
}

func TestStudentReportEndpointNotFound(t *testing.T) {
	mock := &reportServiceMock{err: appErrors.ErrNotFound}
	h := NewReportHandler(mock, &exportJobServiceMock{})

	c, rec := newGinContext(http.MethodGet, "/reports/students/missing/exams/exam-1", nil)
	c.Params = gin.Params{
		{Key: "studentId", Value: "missing"},
		{Key: "examId", Value: "exam-1"},
	}
	h.StudentReport(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClassReportEndpoint(t *testing.T) {
	mock := &reportServiceMock{classReport: &models.ClassReport{
		ClassID: "class-1",
		ExamID:  "exam-1",
		Scheme:  models.SchemeOLevel,
		Rows:    []models.StudentReportRow{{StudentID: "stu-1", Rank: 1}},
	}}
	h := NewReportHandler(mock, &exportJobServiceMock{})

	c, rec := newGinContext(http.MethodGet, "/reports/classes/class-1/exams/exam-1", nil)
	c.Params = gin.Params{
		{Key: "classId", Value: "class-1"},
		{Key: "examId", Value: "exam-1"},
	}
	h.ClassReport(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"class_id":"class-1"`)
}

func TestGenerateExportAccepted(t *testing.T) {
	exports := &exportJobServiceMock{job: &dto.ReportJobResponse{
		ID:     "job-1",
		Status: models.ReportStatusQueued,
	}}
	h := NewReportHandler(&reportServiceMock{}, exports)

	body := []byte(`{"type":"class_results","examId":"exam-1","classId":"class-1","format":"csv"}`)
	c, rec := newGinContext(http.MethodPost, "/reports/export", body)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleAdmin})
	h.GenerateExport(c)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "user-1", exports.actorID)
	assert.Equal(t, "exam-1", exports.createdReq.ExamID)
	assert.Contains(t, rec.Body.String(), `"id":"job-1"`)
}

func TestGenerateExportRequiresAuth(t *testing.T) {
	h := NewReportHandler(&reportServiceMock{}, &exportJobServiceMock{})

	body := []byte(`{"type":"class_results","examId":"exam-1","format":"csv"}`)
	c, rec := newGinContext(http.MethodPost, "/reports/export", body)
	h.GenerateExport(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExportStatusEndpoint(t *testing.T) {
	url := "/api/v1/export/tok-1"
	exports := &exportJobServiceMock{status: &dto.ReportStatusResponse{
		ID:        "job-1",
		Status:    models.ReportStatusFinished,
		Progress:  100,
		ResultURL: &url,
	}}
	h := NewReportHandler(&reportServiceMock{}, exports)

	c, rec := newGinContext(http.MethodGet, "/reports/export/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleTeacher})
	h.ExportStatus(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"FINISHED"`)
}

func TestDownloadStreamsFile(t *testing.T) {
	exports := &exportJobServiceMock{download: &service.ReportDownload{
		File:     io.NopCloser(strings.NewReader("Rank,Student\n1,stu-1\n")),
		Filename: "class_results_exam-1.csv",
		Format:   models.ReportFormatCSV,
	}}
	h := NewReportHandler(&reportServiceMock{}, exports)

	c, rec := newGinContext(http.MethodGet, "/export/tok-1", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok-1"}}
	h.Download(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "class_results_exam-1.csv")
	assert.Equal(t, "Rank,Student\n1,stu-1\n", rec.Body.String())
}

func TestDownloadRejectsBadToken(t *testing.T) {
	h := NewReportHandler(&reportServiceMock{}, &exportJobServiceMock{err: appErrors.ErrForbidden})

	c, rec := newGinContext(http.MethodGet, "/export/bogus", nil)
	c.Params = gin.Params{{Key: "token", Value: "bogus"}}
	h.Download(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
