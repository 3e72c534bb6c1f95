package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matokeo-app/matokeo-api/internal/dto"
	"github.com/matokeo-app/matokeo-api/internal/models"
	"github.com/matokeo-app/matokeo-api/internal/repository"
)

type jobRepoStub struct {
	jobs map[string]*models.ReportJob
}

func newJobRepoStub() *jobRepoStub {
	return &jobRepoStub{jobs: map[string]*models.ReportJob{}}
}

func (r *jobRepoStub) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *jobRepoStub) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return job, nil
}

func (r *jobRepoStub) Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error {
	job, ok := r.jobs[id]
	if !ok {
		return errors.New("not found")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *jobRepoStub) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	var queued []models.ReportJob
	for _, job := range r.jobs {
		if job.Status == models.ReportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (r *jobRepoStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	return nil, nil
}

type queueStub struct {
	jobIDs []string
	full   bool
}

func (q *queueStub) Enqueue(jobID string) bool {
	if q.full {
		return false
	}
	q.jobIDs = append(q.jobIDs, jobID)
	return true
}

type exportStub struct {
	result *ExportResult
	err    error
}

func (e exportStub) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func classResultsRequest() dto.ReportRequest {
	classID := "class-1"
	return dto.ReportRequest{
		Type:    models.ReportTypeClassResults,
		ExamID:  "exam-1",
		ClassID: &classID,
		Format:  models.ReportFormatCSV,
	}
}

func TestExportJobServiceCreateJob(t *testing.T) {
	repo := newJobRepoStub()
	queue := &queueStub{}
	svc := NewExportJobService(repo, queue, nil, zap.NewNop(), ExportJobConfig{ResultTTL: time.Hour})

	resp, err := svc.CreateJob(context.Background(), classResultsRequest(), "admin")
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	require.Len(t, queue.jobIDs, 1)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	assert.Contains(t, repo.jobs, resp.ID)
}

func TestExportJobServiceCreateJobValidation(t *testing.T) {
	repo := newJobRepoStub()
	svc := NewExportJobService(repo, &queueStub{}, nil, zap.NewNop(), ExportJobConfig{})

	cases := []dto.ReportRequest{
		{},
		{Type: models.ReportTypeClassResults, ExamID: "exam-1", Format: models.ReportFormatCSV},
		{Type: models.ReportTypeStudentResults, ExamID: "exam-1", Format: models.ReportFormatCSV},
		{Type: "unknown", ExamID: "exam-1", Format: models.ReportFormatCSV},
	}
	for i, req := range cases {
		_, err := svc.CreateJob(context.Background(), req, "admin")
		require.Error(t, err, "case %d", i)
	}
	assert.Empty(t, repo.jobs)
}

func TestExportJobServiceCreateJobQueueFull(t *testing.T) {
	repo := newJobRepoStub()
	svc := NewExportJobService(repo, &queueStub{full: true}, nil, zap.NewNop(), ExportJobConfig{})

	_, err := svc.CreateJob(context.Background(), classResultsRequest(), "admin")
	require.Error(t, err)

	for _, job := range repo.jobs {
		assert.Equal(t, models.ReportStatusFailed, job.Status)
	}
}

func TestExportJobServiceGetStatusOwnership(t *testing.T) {
	repo := newJobRepoStub()
	svc := NewExportJobService(repo, &queueStub{}, nil, zap.NewNop(), ExportJobConfig{})

	job := &models.ReportJob{
		ID:        "job-1",
		Type:      models.ReportTypeClassResults,
		Status:    models.ReportStatusFinished,
		Progress:  100,
		CreatedBy: "teacher-1",
	}
	repo.jobs[job.ID] = job

	resp, err := svc.GetStatus(context.Background(), "job-1", "teacher-1", models.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, resp.Status)

	_, err = svc.GetStatus(context.Background(), "job-1", "teacher-2", models.RoleTeacher)
	require.Error(t, err)

	_, err = svc.GetStatus(context.Background(), "job-1", "someone", models.RoleAdmin)
	require.NoError(t, err)
}

func TestReportWorkerHandleSuccess(t *testing.T) {
	repo := newJobRepoStub()
	classID := "class-1"
	repo.jobs["job-1"] = &models.ReportJob{
		ID:        "job-1",
		Type:      models.ReportTypeClassResults,
		Params:    models.ReportJobParams{ExamID: "exam-1", ClassID: &classID, Format: models.ReportFormatCSV},
		Status:    models.ReportStatusQueued,
		CreatedBy: "admin",
	}
	exporter := exportStub{result: &ExportResult{URL: "/api/v1/export/token"}}
	worker := NewReportWorker(repo, exporter, zap.NewNop())

	err := worker.Handle(context.Background(), "job-1")
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusFinished, repo.jobs["job-1"].Status)
	require.Equal(t, 100, repo.jobs["job-1"].Progress)
	require.NotNil(t, repo.jobs["job-1"].ResultURL)
}

func TestReportWorkerHandleFailure(t *testing.T) {
	repo := newJobRepoStub()
	repo.jobs["job-1"] = &models.ReportJob{
		ID:     "job-1",
		Type:   models.ReportTypeClassResults,
		Status: models.ReportStatusQueued,
	}
	exporter := exportStub{err: errors.New("boom")}
	worker := NewReportWorker(repo, exporter, zap.NewNop())

	err := worker.Handle(context.Background(), "job-1")
	require.Error(t, err)
	require.Equal(t, models.ReportStatusFailed, repo.jobs["job-1"].Status)
}
