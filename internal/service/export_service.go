package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matokeo-app/matokeo-api/internal/models"
	"github.com/matokeo-app/matokeo-api/pkg/export"
	"github.com/matokeo-app/matokeo-api/pkg/storage"
)

type reportBuilder interface {
	ClassReport(ctx context.Context, classID, examID string) (*models.ClassReport, error)
	StudentReport(ctx context.Context, studentID, examID string) (*models.StudentReport, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
}

// ExportService renders report datasets and persists the files.
type ExportService struct {
	reports reportBuilder
	storage storage.Storage
	signer  *storage.SignedURLSigner
	csv     export.Exporter
	pdf     export.Exporter
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(reports reportBuilder, store storage.Storage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		reports: reports,
		storage: store,
		signer:  signer,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds the dataset for a job, renders it in the requested
// format and stores the file behind a signed download URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var exporter export.Exporter
	switch job.Params.Format {
	case models.ReportFormatCSV:
		exporter = s.csv
	case models.ReportFormatPDF:
		exporter = s.pdf
	default:
		return nil, fmt.Errorf("unsupported format %s", job.Params.Format)
	}

	var buf bytes.Buffer
	if err := exporter.Export(&buf, dataset); err != nil {
		return nil, fmt.Errorf("render export: %w", err)
	}

	filename := s.buildFilename(job, exporter.Extension())
	relPath, err := s.storage.Save(filename, &buf)
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}

	token := s.signer.Sign(job.ID, relPath)
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
	}, nil
}

// ParseToken validates a download token and returns its job ID and path.
func (s *ExportService) ParseToken(token string) (jobID, relPath string, err error) {
	return s.signer.Verify(token)
}

// Open returns a handle to a stored export file.
func (s *ExportService) Open(relPath string) (io.ReadCloser, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to the configured
// ResultTTL when ttl <= 0) and returns how many were deleted.
func (s *ExportService) Cleanup(ttl time.Duration) (int, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.DeleteOlderThan(time.Now().Add(-ttl))
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (*export.Dataset, error) {
	switch job.Type {
	case models.ReportTypeClassResults:
		if job.Params.ClassID == nil || *job.Params.ClassID == "" {
			return nil, fmt.Errorf("classId required for class results export")
		}
		report, err := s.reports.ClassReport(ctx, *job.Params.ClassID, job.Params.ExamID)
		if err != nil {
			return nil, err
		}
		return classResultsDataset(report), nil
	case models.ReportTypeStudentResults:
		if job.Params.StudentID == nil || *job.Params.StudentID == "" {
			return nil, fmt.Errorf("studentId required for student results export")
		}
		report, err := s.reports.StudentReport(ctx, *job.Params.StudentID, job.Params.ExamID)
		if err != nil {
			return nil, err
		}
		return studentResultsDataset(report), nil
	default:
		return nil, fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func classResultsDataset(report *models.ClassReport) *export.Dataset {
	headers := []string{"Rank", "Student", "Total Marks", "Average", "Best Points", "Division", "Subjects", "Warnings"}
	rows := make([]map[string]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, map[string]string{
			"Rank":        fmt.Sprintf("%d", row.Rank),
			"Student":     studentLabel(row),
			"Total Marks": fmt.Sprintf("%.1f", row.TotalMarks),
			"Average":     fmt.Sprintf("%.1f", row.AverageMarks),
			"Best Points": fmt.Sprintf("%d", row.DivisionResult.BestPoints),
			"Division":    divisionLabel(row.DivisionResult.Division),
			"Subjects":    fmt.Sprintf("%d", len(row.SubjectResults)),
			"Warnings":    strings.Join(row.DivisionResult.Warnings, "; "),
		})
	}
	return &export.Dataset{
		Title:   fmt.Sprintf("Class Results %s (%s)", report.ClassName, report.ExamID),
		Headers: headers,
		Rows:    rows,
	}
}

func studentResultsDataset(report *models.StudentReport) *export.Dataset {
	headers := []string{"Subject", "Marks", "Grade", "Points", "Remark"}
	rows := make([]map[string]string, 0, len(report.Row.SubjectResults)+1)
	for _, subject := range report.Row.SubjectResults {
		rows = append(rows, map[string]string{
			"Subject": subject.SubjectName,
			"Marks":   fmt.Sprintf("%.1f", subject.MarksObtained),
			"Grade":   string(subject.Grade),
			"Points":  fmt.Sprintf("%d", subject.Points),
			"Remark":  subject.Remark,
		})
	}
	rows = append(rows, map[string]string{
		"Subject": "TOTAL",
		"Marks":   fmt.Sprintf("%.1f", report.Row.TotalMarks),
		"Grade":   divisionLabel(report.Row.DivisionResult.Division),
		"Points":  fmt.Sprintf("%d", report.Row.DivisionResult.BestPoints),
		"Remark":  fmt.Sprintf("Average %.1f", report.Row.AverageMarks),
	})
	return &export.Dataset{
		Title:   fmt.Sprintf("Student Results %s (%s)", studentLabel(report.Row), report.ExamID),
		Headers: headers,
		Rows:    rows,
	}
}

func studentLabel(row models.StudentReportRow) string {
	if row.StudentName != "" {
		return row.StudentName
	}
	return row.StudentID
}

func divisionLabel(d models.Division) string {
	if d == models.DivisionNone {
		return "-"
	}
	return string(d)
}

func (s *ExportService) buildFilename(job *models.ReportJob, ext string) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	examPart := sanitizeFilename(job.Params.ExamID)
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), examPart, timestamp, ext)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
