package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matokeo-app/matokeo-api/internal/dto"
	"github.com/matokeo-app/matokeo-api/internal/models"
	"github.com/matokeo-app/matokeo-api/internal/service"
	appErrors "github.com/matokeo-app/matokeo-api/pkg/errors"
	"github.com/matokeo-app/matokeo-api/pkg/response"
)

type reportService interface {
	StudentReport(ctx context.Context, studentID, examID string) (*models.StudentReport, error)
	ClassReport(ctx context.Context, classID, examID string) (*models.ClassReport, error)
}

type exportJobService interface {
	CreateJob(ctx context.Context, req dto.ReportRequest, actorID string) (*dto.ReportJobResponse, error)
	GetStatus(ctx context.Context, id string, actorID string, role models.UserRole) (*dto.ReportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
}

// ReportHandler exposes report aggregation and export endpoints.
type ReportHandler struct {
	reports reportService
	exports exportJobService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService, exports exportJobService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// StudentReport godoc
// @Summary Aggregated student report for one exam
// @Tags Reports
// @Produce json
// @Param studentId path string true "Student ID"
// @Param examId path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/students/{studentId}/exams/{examId} [get]
func (h *ReportHandler) StudentReport(c *gin.Context) {
	report, err := h.reports.StudentReport(c.Request.Context(), c.Param("studentId"), c.Param("examId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// ClassReport godoc
// @Summary Ranked class report for one exam
// @Tags Reports
// @Produce json
// @Param classId path string true "Class ID"
// @Param examId path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/classes/{classId}/exams/{examId} [get]
func (h *ReportHandler) ClassReport(c *gin.Context) {
	report, err := h.reports.ClassReport(c.Request.Context(), c.Param("classId"), c.Param("examId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// GenerateExport godoc
// @Summary Queue an export job
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.ReportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/export [post]
func (h *ReportHandler) GenerateExport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	resp, err := h.exports.CreateJob(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, resp)
}

// ExportStatus godoc
// @Summary Export job status
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/export/{id} [get]
func (h *ReportHandler) ExportStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	resp, err := h.exports.GetStatus(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Download godoc
// @Summary Download a generated export
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	download, err := h.exports.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	contentType := "text/csv"
	if download.Format == models.ReportFormatPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, download.File); err != nil {
		_ = c.Error(err)
	}
}
