package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matokeo-app/matokeo-api/internal/dto"
	"github.com/matokeo-app/matokeo-api/internal/models"
	appErrors "github.com/matokeo-app/matokeo-api/pkg/errors"
	"github.com/matokeo-app/matokeo-api/pkg/response"
)

type resultService interface {
	EnterMarks(ctx context.Context, req dto.EnterMarksRequest) (*models.SubjectResult, error)
	BulkEnterMarks(ctx context.Context, req dto.BulkEnterMarksRequest) (*dto.BulkEnterMarksResponse, error)
	ListResults(ctx context.Context, filter models.ResultFilter) ([]models.SubjectResult, error)
	DetectDuplicates(ctx context.Context, examID string) (*models.DuplicateReport, error)
	ResolveDuplicates(ctx context.Context, req dto.ResolveDuplicatesRequest) (*models.DuplicateCleanup, error)
}

// ResultHandler exposes mark entry and duplicate maintenance endpoints.
type ResultHandler struct {
	service resultService
}

// NewResultHandler constructs handler.
func NewResultHandler(svc resultService) *ResultHandler {
	return &ResultHandler{service: svc}
}

// EnterMarks godoc
// @Summary Record one mark entry
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body dto.EnterMarksRequest true "Mark entry"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /results [post]
func (h *ResultHandler) EnterMarks(c *gin.Context) {
	var req dto.EnterMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mark entry payload"))
		return
	}
	result, err := h.service.EnterMarks(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// BulkEnterMarks godoc
// @Summary Record a batch of mark entries
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body dto.BulkEnterMarksRequest true "Mark entries"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /results/bulk [post]
func (h *ResultHandler) BulkEnterMarks(c *gin.Context) {
	var req dto.BulkEnterMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk payload"))
		return
	}
	resp, err := h.service.BulkEnterMarks(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// ListResults godoc
// @Summary List stored results
// @Tags Results
// @Produce json
// @Param studentId query string false "Student ID"
// @Param subjectId query string false "Subject ID"
// @Param examId query string false "Exam ID"
// @Param classId query string false "Class ID"
// @Success 200 {object} response.Envelope
// @Router /results [get]
func (h *ResultHandler) ListResults(c *gin.Context) {
	filter := models.ResultFilter{
		StudentID: c.Query("studentId"),
		SubjectID: c.Query("subjectId"),
		ExamID:    c.Query("examId"),
		ClassID:   c.Query("classId"),
	}
	results, err := h.service.ListResults(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results)
}

// DetectDuplicates godoc
// @Summary Scan an exam for duplicate result rows
// @Tags Results
// @Produce json
// @Param examId query string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /results/duplicates [get]
func (h *ResultHandler) DetectDuplicates(c *gin.Context) {
	report, err := h.service.DetectDuplicates(c.Request.Context(), c.Query("examId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// ResolveDuplicates godoc
// @Summary Remove resolvable duplicate result rows
// @Description Deletes discarded rows per the latest-updated-wins rule. Ambiguous groups are returned untouched.
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body dto.ResolveDuplicatesRequest true "Resolution request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /results/duplicates/resolve [post]
func (h *ResultHandler) ResolveDuplicates(c *gin.Context) {
	var req dto.ResolveDuplicatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolution payload"))
		return
	}
	cleanup, err := h.service.ResolveDuplicates(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cleanup)
}
