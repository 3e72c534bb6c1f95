package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matokeo-app/matokeo-api/internal/models"
	"github.com/matokeo-app/matokeo-api/pkg/response"
)

type catalogService interface {
	ListClasses(ctx context.Context) ([]models.Class, error)
	ListExams(ctx context.Context) ([]models.Exam, error)
	ClassRoster(ctx context.Context, classID string) (*models.ClassRoster, error)
	GetExam(ctx context.Context, id string) (*models.Exam, error)
}

// CatalogHandler exposes the class, student and exam lookups.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// ListClasses godoc
// @Summary List classes
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *CatalogHandler) ListClasses(c *gin.Context) {
	classes, err := h.service.ListClasses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}

// ClassRoster godoc
// @Summary Class with its active students
// @Tags Catalog
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{classId}/students [get]
func (h *CatalogHandler) ClassRoster(c *gin.Context) {
	roster, err := h.service.ClassRoster(c.Request.Context(), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster)
}

// ListExams godoc
// @Summary List exam sittings
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *CatalogHandler) ListExams(c *gin.Context) {
	exams, err := h.service.ListExams(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams)
}

// GetExam godoc
// @Summary One exam sitting
// @Tags Catalog
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *CatalogHandler) GetExam(c *gin.Context) {
	exam, err := h.service.GetExam(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam)
}
