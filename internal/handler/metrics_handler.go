package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matokeo-app/matokeo-api/internal/service"
	"github.com/matokeo-app/matokeo-api/pkg/response"
)

// MetricsHandler serves Prometheus metrics, a JSON snapshot and the health probe.
type MetricsHandler struct {
	metrics *service.MetricsService
}

func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Prometheus godoc
// @Summary Prometheus metrics in exposition format
// @Tags Metrics
// @Produce plain
// @Success 200 {string} string "metrics"
// @Router /metrics [get]
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Snapshot godoc
// @Summary Aggregated runtime metrics snapshot
// @Tags Metrics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /metrics/snapshot [get]
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot())
}

// Health godoc
// @Summary Liveness probe
// @Tags Metrics
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
