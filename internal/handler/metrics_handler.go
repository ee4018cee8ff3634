package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/optimizer/telemetry"
)

// MetricsHandler exposes observability endpoints over the optimizer's
// telemetry Recorder.
type MetricsHandler struct {
	recorder *telemetry.Recorder
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(recorder *telemetry.Recorder) *MetricsHandler {
	return &MetricsHandler{recorder: recorder}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.recorder.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for readiness/liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
