package http

import (
	"net/http"
	"time"

	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/monitoring"
	"github.com/gin-gonic/gin"
)

// MetricsSnapshot is the JSON view of the relay's counters
type MetricsSnapshot struct {
	Timestamp time.Time           `json:"timestamp"`
	Backend   monitoring.Snapshot `json:"backend"`
	Breakers  map[string]string   `json:"breakers"`
	Summary   MetricsSummary      `json:"summary"`
}

// MetricsSummary provides high-level metrics
type MetricsSummary struct {
	TotalRequests    int64   `json:"total_requests"`
	AverageLatencyMs float64 `json:"average_latency_ms"`
	ErrorRate        float64 `json:"error_rate"`
	ActiveStreams    int64   `json:"active_streams"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
}

// MetricsJSON returns counters for dashboards that do not scrape Prometheus
func (h *Handlers) MetricsJSON(c *gin.Context) {
	if h.metrics == nil {
		respondError(c, http.StatusServiceUnavailable, "metrics disabled")
		return
	}

	snapshot := h.metrics.Snapshot()
	var errorRate float64
	if snapshot.TotalRequests > 0 {
		errorRate = float64(snapshot.TotalErrors) / float64(snapshot.TotalRequests)
	}

	c.JSON(http.StatusOK, MetricsSnapshot{
		Timestamp: time.Now(),
		Backend:   snapshot,
		Breakers:  h.breakerStates(),
		Summary: MetricsSummary{
			TotalRequests:    snapshot.TotalRequests,
			AverageLatencyMs: snapshot.AvgLatencyMs,
			ErrorRate:        errorRate,
			ActiveStreams:    snapshot.ActiveStreams,
			UptimeSeconds:    snapshot.UptimeSeconds,
		},
	})
}
