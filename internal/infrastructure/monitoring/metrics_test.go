package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := NewMetrics()

	router := gin.New()
	router.Use(Middleware(metrics))
	router.GET("/users/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for _, id := range []string{"1", "2", "3"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("GET", "/users/:id", "200")))
	assert.Equal(t, int64(3), metrics.Snapshot().TotalRequests)
}

func TestStreamLifecycle(t *testing.T) {
	metrics := NewMetrics()

	metrics.StreamStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StreamsActive))
	assert.Equal(t, int64(1), metrics.Snapshot().ActiveStreams)

	metrics.StreamFinished(OutcomeDone, 4, 1, 100*time.Millisecond, time.Second)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.StreamsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StreamsTotal.WithLabelValues(OutcomeDone)))
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.Fragments))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MalformedFrames))

	snap := metrics.Snapshot()
	assert.Equal(t, int64(0), snap.ActiveStreams)
	assert.Equal(t, int64(1), snap.TotalStreams)
}

func TestIndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordUpstreamCall("openrouter", "ok", time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.UpstreamCalls.WithLabelValues("openrouter", "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.UpstreamCalls.WithLabelValues("openrouter", "ok")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	metrics := NewMetrics()
	metrics.RecordAuth("login", "ok")

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "reze_auth_attempts_total"))
	assert.True(t, strings.Contains(body, "reze_uptime_seconds"))
}

func TestTimer(t *testing.T) {
	metrics := NewMetrics()
	timer := NewTimer(metrics, "google")
	d := timer.Stop("error")

	assert.GreaterOrEqual(t, d, time.Duration(0))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpstreamCalls.WithLabelValues("google", "error")))
}
