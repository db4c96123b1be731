package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Relay outcomes
const (
	OutcomeDone        = "done"
	OutcomeEOF         = "eof"
	OutcomeInterrupted = "interrupted"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Relay metrics
	StreamsActive    prometheus.Gauge
	StreamsTotal     *prometheus.CounterVec
	Fragments        prometheus.Counter
	MalformedFrames  prometheus.Counter
	FirstFragment    prometheus.Histogram
	StreamDuration   prometheus.Histogram
	ContextTruncated prometheus.Counter
	RequestsRejected *prometheus.CounterVec

	// Upstream metrics
	UpstreamCalls    *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	BreakerState     *prometheus.GaugeVec

	// Account metrics
	AuthAttempts *prometheus.CounterVec

	startTime time.Time
	snapshot  Snapshot
	mu        sync.RWMutex
}

// Snapshot holds current values for the JSON health endpoint
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	ActiveStreams int64   `json:"active_streams"`
	TotalStreams  int64   `json:"total_streams"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	UptimeSeconds float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector with its own registry, so several
// servers can live in one process (tests do).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reze_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reze_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds, including streamed bodies",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reze_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reze_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		StreamsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "reze_relay_streams_active",
			Help: "Chat streams currently being relayed",
		}),
		StreamsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reze_relay_streams_total",
				Help: "Relayed chat streams by outcome",
			},
			[]string{"outcome"},
		),
		Fragments: factory.NewCounter(prometheus.CounterOpts{
			Name: "reze_relay_fragments_total",
			Help: "Content fragments written to clients",
		}),
		MalformedFrames: factory.NewCounter(prometheus.CounterOpts{
			Name: "reze_relay_malformed_frames_total",
			Help: "Upstream data frames skipped because they were not valid JSON",
		}),
		FirstFragment: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "reze_relay_first_fragment_seconds",
			Help:    "Time from upstream call to first content fragment",
			Buckets: []float64{.1, .25, .5, 1, 2, 4, 8, 16, 32},
		}),
		StreamDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "reze_relay_stream_duration_seconds",
			Help:    "Total duration of a relayed stream",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 40, 80, 160, 300},
		}),
		ContextTruncated: factory.NewCounter(prometheus.CounterOpts{
			Name: "reze_relay_context_truncated_total",
			Help: "Chat requests whose research context hit the size cap",
		}),
		RequestsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reze_relay_rejected_total",
				Help: "Chat requests rejected before any upstream call",
			},
			[]string{"reason"},
		),

		UpstreamCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reze_upstream_calls_total",
				Help: "Outbound calls by service and result",
			},
			[]string{"service", "result"},
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reze_upstream_call_duration_seconds",
				Help:    "Outbound call latency until response headers",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"service"},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "reze_circuit_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),

		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reze_auth_attempts_total",
				Help: "Signup and login attempts by result",
			},
			[]string{"action", "result"},
		),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "reze_uptime_seconds",
		Help: "Seconds since the server started",
	}, func() float64 {
		return time.Since(m.startTime).Seconds()
	})

	return m
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// StreamStarted marks a relay stream as active
func (m *Metrics) StreamStarted() {
	m.StreamsActive.Inc()
	m.mu.Lock()
	m.snapshot.ActiveStreams++
	m.mu.Unlock()
}

// StreamFinished records the end of a relay stream
func (m *Metrics) StreamFinished(outcome string, fragments, malformed int, firstFragment, duration time.Duration) {
	m.StreamsActive.Dec()
	m.StreamsTotal.WithLabelValues(outcome).Inc()
	m.Fragments.Add(float64(fragments))
	m.MalformedFrames.Add(float64(malformed))
	if fragments > 0 {
		m.FirstFragment.Observe(firstFragment.Seconds())
	}
	m.StreamDuration.Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.ActiveStreams--
	m.snapshot.TotalStreams++
	m.mu.Unlock()
}

// RecordRejected counts a chat request refused before the upstream call
func (m *Metrics) RecordRejected(reason string) {
	m.RequestsRejected.WithLabelValues(reason).Inc()
}

// RecordUpstreamCall records one outbound call
func (m *Metrics) RecordUpstreamCall(service, result string, duration time.Duration) {
	m.UpstreamCalls.WithLabelValues(service, result).Inc()
	m.UpstreamDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// SetBreakerState publishes a circuit breaker state
func (m *Metrics) SetBreakerState(name string, state int) {
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordAuth counts a signup or login attempt
func (m *Metrics) RecordAuth(action, result string) {
	m.AuthAttempts.WithLabelValues(action, result).Inc()
}

// Snapshot returns current values for the health endpoint
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgLatencyMs = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
