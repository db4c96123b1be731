/*
Package monitoring collects Prometheus metrics for the relay server.

# Metrics

  - reze_http_*: request count, latency and sizes per route template
  - reze_relay_*: active streams, outcomes, fragments, skipped frames,
    time to first fragment, stream duration, context truncations
  - reze_upstream_*: outbound calls to the completions and search APIs
  - reze_circuit_breaker_state: one gauge per breaker
  - reze_auth_attempts_total: signups and logins by result

Each Metrics value owns a private registry exposed through Handler, so
tests can build as many servers as they like.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
