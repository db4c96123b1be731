// Package openrouter opens streamed chat completions against an
// OpenAI-compatible endpoint (OpenRouter by default).
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

const (
	serviceName  = "openrouter"
	maxErrorBody = 64 * 1024
)

// Client opens completion streams
type Client struct {
	http    *httpclient.Client
	referer string
	title   string
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
}

// New creates a client from the upstream configuration. metrics and tracer
// may be nil.
func New(cfg config.UpstreamConfig, logger *logging.Logger, metrics *monitoring.Metrics, tracer *tracing.Tracer) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logger.Named(serviceName)

	hc := httpclient.New(httpclient.Options{
		Name:          serviceName,
		BaseURL:       cfg.BaseURL,
		HeaderTimeout: cfg.HeaderTimeout,
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("circuit breaker changed state",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
			if metrics != nil {
				metrics.SetBreakerState(name, int(to))
			}
		},
	})
	hc.Resty.SetJSONMarshaler(sonic.Marshal)

	return &Client{
		http:    hc,
		referer: cfg.Referer,
		title:   cfg.Title,
		metrics: metrics,
		tracer:  tracer,
	}
}

// Stream posts req with stream:true and returns the raw event-stream body
// once 2xx headers arrive. The caller owns the body. A non-2xx answer is
// returned as *types.UpstreamError carrying the provider's body.
func (c *Client) Stream(ctx context.Context, apiKey string, req types.CompletionRequest) (io.ReadCloser, error) {
	req.Stream = true

	var span *tracing.Span
	if c.tracer != nil {
		span, ctx = c.tracer.StartSpan(ctx, "openrouter.chat_completions")
		span.SetTag("model", req.Model)
		defer func() {
			span.Finish()
			c.tracer.Submit(span)
		}()
	}

	timer := monitoring.NewTimer(c.metrics, serviceName)
	body, err := resilience.Do(ctx, c.http.Breaker, func(ctx context.Context) (io.ReadCloser, error) {
		return c.post(ctx, apiKey, req)
	})
	timer.Stop(result(err))

	if err != nil && span != nil {
		span.SetError(err)
	}
	return body, err
}

func (c *Client) post(ctx context.Context, apiKey string, req types.CompletionRequest) (io.ReadCloser, error) {
	r, err := c.http.Request(ctx)
	if err != nil {
		return nil, err
	}

	r.SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/event-stream").
		SetBody(req).
		SetDoNotParseResponse(true)
	if c.referer != "" {
		r.SetHeader("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		r.SetHeader("X-Title", c.title)
	}
	tracing.Inject(ctx, func(k, v string) { r.SetHeader(k, v) })

	resp, err := r.Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("openrouter request: %w", err)
	}

	raw := resp.RawBody()
	if resp.IsSuccess() {
		return raw, nil
	}

	defer raw.Close()
	data, _ := io.ReadAll(io.LimitReader(raw, maxErrorBody))
	return nil, &types.UpstreamError{
		Service:    serviceName,
		StatusCode: resp.StatusCode(),
		Body:       string(data),
	}
}

// BreakerState exposes the circuit breaker for health reporting
func (c *Client) BreakerState() resilience.State {
	return c.http.BreakerState()
}

// BreakerStates reports the circuit breaker by name
func (c *Client) BreakerStates() map[string]string {
	return map[string]string{serviceName: c.BreakerState().String()}
}

func result(err error) string {
	var upstream *types.UpstreamError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &upstream):
		return strconv.Itoa(upstream.StatusCode)
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "transport_error"
	}
}
