// Package httpclient builds the outbound HTTP clients used to reach the
// completions provider and the search APIs.
//
// Each client couples a resty client, a rate limiter and a circuit breaker.
// Requests are never retried: retryablehttp supplies the pooled transport
// and its retry policy is pinned to a single attempt.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Reze-Relay/1.0"

// Options configures one outbound client
type Options struct {
	// Name labels the circuit breaker and metrics
	Name    string
	BaseURL string
	// Timeout bounds the whole exchange including the body. Leave zero for
	// streamed responses and bound them with a context deadline instead.
	Timeout time.Duration
	// HeaderTimeout bounds the wait for response headers
	HeaderTimeout time.Duration
	UserAgent     string
	// RateLimit is requests per second; zero means unlimited
	RateLimit float64
	// OnStateChange observes breaker transitions
	OnStateChange func(name string, from, to resilience.State)
}

// Client wraps resty with rate limiting and a circuit breaker
type Client struct {
	Resty   *resty.Client
	Breaker *resilience.Breaker

	mu      sync.RWMutex
	limiter *rate.Limiter
}

// New creates an outbound client
func New(opts Options) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.CheckRetry = noRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	if transport, ok := retryClient.HTTPClient.Transport.(*http.Transport); ok && opts.HeaderTimeout > 0 {
		transport.ResponseHeaderTimeout = opts.HeaderTimeout
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent)
	if opts.BaseURL != "" {
		restyClient.SetBaseURL(opts.BaseURL)
	}

	breaker := resilience.New(opts.Name, resilience.Settings{
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.6)
		},
		IsFailure:     IsProviderFailure,
		OnStateChange: opts.OnStateChange,
	})

	c := &Client{
		Resty:   restyClient,
		Breaker: breaker,
	}
	c.SetRateLimit(opts.RateLimit)
	return c
}

func noRetry(ctx context.Context, _ *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return false, err
}

// IsProviderFailure reports whether err says something about the provider's
// health. Client errors (bad key, bad request) do not; 429 and 5xx do, as do
// transport failures.
func IsProviderFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var upstream *types.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode >= http.StatusInternalServerError ||
			upstream.StatusCode == http.StatusTooManyRequests
	}
	return true
}

// SetRateLimit configures rate limiting in requests per second
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Request returns a resty request bound to ctx once the rate limiter admits
// it. It fails fast while the breaker is open.
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	if c.Breaker.State() == resilience.StateOpen {
		return nil, fmt.Errorf("%s unavailable: %w", c.Breaker.Name(), resilience.ErrCircuitOpen)
	}

	c.mu.RLock()
	limiter := c.limiter
	c.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	return c.Resty.R().SetContext(ctx), nil
}

// CheckResponse turns a non-2xx response into a *types.UpstreamError
func CheckResponse(service string, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	return &types.UpstreamError{
		Service:    service,
		StatusCode: resp.StatusCode(),
		Body:       resp.String(),
	}
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.Breaker.State()
}
