package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := New(Options{Name: "test"})

	require.NotNil(t, client.Breaker)
	assert.Equal(t, "test", client.Breaker.Name())
	assert.Equal(t, resilience.StateClosed, client.BreakerState())
	assert.Equal(t, defaultUserAgent, client.Resty.Header.Get("User-Agent"))
}

func TestRequestDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("overloaded"))
	}))
	defer srv.Close()

	client := New(Options{Name: "test", BaseURL: srv.URL, Timeout: time.Second})
	req, err := client.Request(context.Background())
	require.NoError(t, err)

	resp, err := req.Get("/")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	err = CheckResponse("test", resp)
	var upstream *types.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
	assert.Equal(t, "overloaded", upstream.Body)
}

func TestRequestFailsFastWhenOpen(t *testing.T) {
	client := New(Options{Name: "test"})
	for i := 0; i < 5; i++ {
		done, err := client.Breaker.Allow()
		require.NoError(t, err)
		done(errors.New("connection refused"))
	}
	require.Equal(t, resilience.StateOpen, client.BreakerState())

	_, err := client.Request(context.Background())
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}

func TestRequestHonoursContext(t *testing.T) {
	client := New(Options{Name: "test", RateLimit: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Request(ctx)
	assert.Error(t, err)
}

func TestIsProviderFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"unauthorized", &types.UpstreamError{StatusCode: 401}, false},
		{"bad request", &types.UpstreamError{StatusCode: 400}, false},
		{"throttled", &types.UpstreamError{StatusCode: 429}, true},
		{"server error", fmt.Errorf("wrapped: %w", &types.UpstreamError{StatusCode: 502}), true},
		{"transport", errors.New("dial tcp: refused"), true},
		{"deadline", context.DeadlineExceeded, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProviderFailure(tt.err))
		})
	}
}
