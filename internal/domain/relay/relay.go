// Package relay turns one chat request into a streamed completions call and
// relays the provider's content fragments to the caller as plain text.
//
// Failures before the upstream stream opens are returned as errors so the
// HTTP layer can answer with a status and a JSON body. Once the first byte
// of the response is committed a failure can only end the body early.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/utils"
	"go.uber.org/zap"
)

const readBufferSize = 4096

// Upstream opens a streamed completion and returns its raw event-stream
// body. A non-2xx answer must come back as *types.UpstreamError.
type Upstream interface {
	Stream(ctx context.Context, apiKey string, req types.CompletionRequest) (io.ReadCloser, error)
}

// ResponseWriter is the client side of the relay
type ResponseWriter interface {
	io.Writer
	Flush()
}

// Defaults are the process-wide fallbacks for request fields
type Defaults struct {
	APIKey string
	Model  string
	// StreamTimeout bounds a whole stream; zero means no bound
	StreamTimeout time.Duration
}

// Relay is stateless across requests and safe for concurrent use
type Relay struct {
	upstream Upstream
	defaults Defaults
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// New creates a relay. metrics may be nil.
func New(upstream Upstream, defaults Defaults, logger *logging.Logger, metrics *monitoring.Metrics) *Relay {
	if defaults.Model == "" {
		defaults.Model = types.DefaultModel
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Relay{
		upstream: upstream,
		defaults: defaults,
		logger:   logger.Named("relay"),
		metrics:  metrics,
	}
}

// Call is a validated request ready to be sent upstream
type Call struct {
	Request          types.CompletionRequest
	ContextTruncated bool

	apiKey string
}

// Model returns the model the call will use
func (c *Call) Model() string { return c.Request.Model }

// Prepare validates req, resolves credentials and builds the prompt. It
// performs no network I/O.
func (r *Relay) Prepare(req types.ChatRequest) (*Call, error) {
	if err := utils.ValidateMessage(req.Message); err != nil {
		r.reject("validation")
		return nil, validationError(err.Error())
	}

	apiKey := firstNonEmpty(req.OpenRouterAPIKey, r.defaults.APIKey)
	if apiKey == "" {
		r.reject("configuration")
		return nil, configurationError("OpenRouter API key must be configured in settings or environment")
	}
	model := firstNonEmpty(req.OpenRouterModel, r.defaults.Model)

	contextStr, err := SerializeContext(req.Context)
	if err != nil {
		r.reject("validation")
		return nil, err
	}
	contextStr, truncated := CapContext(contextStr)
	if truncated && r.metrics != nil {
		r.metrics.ContextTruncated.Inc()
	}

	return &Call{
		Request: types.CompletionRequest{
			Model:    model,
			Stream:   true,
			Messages: BuildMessages(req.Message, contextStr),
		},
		ContextTruncated: truncated,
		apiKey:           apiKey,
	}, nil
}

// Open starts the upstream stream. The stream's lifetime is tied to ctx, so
// a client disconnect cancels the upstream request.
func (r *Relay) Open(ctx context.Context, call *Call) (*Stream, error) {
	var cancel context.CancelFunc
	if r.defaults.StreamTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.defaults.StreamTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	started := time.Now()
	body, err := r.upstream.Stream(ctx, call.apiKey, call.Request)
	if err != nil {
		cancel()
		var upstream *types.UpstreamError
		if errors.As(err, &upstream) {
			r.logger.Warn("upstream rejected completion",
				logging.Model(call.Model()),
				zap.Int("status", upstream.StatusCode),
				logging.Preview("body", upstream.Body),
			)
		} else {
			r.logger.Warn("upstream call failed", logging.Model(call.Model()), zap.Error(err))
		}
		return nil, err
	}

	if r.metrics != nil {
		r.metrics.StreamStarted()
	}
	return &Stream{
		relay:   r,
		call:    call,
		body:    body,
		cancel:  cancel,
		started: started,
		demux:   NewDemuxer(),
	}, nil
}

func (r *Relay) reject(reason string) {
	if r.metrics != nil {
		r.metrics.RecordRejected(reason)
	}
}

// Result summarises one relayed stream
type Result struct {
	Outcome       string
	Fragments     int
	Malformed     int
	Bytes         int64
	FirstFragment time.Duration
	Duration      time.Duration
}

// Stream is an open upstream completion
type Stream struct {
	relay   *Relay
	call    *Call
	body    io.ReadCloser
	cancel  context.CancelFunc
	started time.Time
	demux   *Demuxer
	closed  bool
}

// Pump copies content fragments to w, flushing after each one, until the
// terminator, upstream EOF or a failure. It always closes the stream.
// A failure is reported as ErrStreamInterrupted.
func (s *Stream) Pump(w ResponseWriter) (Result, error) {
	defer s.Close()

	var res Result
	emit := func(content string) error {
		n, err := io.WriteString(w, content)
		res.Bytes += int64(n)
		if err != nil {
			return fmt.Errorf("write to client: %w", err)
		}
		w.Flush()
		if res.Fragments == 0 {
			res.FirstFragment = time.Since(s.started)
		}
		res.Fragments++
		return nil
	}

	var pumpErr error
	buf := make([]byte, readBufferSize)
	for {
		n, readErr := s.body.Read(buf)
		if n > 0 {
			done, err := s.demux.Feed(buf[:n], emit)
			if err != nil {
				pumpErr = err
				break
			}
			if done {
				res.Outcome = monitoring.OutcomeDone
				break
			}
		}
		if readErr == io.EOF {
			done, err := s.demux.Close(emit)
			if err != nil {
				pumpErr = err
				break
			}
			res.Outcome = monitoring.OutcomeEOF
			if done {
				res.Outcome = monitoring.OutcomeDone
			}
			break
		}
		if readErr != nil {
			pumpErr = fmt.Errorf("read upstream: %w", readErr)
			break
		}
	}

	if pumpErr != nil {
		res.Outcome = monitoring.OutcomeInterrupted
		pumpErr = fmt.Errorf("%w: %w", ErrStreamInterrupted, pumpErr)
	}
	res.Malformed = s.demux.Malformed()
	res.Duration = time.Since(s.started)
	s.finish(res, pumpErr)
	return res, pumpErr
}

// Close releases the upstream connection. Safe to call more than once.
func (s *Stream) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	_ = s.body.Close()
}

func (s *Stream) finish(res Result, err error) {
	r := s.relay
	if r.metrics != nil {
		r.metrics.StreamFinished(res.Outcome, res.Fragments, res.Malformed, res.FirstFragment, res.Duration)
	}

	fields := []zap.Field{
		logging.Model(s.call.Model()),
		zap.String("outcome", res.Outcome),
		zap.Int("fragments", res.Fragments),
		zap.Int("malformed_frames", res.Malformed),
		zap.Int64("bytes", res.Bytes),
		zap.Duration("first_fragment", res.FirstFragment),
		zap.Duration("duration", res.Duration),
		zap.Bool("context_truncated", s.call.ContextTruncated),
	}
	if err != nil {
		r.logger.Warn("relay stream ended early", append(fields, zap.Error(err))...)
		return
	}
	r.logger.Info("relay stream finished", fields...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
