// Package search implements the research step: one query fanned out to the
// Google Custom Search and YouTube Data APIs, merged into a ResearchContext.
//
// Both lookups run concurrently and either failing fails the whole call.
// There are no retries and no caching.
package search

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/utils"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Provider performs research lookups
type Provider struct {
	google  *httpclient.Client
	youtube *httpclient.Client

	apiKey       string
	cseID        string
	webResults   int
	videoResults int

	logger  *logging.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
}

// New creates a provider. metrics and tracer may be nil.
func New(cfg config.SearchConfig, logger *logging.Logger, metrics *monitoring.Metrics, tracer *tracing.Tracer) *Provider {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logger.Named("search")

	onState := func(name string, from, to resilience.State) {
		log.Warn("circuit breaker changed state",
			zap.String("breaker", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
		if metrics != nil {
			metrics.SetBreakerState(name, int(to))
		}
	}

	newClient := func(name, baseURL string) *httpclient.Client {
		c := httpclient.New(httpclient.Options{
			Name:          name,
			BaseURL:       baseURL,
			Timeout:       cfg.Timeout,
			OnStateChange: onState,
		})
		c.Resty.SetJSONUnmarshaler(sonic.Unmarshal)
		return c
	}

	return &Provider{
		google:       newClient("google", cfg.GoogleBaseURL),
		youtube:      newClient("youtube", cfg.YouTubeBaseURL),
		apiKey:       cfg.GoogleAPIKey,
		cseID:        cfg.CseID,
		webResults:   cfg.WebResults,
		videoResults: cfg.VideoResults,
		logger:       log,
		metrics:      metrics,
		tracer:       tracer,
	}
}

// Research runs the web and video lookups for req.Query. Request
// credentials take precedence over the configured ones.
func (p *Provider) Research(ctx context.Context, req types.ResearchRequest) (types.ResearchContext, error) {
	if err := utils.ValidateQuery(req.Query); err != nil {
		return types.ResearchContext{}, &requestError{kind: ErrValidation, msg: err.Error()}
	}

	apiKey := req.GoogleAPIKey
	if apiKey == "" {
		apiKey = p.apiKey
	}
	cseID := req.CseID
	if cseID == "" {
		cseID = p.cseID
	}
	if apiKey == "" || cseID == "" {
		return types.ResearchContext{}, &requestError{
			kind: ErrConfiguration,
			msg:  "Google API key and search engine ID must be configured in settings or environment",
		}
	}

	if p.tracer != nil {
		var span *tracing.Span
		span, ctx = p.tracer.StartSpan(ctx, "search.research")
		defer func() {
			span.Finish()
			p.tracer.Submit(span)
		}()
	}

	result := types.EmptyResearchContext(req.Query)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		web, err := guarded(gctx, p.metrics, p.google, func(ctx context.Context) ([]types.WebResult, error) {
			return p.searchWeb(ctx, req.Query, apiKey, cseID)
		})
		result.GoogleResults = web
		return err
	})

	g.Go(func() error {
		videos, err := guarded(gctx, p.metrics, p.youtube, func(ctx context.Context) ([]types.VideoResult, error) {
			return p.searchVideos(ctx, req.Query, apiKey)
		})
		result.YouTubeResults = videos
		return err
	})

	if err := g.Wait(); err != nil {
		p.logger.Warn("research failed", zap.Error(err))
		return types.ResearchContext{}, fmt.Errorf("%w: %w", ErrResearchFailed, err)
	}

	p.logger.Debug("research finished",
		zap.Int("web_results", len(result.GoogleResults)),
		zap.Int("video_results", len(result.YouTubeResults)),
	)
	return result, nil
}

// BreakerStates reports the circuit breaker of each search API
func (p *Provider) BreakerStates() map[string]string {
	return map[string]string{
		p.google.Breaker.Name():  p.google.BreakerState().String(),
		p.youtube.Breaker.Name(): p.youtube.BreakerState().String(),
	}
}

// guarded runs fn under the client's breaker and records the call
func guarded[T any](ctx context.Context, metrics *monitoring.Metrics, c *httpclient.Client, fn func(context.Context) (T, error)) (T, error) {
	timer := monitoring.NewTimer(metrics, c.Breaker.Name())
	out, err := resilience.Do(ctx, c.Breaker, fn)
	if err != nil {
		timer.Stop("error")
		return out, fmt.Errorf("%s: %w", c.Breaker.Name(), err)
	}
	timer.Stop("ok")
	return out, nil
}
