package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/Reze/backend/internal/api/http"
	"github.com/GriffinCanCode/Reze/backend/internal/api/middleware"
	"github.com/GriffinCanCode/Reze/backend/internal/domain/auth"
	"github.com/GriffinCanCode/Reze/backend/internal/domain/relay"
	"github.com/GriffinCanCode/Reze/backend/internal/domain/settings"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/Reze/backend/internal/providers/openrouter"
	"github.com/GriffinCanCode/Reze/backend/internal/providers/search"
	"github.com/GriffinCanCode/Reze/backend/internal/storage"
	"github.com/GriffinCanCode/Reze/backend/internal/storage/memory"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	sweepInterval     = 10 * time.Minute
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	users    storage.UserStore
	sessions storage.SessionStore
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing Reze relay",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("api_prefix", cfg.Server.APIPrefix),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("sessions", cfg.Storage.SessionDriver),
		logging.Secret("openrouter_api_key", cfg.Upstream.APIKey),
		logging.Secret("google_api_key", cfg.Search.GoogleAPIKey),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("reze-relay", logger.Logger)

	users, sessions, err := openStores(ctx, cfg.Storage)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	upstream := openrouter.New(cfg.Upstream, logger, metrics, tracer)
	researcher := search.New(cfg.Search, logger, metrics, tracer)

	chatRelay := relay.New(upstream, relay.Defaults{
		APIKey:        cfg.Upstream.APIKey,
		Model:         cfg.Upstream.Model,
		StreamTimeout: cfg.Upstream.StreamTimeout,
	}, logger, metrics)

	authService := auth.New(users, sessions, auth.Options{TokenTTL: cfg.Auth.TokenTTL}, logger, metrics)
	settingsService := settings.New(users, logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.Server.CORSOrigins
	router.Use(middleware.CORS(cors))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limit := middleware.DefaultRateLimitConfig()
		limit.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limit.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limit, metrics))
	}

	handlers := api.NewHandlers(api.Deps{
		Relay:    chatRelay,
		Research: researcher,
		Auth:     authService,
		Settings: settingsService,
		Breakers: []api.BreakerReporter{upstream, researcher},
		Metrics:  metrics,
		Logger:   logger,
	})
	handlers.Register(router, cfg.Server.APIPrefix)

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		tracer:   tracer,
		users:    users,
		sessions: sessions,
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to ten seconds. Open chat streams are cut when the drain expires.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	if sweeper, ok := s.sessions.(*memory.SessionStore); ok {
		go s.sweepSessions(ctx, sweeper)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("Graceful shutdown timed out", zap.Error(err))
		_ = srv.Close()
	}
	return nil
}

func (s *Server) sweepSessions(ctx context.Context, store *memory.SessionStore) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				s.logger.Debug("expired sessions removed", zap.Int("count", n))
			}
		}
	}
}

// Close releases storage and flushes the tracer and logger
func (s *Server) Close() error {
	var errs []error
	if err := s.sessions.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close session store: %w", err))
	}
	if err := s.users.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close user store: %w", err))
	}
	s.tracer.Close()
	_ = s.logger.Sync()
	return errors.Join(errs...)
}
