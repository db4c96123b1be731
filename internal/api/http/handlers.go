package http

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/Reze/backend/internal/domain/auth"
	"github.com/GriffinCanCode/Reze/backend/internal/domain/relay"
	"github.com/GriffinCanCode/Reze/backend/internal/domain/settings"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "Reze Relay"
	serviceVersion = "1.0.0"
)

// Researcher runs the research step
type Researcher interface {
	Research(ctx context.Context, req types.ResearchRequest) (types.ResearchContext, error)
}

// BreakerReporter exposes circuit breaker states by name
type BreakerReporter interface {
	BreakerStates() map[string]string
}

// Handlers contains all HTTP handlers
type Handlers struct {
	relay    *relay.Relay
	research Researcher
	auth     *auth.Service
	settings *settings.Service
	breakers []BreakerReporter
	metrics  *monitoring.Metrics
	logger   *logging.Logger
}

// Deps are the collaborators of the handler set. Metrics and Breakers are
// optional.
type Deps struct {
	Relay    *relay.Relay
	Research Researcher
	Auth     *auth.Service
	Settings *settings.Service
	Breakers []BreakerReporter
	Metrics  *monitoring.Metrics
	Logger   *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(deps Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		relay:    deps.Relay,
		research: deps.Research,
		auth:     deps.Auth,
		settings: deps.Settings,
		breakers: deps.Breakers,
		metrics:  deps.Metrics,
		logger:   logger.Named("http"),
	}
}

// Root returns the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// Health reports liveness plus breaker states and request counters
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":   "healthy",
		"breakers": h.breakerStates(),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handlers) breakerStates() map[string]string {
	states := make(map[string]string)
	for _, b := range h.breakers {
		for name, state := range b.BreakerStates() {
			states[name] = state
		}
	}
	return states
}

// bind decodes a JSON body into dst, answering 400 or 413 itself on failure
func (h *Handlers) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if isTooLarge(err) {
			respondError(c, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
