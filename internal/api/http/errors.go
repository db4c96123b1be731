package http

import (
	"errors"
	"net/http"

	"github.com/GriffinCanCode/Reze/backend/internal/domain/auth"
	"github.com/GriffinCanCode/Reze/backend/internal/domain/relay"
	"github.com/GriffinCanCode/Reze/backend/internal/domain/settings"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/Reze/backend/internal/providers/search"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/GriffinCanCode/Reze/backend/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, types.ErrorResponse{Error: msg})
}

// statusFor maps a domain error to its HTTP status and message. ok is false
// for errors with no domain meaning.
func statusFor(err error) (status int, msg string, ok bool) {
	// research wraps provider errors, so it must win over UpstreamError
	if errors.Is(err, search.ErrResearchFailed) {
		return http.StatusBadGateway, err.Error(), true
	}
	var upstream *types.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode, upstream.Body, true
	}

	switch {
	case errors.Is(err, relay.ErrValidation),
		errors.Is(err, search.ErrValidation),
		errors.Is(err, auth.ErrValidation),
		errors.Is(err, auth.ErrUserExists),
		errors.Is(err, settings.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrSessionExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, settings.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, settings.ErrNotFound),
		errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, relay.ErrConfiguration),
		errors.Is(err, search.ErrConfiguration):
		status = http.StatusInternalServerError
	case errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, resilience.ErrTooManyRequests):
		status = http.StatusServiceUnavailable
	default:
		return 0, "", false
	}
	return status, err.Error(), true
}

// fail answers with the status of a domain error. Anything else becomes
// fallback with fallbackMsg, and the cause is only logged.
func (h *Handlers) fail(c *gin.Context, err error, fallback int, fallbackMsg string) {
	_ = c.Error(err)
	if status, msg, ok := statusFor(err); ok {
		respondError(c, status, msg)
		return
	}
	h.logger.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	respondError(c, fallback, fallbackMsg)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
