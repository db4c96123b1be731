package http

import (
	"net/http"

	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Chat relays a streamed completion as plain chunked text. Errors before
// the upstream stream opens are answered with JSON. After that the status
// is committed and a failure just ends the body.
func (h *Handlers) Chat(c *gin.Context) {
	var req types.ChatRequest
	if !h.bind(c, &req) {
		return
	}

	call, err := h.relay.Prepare(req)
	if err != nil {
		h.fail(c, err, http.StatusInternalServerError, "Chat failed")
		return
	}

	stream, err := h.relay.Open(c.Request.Context(), call)
	if err != nil {
		h.fail(c, err, http.StatusBadGateway, "Failed to reach the language model provider")
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Transfer-Encoding", "chunked")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	if _, err := stream.Pump(c.Writer); err != nil {
		_ = c.Error(err)
		h.logger.Debug("chat stream truncated", zap.Error(err))
	}
}
