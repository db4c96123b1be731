package http

import (
	"net/http"

	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/gin-gonic/gin"
)

// Research runs the web and video lookups and returns the research context
func (h *Handlers) Research(c *gin.Context) {
	var req types.ResearchRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.research.Research(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, http.StatusInternalServerError, "Research failed")
		return
	}

	c.JSON(http.StatusOK, result)
}
