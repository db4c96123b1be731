package http

import (
	"net/http"

	"github.com/GriffinCanCode/Reze/backend/internal/api/middleware"
	"github.com/GriffinCanCode/Reze/backend/internal/domain/settings"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/gin-gonic/gin"
)

// GetSettings returns the caller's stored credentials
func (h *Handlers) GetSettings(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	creds, err := h.settings.Get(c.Request.Context(), user.ID)
	if err != nil {
		h.fail(c, err, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	c.JSON(http.StatusOK, creds)
}

// UpdateSettings replaces the caller's credentials
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req types.SettingsRequest
	if !h.bind(c, &req) {
		return
	}
	user, _ := middleware.CurrentUser(c)

	if err := h.settings.Update(c.Request.Context(), user.ID, req); err != nil {
		h.fail(c, err, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	c.JSON(http.StatusOK, types.SettingsResponse{Success: true, Message: settings.UpdatedMessage})
}
