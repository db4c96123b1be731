package http

import (
	"net/http"

	"github.com/GriffinCanCode/Reze/backend/internal/api/middleware"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/gin-gonic/gin"
)

// Signup registers a user and answers 201 with a token and the profile
func (h *Handlers) Signup(c *gin.Context) {
	var req types.AuthRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.auth.Signup(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, http.StatusInternalServerError, "Signup failed")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login answers with a fresh token and the profile
func (h *Handlers) Login(c *gin.Context) {
	var req types.AuthRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, http.StatusInternalServerError, "Login failed")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout revokes the caller's token
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.CurrentToken(c)); err != nil {
		h.fail(c, err, http.StatusInternalServerError, "Logout failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
