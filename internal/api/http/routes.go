package http

import (
	"github.com/GriffinCanCode/Reze/backend/internal/api/middleware"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// Register mounts every route. Service routes live under prefix, operational
// ones at the root.
func (h *Handlers) Register(router *gin.Engine, prefix string) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
	router.GET("/metrics/json", h.MetricsJSON)

	api := router.Group(prefix, middleware.BodyLimit(utils.MaxRequestBodySize))

	api.POST("/research", h.Research)
	api.POST("/chat", h.Chat)

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", h.Signup)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/logout", middleware.RequireAuth(h.auth), h.Logout)

	user := api.Group("/user", middleware.RequireAuth(h.auth))
	user.GET("/settings", h.GetSettings)
	user.POST("/settings", h.UpdateSettings)
}
