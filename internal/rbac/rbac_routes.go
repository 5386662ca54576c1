package rbac

import (
	"dayflow-hris/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes exposes the caller's own permissions so the client can
// hide actions it cannot perform.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	group := r.Group("/rbac")
	group.Use(middleware.AuthMiddleware(), middleware.ContextLogger(zap.L()))
	{
		group.POST("/enforce", middleware.RateLimitByUser(5, 20), handler.Enforce)
		group.GET("/permissions", middleware.RateLimitByUser(2, 10), handler.ListMyPermissions)
	}
}
