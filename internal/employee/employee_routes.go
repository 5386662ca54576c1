package employee

import (
	"dayflow-hris/internal/middleware"
	"dayflow-hris/internal/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware(), middleware.ContextLogger(zap.L()))
	{
		employees.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "employee", "read"),
			handler.GetAll,
		)
		employees.GET("/options",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, "employee", "read"),
			handler.GetOptions,
		)
		employees.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.SelfOrAuthorize(rbacService, "id", "employee", "read"),
			handler.GetById,
		)
	}
}
