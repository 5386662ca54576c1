package salarystructure

import (
	"dayflow-hris/internal/middleware"
	"dayflow-hris/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	structures := r.Group("/salary-structures")
	structures.Use(middleware.AuthMiddleware(), middleware.ContextLogger(zap.L()))
	{
		structures.POST("/:employeeId",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "salary_structure", "create"),
			middleware.Idempotency(rdb),
			handler.Upsert,
		)
		structures.GET("/:employeeId",
			middleware.RateLimitByUser(3, 10),
			middleware.SelfOrAuthorize(rbacService, "employeeId", "salary_structure", "read"),
			handler.GetCurrent,
		)
		structures.GET("/:employeeId/history",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "salary_structure", "read"),
			handler.GetHistory,
		)
	}
}
