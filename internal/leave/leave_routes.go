package leave

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
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(), middleware.ContextLogger(zap.L()))
	{
		leaves.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "leave", "create"),
			handler.Request,
		)
		leaves.GET("/balance", middleware.RBACAuthorize(rbacService, "leave", "read_self"), handler.GetMyBalance)
		leaves.GET("/my", middleware.RBACAuthorize(rbacService, "leave", "read_self"), handler.GetMine)
		leaves.DELETE("/:id", middleware.RBACAuthorize(rbacService, "leave", "cancel"), handler.Cancel)

		leaves.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetAll)
		leaves.GET("/pending", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetPending)
		leaves.GET("/calendar", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetCalendar)
		leaves.GET("/summary", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetTeamSummary)
		leaves.GET("/balance/:employeeId",
			middleware.SelfOrAuthorize(rbacService, "employeeId", "leave", "read"),
			handler.GetBalance,
		)
		leaves.POST("/:id/approve",
			middleware.RBACAuthorize(rbacService, "leave", "approve"),
			middleware.Idempotency(rdb),
			handler.Approve,
		)
		leaves.POST("/:id/reject", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.Reject)
	}
}
