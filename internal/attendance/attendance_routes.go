package attendance

import (
	"dayflow-hris/internal/middleware"
	"dayflow-hris/internal/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	attendances := r.Group("/attendances")
	attendances.Use(middleware.AuthMiddleware(), middleware.ContextLogger(zap.L()))
	{
		attendances.POST("/check-in",
			middleware.RateLimitByUser(1, 3),
			middleware.RBACAuthorize(rbacService, "attendance", "create"),
			h.CheckIn,
		)
		attendances.POST("/check-out",
			middleware.RateLimitByUser(1, 3),
			middleware.RBACAuthorize(rbacService, "attendance", "create"),
			h.CheckOut,
		)
		attendances.GET("/today", middleware.RBACAuthorize(rbacService, "attendance", "read_self"), h.GetToday)
		attendances.GET("/history", middleware.RBACAuthorize(rbacService, "attendance", "read_self"), h.GetHistory)
		attendances.GET("/summary/:employeeId",
			middleware.SelfOrAuthorize(rbacService, "employeeId", "attendance", "read"),
			h.GetSummary,
		)
		attendances.GET("", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetByDate)
		attendances.GET("/overview", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetTeamOverview)
	}
}
