package payroll

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
	payroll := r.Group("/payroll")
	payroll.Use(middleware.AuthMiddleware(), middleware.ContextLogger(zap.L()))
	{
		payroll.GET("/my-payslip", middleware.RBACAuthorize(rbacService, "payroll", "read_self"), handler.GetMyPayslip)
		payroll.GET("/payslips/:employeeId",
			middleware.SelfOrAuthorize(rbacService, "employeeId", "payroll", "read"),
			handler.GetPayslip,
		)
		payroll.GET("/payslips/:employeeId/pdf",
			middleware.SelfOrAuthorize(rbacService, "employeeId", "payroll", "read"),
			handler.DownloadPayslip,
		)
		payroll.POST("/generate",
			middleware.RateLimitByUser(0.2, 1),
			middleware.RBACAuthorize(rbacService, "payroll", "generate"),
			middleware.Idempotency(rdb),
			handler.Generate,
		)
		payroll.GET("/runs", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetRuns)
		payroll.GET("/summary", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetSummary)
		payroll.GET("/employees", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetAllSalaries)
	}
}
