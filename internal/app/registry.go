package app

import (
	"context"
	"database/sql"

	"dayflow-hris/internal/attendance"
	"dayflow-hris/internal/config"
	"dayflow-hris/internal/employee"
	"dayflow-hris/internal/leave"
	"dayflow-hris/internal/messaging/kafka"
	"dayflow-hris/internal/middleware"
	"dayflow-hris/internal/payroll"
	"dayflow-hris/internal/payroll/calculator"
	"dayflow-hris/internal/rbac"
	"dayflow-hris/internal/rbac/infra"
	"dayflow-hris/internal/salarystructure"
	"dayflow-hris/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	ctx context.Context,
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	salaryStructureRepo := salarystructure.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)
	if err := rbacService.LoadPolicy(ctx); err != nil {
		return err
	}

	// --- Services ---
	formula := calculator.NewFormula(calculator.Config{
		StandardAllowance: cfg.Payroll.StandardAllowance,
		ProfessionalTax:   cfg.Payroll.ProfessionalTax,
	})

	employeeService := employee.NewService(employeeRepo, rdb)
	salaryStructureService := salarystructure.NewService(db, salaryStructureRepo, employeeService, formula, rdb)
	attendanceService := attendance.NewService(db, attendanceRepo)
	leaveService := leave.NewService(db, leaveRepo, outboxRepo, cfg.Leave)
	payrollService := payroll.NewService(
		payrollRepo,
		salaryStructureService,
		employeeService,
		attendanceService,
		counterRepo,
		rdb,
	)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService)
	salaryStructureHandler := salarystructure.NewHandler(salaryStructureService, rdb)
	attendanceHandler := attendance.NewHandler(attendanceService)
	leaveHandler := leave.NewHandler(leaveService, rdb)
	payrollHandler := payroll.NewHandler(payrollService, rdb)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitByIP(20, 40))
	{
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		salarystructure.RegisterRoutes(api, salaryStructureHandler, rbacService, rdb)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb)
		payroll.RegisterRoutes(api, payrollHandler, rbacService, rdb)
		rbac.RegisterRoutes(api, rbacHandler)
	}

	return nil
}
