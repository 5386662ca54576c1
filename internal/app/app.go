package app

import (
	"context"
	"errors"

	"dayflow-hris/internal/config"
	"dayflow-hris/internal/middleware"
	"dayflow-hris/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects the infrastructure and mounts every module on router.
func BuildApp(ctx context.Context, router *gin.Engine, cfg *config.Config) error {
	logger := zap.L().Named("app")

	if cfg.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	router.Use(middleware.RequestID())

	// 2. Register Modules & Routes
	return registerModules(ctx, router, cfg, sqlDB, gormDB, redisClient)
}
