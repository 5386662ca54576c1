package main

import (
	"context"
	"time"

	"dayflow-hris/internal/config"
	"dayflow-hris/internal/migration"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL())
	if err != nil {
		logger.Fatal("parse database url failed", zap.Error(err))
	}
	poolCfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	defer pool.Close()

	applied, err := migration.Migrate(ctx, pool, logger)
	if err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}
	logger.Info("migrations done", zap.Int("applied", applied))
}
