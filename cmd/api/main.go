package main

import (
	"context"
	"os/signal"
	"syscall"

	"dayflow-hris/internal/app"
	"dayflow-hris/internal/bootstrap"
	"dayflow-hris/internal/config"
	"dayflow-hris/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
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

	apperror.Init()
	// uang dikirim sebagai angka JSON, bukan string
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := gin.Default()

	// build dependency + routes
	if err := app.BuildApp(ctx, r, cfg); err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	auditLogger := bootstrap.NewStdoutAuditLogger()
	if err := bootstrap.RunHTTPServer(ctx, r, cfg.Server, auditLogger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}
