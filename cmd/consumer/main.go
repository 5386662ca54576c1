package main

import (
	"dayflow-hris/internal/app"
	"dayflow-hris/internal/config"
	"dayflow-hris/internal/shared/apperror"

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
	decimal.MarshalJSONWithoutQuotes = true

	if err := app.RunConsumer(cfg); err != nil {
		logger.Fatal("run consumer failed", zap.Error(err))
	}
}
