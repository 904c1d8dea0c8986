package main

import (
	"context"
	"log"

	"go-leaveflow/internal/app"
	"go-leaveflow/internal/config"
	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/shared/logger"
	"go-leaveflow/internal/shared/tracing"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	shutdownTracing, err := tracing.Init(context.Background(), cfg.Tracing, cfg.App.Name+"-consumer", cfg.App.Env)
	if err != nil {
		zl.Fatal("init tracing failed", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	apperror.Init()

	if err := app.RunConsumer(cfg); err != nil {
		zl.Fatal("run consumer failed", zap.Error(err))
	}
}
