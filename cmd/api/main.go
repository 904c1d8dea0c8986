package main

import (
	"context"
	"log"

	"go-leaveflow/internal/app"
	"go-leaveflow/internal/bootstrap"
	"go-leaveflow/internal/config"
	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/shared/logger"
	"go-leaveflow/internal/shared/tracing"

	"github.com/gin-gonic/gin"
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

	if cfg.JWT.Secret == "" {
		zl.Fatal("JWT_SECRET is required")
	}

	shutdownTracing, err := tracing.Init(context.Background(), cfg.Tracing, cfg.App.Name, cfg.App.Env)
	if err != nil {
		zl.Fatal("init tracing failed", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			zl.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	apperror.Init()
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	cleanup, err := app.BuildApp(r, cfg)
	if err != nil {
		zl.Fatal("build app failed", zap.Error(err))
	}
	defer cleanup()

	if err := bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfigFrom(cfg.App),
		bootstrap.NewStdoutAuditLogger(zl),
	); err != nil {
		zl.Error("http server stopped", zap.Error(err))
	}
}
