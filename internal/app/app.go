package app

import (
	"fmt"

	"go-leaveflow/internal/balance"
	"go-leaveflow/internal/config"
	"go-leaveflow/internal/employee"
	"go-leaveflow/internal/leave"
	"go-leaveflow/internal/messaging/kafka"
	"go-leaveflow/internal/middleware"
	"go-leaveflow/internal/shared/connection"
	"go-leaveflow/internal/workflow"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuildApp connects the stores, registers every module on router and
// returns a cleanup func that closes the connections.
func BuildApp(router *gin.Engine, cfg *config.Config) (func(), error) {
	logger := zap.L().Named("app.api")

	gormDB, err := connection.ConnectDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established", zap.String("driver", cfg.Database.Driver))

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := migrate(gormDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		logger.Info("schema migrated")
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Redis.MaxRetries)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	router.Use(
		cors.New(corsConfig(cfg.App.CORSOrigins)),
		middleware.RequestID(),
		middleware.ContextLogger(zap.L()),
	)

	router.GET("/health", func(c *gin.Context) {
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{"status": "DOWN"})
			return
		}
		c.JSON(200, gin.H{"status": "OK"})
	})

	if err := registerModules(router, cfg, gormDB, redisClient); err != nil {
		_ = redisClient.Close()
		_ = sqlDB.Close()
		return nil, err
	}

	cleanup := func() {
		_ = redisClient.Close()
		_ = sqlDB.Close()
	}
	return cleanup, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&employee.Employee{},
		&leave.Policy{},
		&leave.Holiday{},
		&leave.LeaveRequest{},
		&balance.LeaveBalance{},
		&balance.Entry{},
		&workflow.Checkpoint{},
		&kafka.OutboxEvent{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	c.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Request-ID", "Idempotency-Key"}
	c.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	c.ExposeHeaders = []string{"X-Request-ID"}
	return c
}
