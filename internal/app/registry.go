package app

import (
	"go-leaveflow/internal/balance"
	"go-leaveflow/internal/config"
	"go-leaveflow/internal/employee"
	"go-leaveflow/internal/leave"
	"go-leaveflow/internal/messaging/kafka"
	"go-leaveflow/internal/rbac"
	"go-leaveflow/internal/shared/transaction"
	"go-leaveflow/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()
	txManager := transaction.NewManager(gormDB)

	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	policyRepo := leave.NewPolicyRepository(gormDB)
	holidayRepo := leave.NewHolidayRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)
	checkpoints := workflow.NewGormCheckpointStore(gormDB)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Services ---
	balanceService := balance.NewService(txManager, balanceRepo, policyRepo, logger)
	leaveService := leave.NewService(leaveRepo, logger)

	engine := workflow.NewEngine(
		workflow.Dependencies{
			Tx:          txManager,
			Checkpoints: checkpoints,
			Employees:   employeeRepo,
			Policies:    policyRepo,
			Calendar:    leave.NewCalendar(holidayRepo),
			Requests:    leaveRepo,
			Ledger:      balanceService,
			Recorder:    workflow.NewOutboxRecorder(outboxRepo),
		},
		workflow.WithHRReviewThreshold(decimal.NewFromFloat(cfg.Workflow.HRReviewThresholdDays)),
		workflow.WithLogger(logger),
	)
	workflowService := workflow.NewService(
		engine,
		checkpoints,
		workflow.NewRedisStatusCache(rdb, cfg.Workflow.StatusCacheTTL, logger),
		workflow.ServiceConfig{MaxConflictRetries: cfg.Workflow.MaxConflictRetries},
		logger,
	)

	// --- Handlers ---
	balanceHandler := balance.NewHandler(balanceService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	workflowHandler := workflow.NewHandler(workflowService, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		balance.RegisterRoutes(api, balanceHandler, cfg.JWT.Secret)
		leave.RegisterRoutes(api, leaveHandler, cfg.JWT.Secret)
		workflow.RegisterRoutes(api, workflowHandler, workflow.RouteConfig{
			JWTSecret:  cfg.JWT.Secret,
			Authorizer: rbacService,
			RateLimit:  rate.Limit(cfg.RateLimit.RPS),
			Burst:      cfg.RateLimit.Burst,
		}, rdb)
	}

	return nil
}
