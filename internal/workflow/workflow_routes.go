package workflow

import (
	"go-leaveflow/internal/middleware"
	"go-leaveflow/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouteConfig struct {
	JWTSecret  string
	Authorizer rbac.Service
	// RateLimit and Burst apply per user to the mutating routes.
	RateLimit rate.Limit
	Burst     int
}

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, cfg RouteConfig, rdb ...*redis.Client) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	wf := r.Group("/leave-workflow")
	wf.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		var mutating []gin.HandlerFunc
		if cfg.RateLimit > 0 {
			mutating = append(mutating, middleware.RateLimitByUser(cfg.RateLimit, cfg.Burst))
		}
		if redisClient != nil {
			mutating = append(mutating, middleware.Idempotency(redisClient, zap.L()))
		}
		post := func(path string, extra []gin.HandlerFunc, h gin.HandlerFunc) {
			chain := append(append(append([]gin.HandlerFunc{}, extra...), mutating...), h)
			wf.POST(path, chain...)
		}

		post("/start", nil, handler.Start)
		post("/manager/decide", nil, handler.ManagerDecide)
		post("/hr/decide", []gin.HandlerFunc{rbac.Authorize(cfg.Authorizer, rbac.ResourceLeaveWorkflow, rbac.ActionDecideHR)}, handler.HRDecide)
		post("/cancel", nil, handler.Cancel)

		wf.GET("/status/:thread_id", handler.GetStatus)
		wf.GET("/runs", handler.ListRuns)
	}
}
