package balance

import (
	"go-leaveflow/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, jwtSecret string) {
	balances := r.Group("/leave-balances")
	balances.Use(middleware.AuthMiddleware(jwtSecret))
	{
		balances.GET("", handler.GetMine)
	}
}
