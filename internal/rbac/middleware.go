package rbac

import (
	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authorize lets the request through when the role claim set by
// AuthMiddleware is granted action on resource.
func Authorize(service Service, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := service.Enforce(EnforceRequest{
			Role:     c.GetString("role"),
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			zap.L().Named("rbac.middleware").Error("enforce failed",
				zap.String("resource", resource),
				zap.String("action", action),
				zap.Error(err),
			)
			response.AbortWithError(c, apperror.ErrInternal)
			return
		}
		if !allowed {
			response.AbortWithError(c, apperror.ErrForbidden)
			return
		}
		c.Next()
	}
}
