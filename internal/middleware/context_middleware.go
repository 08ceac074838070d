package middleware

import (
	"go-patrol/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextLogger runs before auth: it assigns the request id and a scoped logger. The
// guard id is added to the logger once AuthMiddleware has run, see GuardLogger.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Header("X-Request-ID", rid)
		c.Set("request_id", rid)

		reqLogger := logger.With(
			zap.String("request_id", rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		)

		ctx := c.Request.Context()
		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GuardLogger decorates the request logger with the authenticated guard.
func GuardLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		gid := c.GetString("guard_id")
		if gid != "" {
			ctx := c.Request.Context()
			l := contextutil.GetLogger(ctx, nil).With(
				zap.String("guard_id", gid),
				zap.String("role", c.GetString("role")),
			)
			c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, l))
		}
		c.Next()
	}
}
