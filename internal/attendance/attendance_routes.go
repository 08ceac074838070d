package attendance

import (
	"go-patrol/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type RouteDeps struct {
	Auth      gin.HandlerFunc
	RBAC      middleware.RBACService
	Redis     *redis.Client
	ScanRate  rate.Limit
	ScanBurst int
	// Live serves the supervisor websocket feed; nil disables the route.
	Live gin.HandlerFunc
}

func RegisterRoutes(r *gin.RouterGroup, h *Handler, deps RouteDeps) {
	attendances := r.Group("/site-attendance")
	attendances.Use(deps.Auth, middleware.GuardLogger())

	// scan and resolve share throttling and replay protection
	write := func(action string, handler gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{
			middleware.RBACAuthorize(deps.RBAC, "site_attendance", action),
			middleware.RateLimitByGuard(deps.ScanRate, deps.ScanBurst),
		}
		if deps.Redis != nil {
			chain = append(chain, middleware.Idempotency(deps.Redis))
		}
		return append(chain, handler)
	}

	{
		attendances.POST("/scan", write("scan", h.Scan)...)
		attendances.POST("/resolve", write("resolve", h.Resolve)...)
		attendances.GET("/open", middleware.RBACAuthorize(deps.RBAC, "site_attendance", "read_own"), h.GetOpen)
		attendances.GET("/today", middleware.RBACAuthorize(deps.RBAC, "site_attendance", "read_own"), h.GetToday)
		attendances.GET("", middleware.RBACAuthorize(deps.RBAC, "site_attendance", "read_own"), h.GetAll)
		if deps.Live != nil {
			attendances.GET("/live", middleware.RBACAuthorize(deps.RBAC, "site_attendance", "monitor"), deps.Live)
		}
	}
}
