package site

import (
	"go-patrol/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, auth gin.HandlerFunc, rbacService middleware.RBACService) {
	sites := r.Group("/sites")
	sites.Use(auth)
	{
		sites.GET("/:id/qr",
			middleware.RBACAuthorize(rbacService, "site", "qr"),
			middleware.RateLimitByIP(2, 10),
			h.GetQRCode,
		)
	}
}
