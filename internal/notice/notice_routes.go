package notice

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	notices := r.Group("/notices")
	notices.Use(auth)
	{
		notices.GET("", h.GetMine)
	}
}
