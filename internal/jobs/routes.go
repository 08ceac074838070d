package jobs

import (
	"go-patrol/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the job triggers. Any method runs the job; OPTIONS is a preflight.
func RegisterRoutes(r gin.IRoutes, h *Handler, schedulerToken string) {
	guard := []gin.HandlerFunc{middleware.CORS(), middleware.SchedulerToken(schedulerToken)}

	r.Any("/jobs/"+ReaperJobName, append(guard, h.AutoCloseAttendance)...)
	r.Any("/jobs/"+ExpiryJobName, append(guard, h.CheckPermitExpiry)...)
}
