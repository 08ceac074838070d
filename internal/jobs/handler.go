package jobs

import (
	"context"
	"net/http"

	"go-patrol/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Reaper interface {
	Run(ctx context.Context) (ReapResult, error)
}

type ExpiryChecker interface {
	Run(ctx context.Context) (ExpiryResult, error)
}

// Handler exposes the sweeps to an external scheduler. Concurrent triggers of the same
// job share one run and one result.
type Handler struct {
	reaper Reaper
	expiry ExpiryChecker
	group  singleflight.Group
	logger *zap.Logger
}

func NewHandler(reaper Reaper, expiry ExpiryChecker, logger *zap.Logger) *Handler {
	return &Handler{
		reaper: reaper,
		expiry: expiry,
		logger: logger.Named("jobs.handler"),
	}
}

func (h *Handler) AutoCloseAttendance(c *gin.Context) {
	h.run(c, ReaperJobName, func(ctx context.Context) (any, error) {
		return h.reaper.Run(ctx)
	})
}

func (h *Handler) CheckPermitExpiry(c *gin.Context) {
	h.run(c, ExpiryJobName, func(ctx context.Context) (any, error) {
		return h.expiry.Run(ctx)
	})
}

func (h *Handler) run(c *gin.Context, job string, fn func(ctx context.Context) (any, error)) {
	// the sweep outlives a scheduler that hangs up mid-run
	ctx := context.WithoutCancel(c.Request.Context())
	log := contextutil.GetLogger(ctx, h.logger).With(zap.String("job", job))

	res, err, shared := h.group.Do(job, func() (any, error) {
		return fn(ctx)
	})
	if err != nil {
		log.Error("job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Info("job finished", zap.Bool("shared", shared))
	c.JSON(http.StatusOK, res)
}
