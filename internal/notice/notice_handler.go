package notice

import (
	"net/http"

	"go-patrol/internal/shared/apperror"
	"go-patrol/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/juju/clock"
	"go.uber.org/zap"
)

type Handler struct {
	repo   Repository
	clock  clock.Clock
	logger *zap.Logger
}

func NewHandler(repo Repository, clk clock.Clock, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, clock: clk, logger: logger.Named("notice.handler")}
}

// GetMine lists the notices currently addressed to the caller's role.
func (h *Handler) GetMine(c *gin.Context) {
	role := c.GetString("role")
	rows, err := h.repo.FindActiveForRole(c.Request.Context(), role, h.clock.Now().UTC())
	if err != nil {
		h.logger.Error("list notices failed", zap.String("role", role), zap.Error(err))
		response.AbortWithError(c, apperror.Transient(err))
		return
	}

	res := make([]NoticeResponse, len(rows))
	for i, n := range rows {
		res[i] = mapToResponse(n)
	}
	response.Success(c, http.StatusOK, res, nil)
}
