package attendance

import (
	"encoding/json"
	"net/http"
	"time"

	"go-patrol/internal/domain"
	"go-patrol/internal/shared/apperror"
	"go-patrol/internal/shared/contextutil"
	"go-patrol/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PermissionChecker answers ad-hoc permission questions that change what a handler returns
// rather than whether it runs.
type PermissionChecker interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type Handler struct {
	service Service
	perms   PermissionChecker
	rdb     *redis.Client
}

func NewHandler(service Service, perms PermissionChecker) *Handler {
	return &Handler{service: service, perms: perms}
}

func NewHandlerWithRedis(service Service, perms PermissionChecker, rdb *redis.Client) *Handler {
	return &Handler{service: service, perms: perms, rdb: rdb}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		ctx := c.Request.Context()
		md := contextutil.ExtractMetadata(ctx)
		contextutil.GetLogger(ctx, zap.L()).Error("site attendance request failed",
			zap.String("request_id", md.RequestID),
			zap.String("guard_id", md.GuardID),
			zap.Int("status", httpErr.Status),
			zap.Error(err),
		)
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) can(c *gin.Context, action string) bool {
	if h.perms == nil {
		return false
	}
	allowed, err := h.perms.Enforce(domain.EnforceRequest{
		Role:     c.GetString("role"),
		Resource: "site_attendance",
		Action:   action,
	})
	return err == nil && allowed
}

// releaseIdempotency drops the in-flight lock and, on success, caches the body for replays.
func (h *Handler) releaseIdempotency(c *gin.Context, result any, ok bool) {
	if h.rdb == nil {
		return
	}
	ctx := c.Request.Context()
	if lk := c.GetString("idempotency_lock_key"); lk != "" {
		defer h.rdb.Del(ctx, lk)
	}
	if !ok {
		return
	}
	if ck := c.GetString("idempotency_cache_key"); ck != "" {
		if payload, err := json.Marshal(result); err == nil {
			_ = h.rdb.Set(ctx, ck, payload, 24*time.Hour).Err()
		}
	}
}

func (h *Handler) Scan(c *gin.Context) {
	guardID := c.GetString("guard_id")

	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.releaseIdempotency(c, nil, false)
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidCode, "Invalid QR code, please scan again", err.Error())
		return
	}

	res, err := h.service.Scan(c.Request.Context(), guardID, req)
	if err != nil {
		h.releaseIdempotency(c, nil, false)
		h.writeServiceError(c, err)
		return
	}
	h.releaseIdempotency(c, res, true)

	status := http.StatusOK
	if res.Outcome == OutcomeCheckIn {
		status = http.StatusCreated
	}
	response.Success(c, status, res, nil)
}

func (h *Handler) Resolve(c *gin.Context) {
	actorID := c.GetString("guard_id")

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.releaseIdempotency(c, nil, false)
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	res, err := h.service.Resolve(c.Request.Context(), actorID, h.can(c, "resolve_any"), req)
	if err != nil {
		h.releaseIdempotency(c, nil, false)
		h.writeServiceError(c, err)
		return
	}
	h.releaseIdempotency(c, res, true)

	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) GetOpen(c *gin.Context) {
	resp, err := h.service.GetOpen(c.Request.Context(), c.GetString("guard_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetToday(c *gin.Context) {
	resp, err := h.service.GetToday(c.Request.Context(), c.GetString("guard_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	actorID := c.GetString("guard_id")
	resp, total, err := h.service.GetAll(c.Request.Context(), actorID, h.can(c, "read_all"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, pageSize := normalizePage(req.Page, req.PageSize)
	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp, &meta)
}
