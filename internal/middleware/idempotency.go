package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-patrol/internal/shared/contextutil"
	"go-patrol/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Idempotency replays the stored result of a POST carrying the same Idempotency-Key for
// the same guard. Handlers store the result under idempotency_cache_key and release
// idempotency_lock_key when they finish.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		guardID := c.GetString("guard_id")
		log := contextutil.GetLogger(ctx, zap.L()).With(zap.String("idempotency_key", idempKey))

		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), guardID, idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached any
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				log.Info("idempotent replay")
				response.Success(c, http.StatusOK, cached, nil)
				c.Abort()
				return
			}
		} else if err != redis.Nil {
			// redis unavailable: process the request without replay protection
			log.Warn("idempotency cache read failed", zap.Error(err))
			c.Next()
			return
		}

		isNew, err := rdb.SetNX(ctx, lockKey, "locked", 30*time.Second).Result()
		if err != nil {
			log.Warn("idempotency lock failed", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			response.Error(c, http.StatusConflict, "PROCESSING", "The same request is still being processed, please wait", nil)
			c.Abort()
			return
		}

		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", lockKey)

		c.Next()
	}
}
