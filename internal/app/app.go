package app

import (
	"context"
	"log"

	"go-patrol/internal/config"
	"go-patrol/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects storage and registers every HTTP module on router. Background pieces
// owned by the API process (the live feed hub) stop when ctx is cancelled. The returned
// cleanup closes the storage clients.
func BuildApp(ctx context.Context, router *gin.Engine, cfg *config.Config) (func(), error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg, 5)
	if err != nil {
		return nil, err
	}
	log.Println("✅ Database connection established")

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	log.Println("✅ Redis connection established")

	cleanup := func() {
		if err := redisClient.Close(); err != nil {
			zap.L().Warn("close redis failed", zap.Error(err))
		}
		if err := sqlDB.Close(); err != nil {
			zap.L().Warn("close database failed", zap.Error(err))
		}
	}

	if err := registerModules(ctx, router, cfg, sqlDB, gormDB, redisClient); err != nil {
		cleanup()
		return nil, err
	}
	return cleanup, nil
}
