package app

import (
	"context"
	"database/sql"

	"go-patrol/internal/attendance"
	"go-patrol/internal/config"
	"go-patrol/internal/jobs"
	"go-patrol/internal/messaging/kafka"
	"go-patrol/internal/middleware"
	"go-patrol/internal/notice"
	"go-patrol/internal/profile"
	"go-patrol/internal/rbac"
	"go-patrol/internal/rbac/infra"
	"go-patrol/internal/rbac/rbac_http"
	"go-patrol/internal/shared/businessday"
	"go-patrol/internal/site"
	"go-patrol/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/juju/clock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	ctx context.Context,
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	policy, err := attendance.ParseCheckoutPolicy(cfg.CheckoutPolicy)
	if err != nil {
		return err
	}
	location, err := cfg.Location()
	if err != nil {
		return err
	}
	calendar := businessday.New(clock.WallClock, location)

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	siteRepo := site.NewRepository(gormDB)
	noticeRepo := notice.NewRepository(gormDB)
	profileRepo := profile.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)
	if err := rbacService.LoadPolicy(ctx); err != nil {
		return err
	}

	// --- Live feed ---
	hub := ws.NewLiveHub(logger)
	go hub.Run(ctx)

	// --- Services ---
	attendanceService := attendance.NewServiceWithOutbox(db, attendanceRepo, outboxRepo, hub, calendar, policy, logger)
	siteService := site.NewService(siteRepo, rdb, logger)
	reaper := jobs.NewStaleSessionReaper(attendanceRepo, outboxRepo, clock.WallClock, logger)
	expiryMonitor := jobs.NewExpiryMonitor(profileRepo, noticeRepo, calendar, logger)

	// --- Handlers ---
	attendanceHandler := attendance.NewHandlerWithRedis(attendanceService, rbacService, rdb)
	siteHandler := site.NewHandler(siteService)
	noticeHandler := notice.NewHandler(noticeRepo, clock.WallClock, logger)
	rbacHandler := rbac.NewHandler(rbacService)
	jobsHandler := jobs.NewHandler(reaper, expiryMonitor, logger)

	// --- Routes Registration ---
	router.Use(middleware.ContextLogger(logger))
	auth := middleware.AuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api/v1")
	{
		attendance.RegisterRoutes(api, attendanceHandler, attendance.RouteDeps{
			Auth:      auth,
			RBAC:      rbacService,
			Redis:     rdb,
			ScanRate:  rate.Limit(cfg.ScanRatePerSecond),
			ScanBurst: cfg.ScanRateBurst,
			Live:      ws.LiveHandler(hub),
		})
		site.RegisterRoutes(api, siteHandler, auth, rbacService)
		notice.RegisterRoutes(api, noticeHandler, auth)
		rbac_http.RegisterRoutes(api, rbacHandler, auth)
	}

	jobs.RegisterRoutes(router, jobsHandler, cfg.SchedulerToken)

	return nil
}
