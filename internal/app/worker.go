package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-patrol/internal/attendance"
	"go-patrol/internal/config"
	"go-patrol/internal/jobs"
	"go-patrol/internal/messaging/kafka"
	"go-patrol/internal/messaging/kafka/producer"
	"go-patrol/internal/notice"
	"go-patrol/internal/profile"
	"go-patrol/internal/shared/businessday"
	"go-patrol/internal/shared/connection"

	"github.com/juju/clock"
	"go.uber.org/zap"
)

const (
	outboxPurgeJobName = "purge-outbox"
	outboxRetention    = 7 * 24 * time.Hour
)

// RunWorker relays the outbox to Kafka and runs the periodic jobs in-process.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	location, err := cfg.Location()
	if err != nil {
		return err
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg, 5)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	calendar := businessday.New(clock.WallClock, location)

	reaper := jobs.NewStaleSessionReaper(attendance.NewRepository(gormDB), outboxRepo, clock.WallClock, logger)
	expiryMonitor := jobs.NewExpiryMonitor(profile.NewRepository(gormDB), notice.NewRepository(gormDB), calendar, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)

	go jobs.Schedule(ctx, clock.WallClock, jobs.ReaperJobName, cfg.ReaperInterval, func(ctx context.Context) error {
		_, err := reaper.Run(ctx)
		return err
	}, logger)

	go jobs.Schedule(ctx, clock.WallClock, jobs.ExpiryJobName, cfg.ExpiryInterval, func(ctx context.Context) error {
		_, err := expiryMonitor.Run(ctx)
		return err
	}, logger)

	go jobs.Schedule(ctx, clock.WallClock, outboxPurgeJobName, 24*time.Hour, func(ctx context.Context) error {
		n, err := outboxRepo.PurgeSent(ctx, outboxRetention)
		if err != nil {
			return err
		}
		logger.Info("sent outbox events purged", zap.Int64("count", n))
		return nil
	}, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}
