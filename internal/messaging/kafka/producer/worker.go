package producer

import (
	"context"
	"time"

	"go-patrol/internal/messaging/kafka"

	"go.uber.org/zap"
)

const (
	batchSize = 50
	// claimLease bounds how long a crashed relay keeps rows away from the others.
	claimLease = time.Minute
)

type relayStats struct {
	claimed int
	sent    int
	failed  int
	held    int
}

// ProcessOutboxEvents relays the outbox to Kafka until ctx is done. A full batch is
// followed straight away by the next one, so a backlog drains without waiting for the ticker.
func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	log := logger.Named("kafka.producer.worker")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info("outbox relay started", zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox relay stopped")
			return
		case <-ticker.C:
			drain(ctx, repo, writer, log)
		}
	}
}

func drain(ctx context.Context, repo kafka.OutboxRepository, writer MessageWriter, log *zap.Logger) {
	for ctx.Err() == nil {
		stats, err := relayBatch(ctx, repo, writer, log)
		if err != nil {
			log.Error("claim outbox events failed", zap.Error(err))
			return
		}
		if stats.claimed > 0 {
			log.Info("outbox batch relayed",
				zap.Int("claimed", stats.claimed),
				zap.Int("sent", stats.sent),
				zap.Int("failed", stats.failed),
				zap.Int("held", stats.held),
			)
		}
		if stats.claimed < batchSize || stats.sent == 0 {
			return
		}
	}
}

// relayBatch publishes one claimed batch. The claim already leaves out events queued
// behind an unsent one of the same record; events written in the same instant can still
// share a batch, so once one of them fails the rest are held back until their lease expires.
func relayBatch(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	log *zap.Logger,
) (relayStats, error) {
	claimed, err := repo.ClaimPending(ctx, batchSize, claimLease)
	if err != nil {
		return relayStats{}, err
	}

	stats := relayStats{claimed: len(claimed)}
	blocked := make(map[string]struct{})

	for _, event := range claimed {
		if _, ok := blocked[event.AggregateID]; ok {
			stats.held++
			continue
		}

		if err := publishEvent(ctx, writer, event); err != nil {
			blocked[event.AggregateID] = struct{}{}
			stats.failed++
			log.Error("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("aggregate_id", event.AggregateID),
				zap.String("event_type", event.EventType),
				zap.Int("retry_count", event.RetryCount),
				zap.Error(err),
			)
			if markErr := repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				log.Error("mark outbox event failed", zap.String("outbox_id", event.ID), zap.Error(markErr))
			}
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			// published but still leased; the consumer tolerates the redelivery
			log.Warn("mark outbox event sent failed", zap.String("outbox_id", event.ID), zap.Error(err))
			continue
		}
		stats.sent++

		log.Debug("outbox event sent",
			zap.String("outbox_id", event.ID),
			zap.String("request_id", event.RequestID),
			zap.String("event_type", event.EventType),
		)
	}

	return stats, nil
}
