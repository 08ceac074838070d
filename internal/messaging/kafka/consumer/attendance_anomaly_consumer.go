package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-patrol/internal/events"
	"go-patrol/internal/notice"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const anomalyNoticeTTL = 3 * 24 * time.Hour

var anomalyNoticeRoles = []string{"supervisor", "manager", "admin"}

// Backoff between attempts to store one notice. The offset never moves past a notice
// that was not stored.
var (
	noticeRetryBase = 500 * time.Millisecond
	noticeRetryMax  = 30 * time.Second
)

// anomalyNamespace derives a stable notice id per event so redeliveries hit the primary key.
var anomalyNamespace = uuid.MustParse("6f1c3a52-8c1e-4f0b-9d7e-2f5b6f3d9a10")

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type NoticeWriter interface {
	Create(ctx context.Context, n *notice.Notice) error
}

func ConsumeAttendanceAnomalies(
	ctx context.Context,
	reader MessageReader,
	notices NoticeWriter,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.attendance_anomaly")
	log.Info("attendance anomaly consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("attendance anomaly consumer stopped")
				return
			}
			log.Error("fetch attendance lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.SiteAttendanceEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode attendance lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if !event.IsAnomaly() {
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if !storeNotice(ctx, notices, anomalyNotice(event), event, log) {
			log.Info("attendance anomaly consumer stopped", zap.String("pending_record_id", event.RecordID))
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit attendance lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("anomaly notice raised",
			zap.String("record_id", event.RecordID),
			zap.String("guard_id", event.GuardID),
			zap.String("event_type", event.EventType),
		)
	}
}

// storeNotice retries until the notice is stored or already exists. False means ctx
// ended first and the message must stay uncommitted.
func storeNotice(
	ctx context.Context,
	notices NoticeWriter,
	n *notice.Notice,
	event events.SiteAttendanceEvent,
	log *zap.Logger,
) bool {
	wait := noticeRetryBase
	for attempt := 1; ; attempt++ {
		err := notices.Create(ctx, n)
		if err == nil {
			return true
		}
		if isDuplicateNotice(err) {
			log.Warn("anomaly notice already raised, skipping",
				zap.String("record_id", event.RecordID),
				zap.String("event_type", event.EventType),
			)
			return true
		}

		log.Error("create anomaly notice failed",
			zap.String("record_id", event.RecordID),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		wait = min(wait*2, noticeRetryMax)
	}
}

func anomalyNotice(e events.SiteAttendanceEvent) *notice.Notice {
	site := e.SiteName
	if site == "" {
		site = e.SiteID
	}

	reason := "closed late by an operator"
	if e.EventType == events.EventSystemAutoClosed {
		reason = "closed automatically after being left open"
	}

	checkout := "unknown"
	if e.CheckOutTime != nil {
		checkout = e.CheckOutTime.UTC().Format(time.RFC3339)
	}

	start := e.OccurredAt
	if start.IsZero() {
		start = time.Now().UTC()
	}

	return &notice.Notice{
		ID:    uuid.NewSHA1(anomalyNamespace, []byte(e.RecordID+"|"+e.EventType)),
		Title: fmt.Sprintf("Attendance Anomaly - %s", site),
		Content: fmt.Sprintf(
			"Attendance record %s for guard %s on %s was %s.\nCheck-in: %s\nCheck-out: %s",
			e.RecordID, e.GuardID, e.Date, reason,
			e.CheckInTime.UTC().Format(time.RFC3339), checkout,
		),
		Priority:    notice.PriorityNormal,
		Status:      notice.StatusActive,
		TargetRoles: pq.StringArray(anomalyNoticeRoles),
		StartDate:   start,
		EndDate:     start.Add(anomalyNoticeTTL),
	}
}

func isDuplicateNotice(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "notices_pkey"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "notices_pkey")
}
