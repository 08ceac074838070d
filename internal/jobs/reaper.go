package jobs

import (
	"context"
	"time"

	"go-patrol/internal/attendance"
	"go-patrol/internal/events"
	"go-patrol/internal/messaging/kafka"
	"go-patrol/internal/shared/businessday"

	"github.com/juju/clock"
	"go.uber.org/zap"
)

const (
	ReaperJobName = "auto-close-attendance"

	// StaleAfter is how long a session may stay open before the reaper closes it.
	StaleAfter = 16 * time.Hour
	// AssumedShift is added to check-in to produce the fallback checkout time.
	AssumedShift = 12 * time.Hour
)

// SessionStore is the slice of the attendance repository the reaper needs.
type SessionStore interface {
	FindStaleOpen(ctx context.Context, checkedInBefore time.Time) ([]attendance.SiteAttendance, error)
	AutoClose(ctx context.Context, id string, checkOut, closedAt time.Time) (bool, error)
}

type ReapResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type StaleSessionReaper struct {
	store  SessionStore
	outbox kafka.OutboxRepository
	clock  clock.Clock
	logger *zap.Logger
}

// NewStaleSessionReaper builds a reaper; outbox may be nil.
func NewStaleSessionReaper(store SessionStore, outbox kafka.OutboxRepository, clk clock.Clock, logger *zap.Logger) *StaleSessionReaper {
	if clk == nil {
		clk = clock.WallClock
	}
	return &StaleSessionReaper{
		store:  store,
		outbox: outbox,
		clock:  clk,
		logger: logger.Named("jobs.reaper"),
	}
}

func (r *StaleSessionReaper) Name() string {
	return ReaperJobName
}

// Run closes every session checked in strictly more than StaleAfter ago. A failed
// selection aborts the sweep; a failed close is skipped and retried by the next sweep.
func (r *StaleSessionReaper) Run(ctx context.Context) (ReapResult, error) {
	now := r.clock.Now().UTC()
	cutoff := now.Add(-StaleAfter)

	stale, err := r.store.FindStaleOpen(ctx, cutoff)
	if err != nil {
		r.logger.Error("select stale sessions failed", zap.Error(err))
		return ReapResult{}, &JobAbortError{Job: ReaperJobName, Err: err}
	}

	closed := 0
	for _, rec := range stale {
		checkOut := rec.CheckInTime.Add(AssumedShift)
		log := r.logger.With(
			zap.String("record_id", rec.ID.String()),
			zap.String("guard_id", rec.GuardID.String()),
		)

		ok, err := r.store.AutoClose(ctx, rec.ID.String(), checkOut, now)
		if err != nil {
			log.Warn("auto close failed, leaving for next sweep", zap.Error(err))
			continue
		}
		if !ok {
			log.Info("session already closed")
			continue
		}
		closed++

		rec.Status = attendance.StatusSystemAutoClosed
		rec.CheckOutTime = &checkOut
		rec.AutoClosedAt = &now
		r.publish(ctx, rec, now)
	}

	r.logger.Info("stale session sweep finished",
		zap.Int("selected", len(stale)),
		zap.Int("closed", closed),
		zap.Time("cutoff", cutoff),
	)
	return ReapResult{
		Message: "Auto-closed stale attendance sessions",
		Count:   closed,
	}, nil
}

// publish is best effort: the close is already committed.
func (r *StaleSessionReaper) publish(ctx context.Context, rec attendance.SiteAttendance, now time.Time) {
	if r.outbox == nil {
		return
	}

	event := events.SiteAttendanceEvent{
		EventType:    events.EventSystemAutoClosed,
		RecordID:     rec.ID.String(),
		GuardID:      rec.GuardID.String(),
		SiteID:       rec.SiteID.String(),
		SiteName:     rec.SiteName(),
		Date:         businessday.Format(rec.Date),
		Status:       rec.Status,
		CheckInTime:  rec.CheckInTime,
		CheckOutTime: rec.CheckOutTime,
		OccurredAt:   now,
	}
	ob, err := kafka.NewOutboxEvent("", "site_attendance", event.RecordID, event.EventType, events.SiteAttendanceLifecycleTopic, event)
	if err == nil {
		err = r.outbox.Create(ctx, ob)
	}
	if err != nil {
		r.logger.Warn("enqueue auto close event failed", zap.String("record_id", event.RecordID), zap.Error(err))
	}
}
