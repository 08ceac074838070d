package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	attendanceerrors "go-patrol/internal/attendance/errors"
	"go-patrol/internal/events"
	"go-patrol/internal/messaging/kafka"
	"go-patrol/internal/shared/apperror"
	"go-patrol/internal/shared/businessday"
	"go-patrol/internal/shared/contextutil"
	"go-patrol/internal/sitecode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// LiveFeed receives every committed transition, e.g. the supervisor websocket hub.
type LiveFeed interface {
	Broadcast(event events.SiteAttendanceEvent)
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	Scan(ctx context.Context, guardID string, req ScanRequest) (ScanResult, error)
	Resolve(ctx context.Context, actorID string, canResolveAny bool, req ResolveRequest) (ResolveResult, error)
	GetOpen(ctx context.Context, guardID string) (*AttendanceResponse, error)
	GetToday(ctx context.Context, guardID string) ([]AttendanceResponse, error)
	GetAll(ctx context.Context, actorID string, canReadAll bool, req ListRequest) ([]AttendanceResponse, int64, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	outbox   kafka.OutboxRepository
	feed     LiveFeed
	calendar *businessday.Calendar
	policy   CheckoutPolicy
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	calendar *businessday.Calendar,
	policy CheckoutPolicy,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, nil, nil, calendar, policy, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	feed LiveFeed,
	calendar *businessday.Calendar,
	policy CheckoutPolicy,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	if policy == "" {
		policy = CheckoutStrictToday
	}
	return &service{
		db:       db,
		repo:     repo,
		outbox:   outboxRepo,
		feed:     feed,
		calendar: calendar,
		policy:   policy,
		logger:   l,
	}
}

func (s *service) Scan(ctx context.Context, guardID string, req ScanRequest) (ScanResult, error) {
	log := contextutil.GetLogger(ctx, s.logger).With(zap.String("guard_id", guardID))

	// decode before touching storage: a bad code never opens a transaction
	payload, err := sitecode.Parse(req.Payload)
	if err != nil {
		log.Warn("scan rejected", zap.Error(err))
		return ScanResult{}, attendanceerrors.ErrInvalidCode
	}
	guardUUID, err := uuid.Parse(guardID)
	if err != nil {
		return ScanResult{}, attendanceerrors.ErrInvalidGuardID
	}
	log = log.With(zap.String("site_id", payload.SiteID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("scan begin tx failed", zap.Error(err))
		return ScanResult{}, apperror.Transient(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.LockGuard(ctx, guardID); err != nil {
		log.Error("scan lock guard failed", zap.Error(err))
		return ScanResult{}, apperror.Transient(err)
	}

	open, err := qtx.FindOpenByGuard(ctx, guardID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("scan find open session failed", zap.Error(err))
		return ScanResult{}, apperror.Transient(err)
	}
	if err != nil {
		open = nil
	}

	now := s.calendar.Now()

	switch {
	case open == nil:
		row := &SiteAttendance{
			ID:          uuid.New(),
			GuardID:     guardUUID,
			SiteID:      payload.SiteUUID(),
			Date:        s.calendar.Today(),
			CheckInTime: now,
			Status:      StatusCheckedIn,
		}
		if err := qtx.Create(ctx, row); err != nil {
			mapped := mapRepositoryError(err)
			log.Warn("scan check-in insert failed", zap.Error(err))
			return ScanResult{}, mapped
		}
		row.Site = &SiteRef{ID: row.SiteID, Name: payload.SiteName}

		event, err := s.enqueue(ctx, tx, row, events.EventCheckedIn, now)
		if err != nil {
			log.Error("scan check-in outbox failed", zap.Error(err))
			return ScanResult{}, apperror.Transient(err)
		}
		if err := tx.Commit(); err != nil {
			log.Error("scan check-in commit failed", zap.Error(err))
			return ScanResult{}, mapRepositoryError(err)
		}
		s.broadcast(event)

		log.Info("guard checked in", zap.String("record_id", row.ID.String()))
		resp := mapToResponse(*row)
		return ScanResult{Outcome: OutcomeCheckIn, Record: &resp}, nil

	case s.policy.isCheckout(open, payload.SiteID, s.calendar):
		closed, err := qtx.Close(ctx, open.ID.String(), StatusCheckedOut, now)
		if err != nil {
			log.Error("scan checkout update failed", zap.Error(err))
			return ScanResult{}, mapRepositoryError(err)
		}
		if !closed {
			log.Warn("scan checkout lost race", zap.String("record_id", open.ID.String()))
			return ScanResult{}, attendanceerrors.ErrSessionChanged
		}
		open.Status = StatusCheckedOut
		open.CheckOutTime = &now

		event, err := s.enqueue(ctx, tx, open, events.EventCheckedOut, now)
		if err != nil {
			log.Error("scan checkout outbox failed", zap.Error(err))
			return ScanResult{}, apperror.Transient(err)
		}
		if err := tx.Commit(); err != nil {
			log.Error("scan checkout commit failed", zap.Error(err))
			return ScanResult{}, mapRepositoryError(err)
		}
		s.broadcast(event)

		log.Info("guard checked out", zap.String("record_id", open.ID.String()))
		resp := mapToResponse(*open)
		return ScanResult{Outcome: OutcomeCheckOut, Record: &resp}, nil

	default:
		// nothing is written; the deferred rollback releases the guard lock
		log.Info("scan conflicts with open session",
			zap.String("stale_record_id", open.ID.String()),
			zap.String("stale_site_id", open.SiteID.String()),
		)
		return ScanResult{
			Outcome: OutcomeConflict,
			Conflict: &ConflictResponse{
				StaleRecordID:         open.ID.String(),
				StaleSiteID:           open.SiteID.String(),
				StaleSiteName:         open.SiteName(),
				StaleCheckInTime:      open.CheckInTime.UTC().Format(time.RFC3339),
				PendingSiteID:         payload.SiteID,
				PendingSiteName:       payload.SiteName,
				SuggestedCheckoutTime: s.suggestedCheckout(open).Format(time.RFC3339),
			},
		}, nil
	}
}

// suggestedCheckout is 20:00 the previous day, moved up to check-in time when the
// session started after that.
func (s *service) suggestedCheckout(open *SiteAttendance) time.Time {
	suggested := s.calendar.DefaultCorrectedCheckout()
	if suggested.Before(open.CheckInTime) {
		return open.CheckInTime.UTC()
	}
	return suggested
}

func (s *service) Resolve(ctx context.Context, actorID string, canResolveAny bool, req ResolveRequest) (ResolveResult, error) {
	log := contextutil.GetLogger(ctx, s.logger).With(
		zap.String("actor_id", actorID),
		zap.String("stale_record_id", req.StaleRecordID),
	)

	corrected, err := time.Parse(time.RFC3339, req.CorrectedCheckoutTime)
	if err != nil {
		return ResolveResult{}, attendanceerrors.ErrInvalidCheckoutTime
	}
	corrected = corrected.UTC()

	var pendingSite uuid.UUID
	if req.PendingSiteID != "" {
		pendingSite, err = uuid.Parse(req.PendingSiteID)
		if err != nil {
			return ResolveResult{}, attendanceerrors.ErrInvalidPendingSite
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("resolve begin tx failed", zap.Error(err))
		return ResolveResult{}, apperror.Transient(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	stale, err := qtx.FindByID(ctx, req.StaleRecordID)
	if err != nil {
		log.Warn("resolve find stale record failed", zap.Error(err))
		return ResolveResult{}, mapRepositoryError(err)
	}
	if !canResolveAny && stale.GuardID.String() != actorID {
		log.Warn("resolve rejected, record belongs to another guard")
		return ResolveResult{}, attendanceerrors.ErrRecordNotFound
	}
	if !stale.IsOpen() {
		return ResolveResult{}, attendanceerrors.ErrRecordAlreadyClosed
	}

	now := s.calendar.Now()
	if corrected.Before(stale.CheckInTime) || corrected.After(now) {
		log.Warn("resolve rejected checkout time",
			zap.Time("corrected_checkout_time", corrected),
			zap.Time("check_in_time", stale.CheckInTime),
		)
		return ResolveResult{}, attendanceerrors.ErrInvalidCheckoutTime
	}

	guardID := stale.GuardID.String()
	if err := qtx.LockGuard(ctx, guardID); err != nil {
		log.Error("resolve lock guard failed", zap.Error(err))
		return ResolveResult{}, apperror.Transient(err)
	}

	closed, err := qtx.Close(ctx, stale.ID.String(), StatusLateClose, corrected)
	if err != nil {
		log.Error("resolve late close failed", zap.Error(err))
		return ResolveResult{}, mapRepositoryError(err)
	}
	if !closed {
		return ResolveResult{}, attendanceerrors.ErrRecordAlreadyClosed
	}
	stale.Status = StatusLateClose
	stale.CheckOutTime = &corrected

	published := make([]events.SiteAttendanceEvent, 0, 2)
	event, err := s.enqueue(ctx, tx, stale, events.EventLateClosed, now)
	if err != nil {
		log.Error("resolve outbox failed", zap.Error(err))
		return ResolveResult{}, apperror.Transient(err)
	}
	published = append(published, event)

	result := ResolveResult{Outcome: OutcomeResolved}

	if pendingSite != uuid.Nil {
		row := &SiteAttendance{
			ID:          uuid.New(),
			GuardID:     stale.GuardID,
			SiteID:      pendingSite,
			Date:        s.calendar.Today(),
			CheckInTime: now,
			Status:      StatusCheckedIn,
		}
		if err := qtx.Create(ctx, row); err != nil {
			log.Warn("resolve check-in insert failed", zap.Error(err))
			return ResolveResult{}, mapRepositoryError(err)
		}
		row.Site = &SiteRef{ID: pendingSite, Name: req.PendingSiteName}

		event, err := s.enqueue(ctx, tx, row, events.EventCheckedIn, now)
		if err != nil {
			log.Error("resolve check-in outbox failed", zap.Error(err))
			return ResolveResult{}, apperror.Transient(err)
		}
		published = append(published, event)

		resp := mapToResponse(*row)
		result.Outcome = OutcomeResolvedAndCheckedIn
		result.CheckedIn = &resp
	}

	if err := tx.Commit(); err != nil {
		log.Error("resolve commit failed", zap.Error(err))
		return ResolveResult{}, mapRepositoryError(err)
	}
	for _, e := range published {
		s.broadcast(e)
	}

	result.Closed = mapToResponse(*stale)
	log.Info("stale session resolved", zap.String("outcome", result.Outcome))
	return result, nil
}

func (s *service) GetOpen(ctx context.Context, guardID string) (*AttendanceResponse, error) {
	if _, err := uuid.Parse(guardID); err != nil {
		return nil, attendanceerrors.ErrInvalidGuardID
	}

	row, err := s.repo.FindOpenByGuard(ctx, guardID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("get open session failed", zap.String("guard_id", guardID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	resp := mapToResponse(*row)
	return &resp, nil
}

func (s *service) GetToday(ctx context.Context, guardID string) ([]AttendanceResponse, error) {
	if _, err := uuid.Parse(guardID); err != nil {
		return nil, attendanceerrors.ErrInvalidGuardID
	}

	rows, err := s.repo.FindByGuardAndDate(ctx, guardID, s.calendar.Today())
	if err != nil {
		s.logger.Error("get today attendance failed", zap.String("guard_id", guardID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetAll(ctx context.Context, actorID string, canReadAll bool, req ListRequest) ([]AttendanceResponse, int64, error) {
	filter := ListFilter{
		GuardID:       req.GuardID,
		SiteID:        req.SiteID,
		AnomaliesOnly: req.AnomaliesOnly,
	}
	if !canReadAll {
		if _, err := uuid.Parse(actorID); err != nil {
			return nil, 0, attendanceerrors.ErrInvalidGuardID
		}
		filter.GuardID = actorID
	}

	var err error
	if filter.From, err = parseDate(req.From); err != nil {
		return nil, 0, err
	}
	if filter.To, err = parseDate(req.To); err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePage(req.Page, req.PageSize)
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	rows, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("list attendance failed", zap.Error(err))
		return nil, 0, mapRepositoryError(err)
	}
	return mapToListResponse(rows), total, nil
}

func (s *service) enqueue(
	ctx context.Context,
	tx *sql.Tx,
	row *SiteAttendance,
	eventType string,
	now time.Time,
) (events.SiteAttendanceEvent, error) {
	rid := contextutil.GetRequestID(ctx)
	event := events.SiteAttendanceEvent{
		EventType:    eventType,
		RequestID:    rid,
		RecordID:     row.ID.String(),
		GuardID:      row.GuardID.String(),
		SiteID:       row.SiteID.String(),
		SiteName:     row.SiteName(),
		Date:         businessday.Format(row.Date),
		Status:       row.Status,
		CheckInTime:  row.CheckInTime,
		CheckOutTime: row.CheckOutTime,
		OccurredAt:   now,
	}
	if s.outbox == nil {
		return event, nil
	}

	ob, err := kafka.NewOutboxEvent(rid, "site_attendance", event.RecordID, eventType, events.SiteAttendanceLifecycleTopic, event)
	if err != nil {
		return event, err
	}
	return event, s.outbox.WithTx(tx).Create(ctx, ob)
}

func (s *service) broadcast(event events.SiteAttendanceEvent) {
	if s.feed != nil {
		s.feed.Broadcast(event)
	}
}

func parseDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	d, err := time.Parse(businessday.DateLayout, v)
	if err != nil {
		return nil, attendanceerrors.ErrInvalidDateFormat
	}
	return &d, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func mapToResponse(a SiteAttendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:          a.ID.String(),
		GuardID:     a.GuardID.String(),
		SiteID:      a.SiteID.String(),
		Date:        businessday.Format(a.Date),
		CheckInTime: a.CheckInTime.UTC().Format(time.RFC3339),
		Status:      a.Status,
		Anomaly:     a.IsAnomaly(),
	}
	if a.Site != nil {
		resp.SiteName = a.Site.Name
	}
	if a.CheckOutTime != nil {
		v := a.CheckOutTime.UTC().Format(time.RFC3339)
		resp.CheckOutTime = &v
	}
	if a.AutoClosedAt != nil {
		v := a.AutoClosedAt.UTC().Format(time.RFC3339)
		resp.AutoClosedAt = &v
	}
	return resp
}

func mapToListResponse(rows []SiteAttendance) []AttendanceResponse {
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res
}
