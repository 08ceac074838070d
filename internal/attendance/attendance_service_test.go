package attendance_test

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"go-patrol/internal/attendance"
	attendanceerrors "go-patrol/internal/attendance/errors"
	"go-patrol/internal/attendance/mock"
	"go-patrol/internal/events"
	"go-patrol/internal/messaging/kafka"
	kafkamock "go-patrol/internal/messaging/kafka/mock"
	"go-patrol/internal/shared/apperror"
	"go-patrol/internal/shared/businessday"
	"go-patrol/internal/sitecode"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

var (
	// 09:00 UTC, 18 October 2026
	fixedNow   = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	fixedToday = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
)

type attendanceServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	repo    *mock.MockRepository
	service attendance.Service
}

func setupAttendanceServiceTest(t *testing.T, policy attendance.CheckoutPolicy) *attendanceServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	repo.EXPECT().WithTx(gomock.Any()).Return(repo).AnyTimes()

	cal := businessday.New(testclock.NewClock(fixedNow), time.UTC)
	svc := attendance.NewService(db, repo, cal, policy)

	return &attendanceServiceDeps{db: db, sqlMock: sqlMock, repo: repo, service: svc}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func scanPayload(t *testing.T, siteID uuid.UUID, siteName string) attendance.ScanRequest {
	t.Helper()
	raw, err := sitecode.Encode(siteID, siteName, "")
	assert.NoError(t, err)
	return attendance.ScanRequest{Payload: string(raw)}
}

func openRecord(guardID, siteID uuid.UUID, siteName string, date, checkIn time.Time) *attendance.SiteAttendance {
	return &attendance.SiteAttendance{
		ID:          uuid.New(),
		GuardID:     guardID,
		SiteID:      siteID,
		Date:        date,
		CheckInTime: checkIn,
		Status:      attendance.StatusCheckedIn,
		Site:        &attendance.SiteRef{ID: siteID, Name: siteName},
	}
}

func TestAttendanceService_Scan_CheckInWhenNoOpenSession(t *testing.T) {
	ctx := context.Background()
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
	guardID, siteID := uuid.New(), uuid.New()

	expectTx(t, deps.sqlMock, true)
	deps.repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
	deps.repo.EXPECT().FindOpenByGuard(gomock.Any(), guardID.String()).Return(nil, gorm.ErrRecordNotFound)

	var created *attendance.SiteAttendance
	deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, a *attendance.SiteAttendance) error {
			created = a
			return nil
		})

	res, err := deps.service.Scan(ctx, guardID.String(), scanPayload(t, siteID, "Gate A"))

	assert.NoError(t, err)
	assert.Equal(t, attendance.OutcomeCheckIn, res.Outcome)
	assert.Nil(t, res.Conflict)
	if assert.NotNil(t, created) {
		assert.Equal(t, guardID, created.GuardID)
		assert.Equal(t, siteID, created.SiteID)
		assert.Equal(t, fixedToday, created.Date)
		assert.Equal(t, fixedNow, created.CheckInTime)
		assert.Equal(t, attendance.StatusCheckedIn, created.Status)
		assert.Nil(t, created.CheckOutTime)
	}
	if assert.NotNil(t, res.Record) {
		assert.Equal(t, "Gate A", res.Record.SiteName)
		assert.Equal(t, "2026-10-18", res.Record.Date)
		assert.False(t, res.Record.Anomaly)
	}
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAttendanceService_Scan_CheckOutSameSiteToday(t *testing.T) {
	ctx := context.Background()
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
	guardID, siteID := uuid.New(), uuid.New()
	open := openRecord(guardID, siteID, "Gate A", fixedToday, fixedNow.Add(-2*time.Hour))

	expectTx(t, deps.sqlMock, true)
	deps.repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
	deps.repo.EXPECT().FindOpenByGuard(gomock.Any(), guardID.String()).Return(open, nil)
	deps.repo.EXPECT().Close(gomock.Any(), open.ID.String(), attendance.StatusCheckedOut, fixedNow).Return(true, nil)
	deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	res, err := deps.service.Scan(ctx, guardID.String(), scanPayload(t, siteID, "Gate A"))

	assert.NoError(t, err)
	assert.Equal(t, attendance.OutcomeCheckOut, res.Outcome)
	if assert.NotNil(t, res.Record) {
		assert.Equal(t, attendance.StatusCheckedOut, res.Record.Status)
		assert.Equal(t, open.ID.String(), res.Record.ID)
		if assert.NotNil(t, res.Record.CheckOutTime) {
			assert.Equal(t, fixedNow.Format(time.RFC3339), *res.Record.CheckOutTime)
		}
	}
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAttendanceService_Scan_ConflictOnDifferentSite(t *testing.T) {
	ctx := context.Background()
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
	guardID, staleSite, newSite := uuid.New(), uuid.New(), uuid.New()
	open := openRecord(guardID, staleSite, "Warehouse", fixedToday.AddDate(0, 0, -1), fixedNow.Add(-20*time.Hour))

	expectTx(t, deps.sqlMock, false)
	deps.repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
	deps.repo.EXPECT().FindOpenByGuard(gomock.Any(), guardID.String()).Return(open, nil)
	deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
	deps.repo.EXPECT().Close(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	res, err := deps.service.Scan(ctx, guardID.String(), scanPayload(t, newSite, "Lobby"))

	assert.NoError(t, err)
	assert.Equal(t, attendance.OutcomeConflict, res.Outcome)
	assert.Nil(t, res.Record)
	if assert.NotNil(t, res.Conflict) {
		assert.Equal(t, open.ID.String(), res.Conflict.StaleRecordID)
		assert.Equal(t, staleSite.String(), res.Conflict.StaleSiteID)
		assert.Equal(t, "Warehouse", res.Conflict.StaleSiteName)
		assert.Equal(t, newSite.String(), res.Conflict.PendingSiteID)
		assert.Equal(t, "Lobby", res.Conflict.PendingSiteName)
		// 20:00 on the previous day
		assert.Equal(t, "2026-10-17T20:00:00Z", res.Conflict.SuggestedCheckoutTime)
	}
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAttendanceService_Scan_SuggestedCheckoutNeverBeforeCheckIn(t *testing.T) {
	ctx := context.Background()
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
	guardID := uuid.New()
	checkIn := time.Date(2026, 10, 17, 22, 0, 0, 0, time.UTC)
	open := openRecord(guardID, uuid.New(), "Warehouse", fixedToday.AddDate(0, 0, -1), checkIn)

	expectTx(t, deps.sqlMock, false)
	deps.repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
	deps.repo.EXPECT().FindOpenByGuard(gomock.Any(), guardID.String()).Return(open, nil)

	res, err := deps.service.Scan(ctx, guardID.String(), scanPayload(t, uuid.New(), "Lobby"))

	assert.NoError(t, err)
	if assert.NotNil(t, res.Conflict) {
		assert.Equal(t, checkIn.Format(time.RFC3339), res.Conflict.SuggestedCheckoutTime)
	}
}

func TestAttendanceService_Scan_SessionAcrossMidnight(t *testing.T) {
	tests := []struct {
		name        string
		policy      attendance.CheckoutPolicy
		wantOutcome string
	}{
		{"strict today treats it as a conflict", attendance.CheckoutStrictToday, attendance.OutcomeConflict},
		{"any open treats it as a checkout", attendance.CheckoutAnyOpen, attendance.OutcomeCheckOut},
		{"empty policy defaults to strict today", "", attendance.OutcomeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			deps := setupAttendanceServiceTest(t, tt.policy)
			guardID, siteID := uuid.New(), uuid.New()
			open := openRecord(guardID, siteID, "Gate A", fixedToday.AddDate(0, 0, -1), fixedNow.Add(-10*time.Hour))

			deps.repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
			deps.repo.EXPECT().FindOpenByGuard(gomock.Any(), guardID.String()).Return(open, nil)
			if tt.wantOutcome == attendance.OutcomeCheckOut {
				expectTx(t, deps.sqlMock, true)
				deps.repo.EXPECT().Close(gomock.Any(), open.ID.String(), attendance.StatusCheckedOut, fixedNow).Return(true, nil)
			} else {
				expectTx(t, deps.sqlMock, false)
			}

			res, err := deps.service.Scan(ctx, guardID.String(), scanPayload(t, siteID, "Gate A"))

			assert.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		})
	}
}

func TestAttendanceService_Scan_InvalidPayloadTouchesNoStorage(t *testing.T) {
	payloads := []string{
		"",
		"not json",
		`{"type":"visitor_pass","site_id":"` + uuid.NewString() + `"}`,
		`{"type":"site_checkin"}`,
		`{"type":"site_checkin","site_id":"gate-a"}`,
		`[1,2,3]`,
	}

	for _, raw := range payloads {
		t.Run(raw, func(t *testing.T) {
			// no expectations: any Begin or repository call fails the test
			deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)

			_, err := deps.service.Scan(context.Background(), uuid.NewString(), attendance.ScanRequest{Payload: raw})

			assert.ErrorIs(t, err, attendanceerrors.ErrInvalidCode)
			assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		})
	}
}

func TestAttendanceService_Scan_DuplicateCheckInLooksLikeInvalidCode(t *testing.T) {
	ctx := context.Background()
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
	guardID := uuid.New()

	expectTx(t, deps.sqlMock, false)
	deps.repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
	deps.repo.EXPECT().FindOpenByGuard(gomock.Any(), guardID.String()).Return(nil, gorm.ErrRecordNotFound)
	deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&pgconn.PgError{
		Code:           "23505",
		ConstraintName: attendance.ConstraintGuardSiteDate,
	})

	_, err := deps.service.Scan(ctx, guardID.String(), scanPayload(t, uuid.New(), "Gate A"))

	assert.ErrorIs(t, err, attendanceerrors.ErrDuplicateCheckIn)
	assert.NotErrorIs(t, err, attendanceerrors.ErrInvalidCode)

	httpErr := apperror.ToHTTP(err)
	invalid := apperror.ToHTTP(attendanceerrors.ErrInvalidCode)
	assert.Equal(t, invalid.Message, httpErr.Message)
	assert.Equal(t, invalid.Code, httpErr.Code)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAttendanceService_Scan_ConcurrentOpenSessionRejected(t *testing.T) {
	ctx := context.Background()
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
	guardID := uuid.New()

	expectTx(t, deps.sqlMock, false)
	deps.repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
	deps.repo.EXPECT().FindOpenByGuard(gomock.Any(), guardID.String()).Return(nil, gorm.ErrRecordNotFound)
	deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&pgconn.PgError{
		Code:           "23505",
		ConstraintName: attendance.ConstraintOpenGuard,
	})

	_, err := deps.service.Scan(ctx, guardID.String(), scanPayload(t, uuid.New(), "Gate A"))

	assert.ErrorIs(t, err, attendanceerrors.ErrSessionAlreadyOpen)
}

func TestAttendanceService_Scan_UnknownSite(t *testing.T) {
	ctx := context.Background()
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
	guardID := uuid.New()

	expectTx(t, deps.sqlMock, false)
	deps.repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
	deps.repo.EXPECT().FindOpenByGuard(gomock.Any(), guardID.String()).Return(nil, gorm.ErrRecordNotFound)
	deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&pgconn.PgError{
		Code:           "23503",
		ConstraintName: attendance.ConstraintSiteFK,
	})

	_, err := deps.service.Scan(ctx, guardID.String(), scanPayload(t, uuid.New(), "Gate A"))

	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidCode)
}

func TestAttendanceService_Scan_CheckoutLostRace(t *testing.T) {
	ctx := context.Background()
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
	guardID, siteID := uuid.New(), uuid.New()
	open := openRecord(guardID, siteID, "Gate A", fixedToday, fixedNow.Add(-time.Hour))

	expectTx(t, deps.sqlMock, false)
	deps.repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
	deps.repo.EXPECT().FindOpenByGuard(gomock.Any(), guardID.String()).Return(open, nil)
	deps.repo.EXPECT().Close(gomock.Any(), open.ID.String(), attendance.StatusCheckedOut, fixedNow).Return(false, nil)

	_, err := deps.service.Scan(ctx, guardID.String(), scanPayload(t, siteID, "Gate A"))

	assert.ErrorIs(t, err, attendanceerrors.ErrSessionChanged)
}

func TestAttendanceService_Scan_StorageFailureIsTransient(t *testing.T) {
	ctx := context.Background()
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
	guardID := uuid.New()

	expectTx(t, deps.sqlMock, false)
	deps.repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
	deps.repo.EXPECT().FindOpenByGuard(gomock.Any(), guardID.String()).Return(nil, errors.New("connection reset by peer"))

	_, err := deps.service.Scan(ctx, guardID.String(), scanPayload(t, uuid.New(), "Gate A"))

	httpErr := apperror.ToHTTP(err)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)
	assert.Equal(t, apperror.CodeServiceUnavailable, httpErr.Code)
	assert.Equal(t, "connection reset by peer", httpErr.Details)
}

func TestAttendanceService_Scan_BeginFailureIsTransient(t *testing.T) {
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
	deps.sqlMock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	_, err := deps.service.Scan(context.Background(), uuid.NewString(), scanPayload(t, uuid.New(), "Gate A"))

	assert.Equal(t, http.StatusServiceUnavailable, apperror.ToHTTP(err).Status)
}

func TestAttendanceService_Scan_InvalidGuardID(t *testing.T) {
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)

	_, err := deps.service.Scan(context.Background(), "", scanPayload(t, uuid.New(), "Gate A"))

	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidGuardID)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAttendanceService_Scan_WritesOutboxAndBroadcasts(t *testing.T) {
	ctx := context.Background()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	outbox := kafkamock.NewMockOutboxRepository(ctrl)
	feed := mock.NewMockLiveFeed(ctrl)

	cal := businessday.New(testclock.NewClock(fixedNow), time.UTC)
	svc := attendance.NewServiceWithOutbox(db, repo, outbox, feed, cal, attendance.CheckoutStrictToday)

	guardID, siteID := uuid.New(), uuid.New()

	expectTx(t, sqlMock, true)
	repo.EXPECT().WithTx(gomock.Any()).Return(repo)
	repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
	repo.EXPECT().FindOpenByGuard(gomock.Any(), guardID.String()).Return(nil, gorm.ErrRecordNotFound)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	var queued kafka.OutboxEvent
	outbox.EXPECT().WithTx(gomock.Any()).Return(outbox)
	outbox.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, event kafka.OutboxEvent) error {
			queued = event
			return nil
		})

	var broadcast events.SiteAttendanceEvent
	feed.EXPECT().Broadcast(gomock.Any()).Do(func(event events.SiteAttendanceEvent) {
		broadcast = event
	})

	res, err := svc.Scan(ctx, guardID.String(), scanPayload(t, siteID, "Gate A"))

	assert.NoError(t, err)
	assert.Equal(t, events.EventCheckedIn, queued.EventType)
	assert.Equal(t, events.SiteAttendanceLifecycleTopic, queued.Topic)
	assert.Equal(t, res.Record.ID, queued.AggregateID)
	assert.Equal(t, events.EventCheckedIn, broadcast.EventType)
	assert.Equal(t, "Gate A", broadcast.SiteName)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestAttendanceService_Resolve(t *testing.T) {
	guardID := uuid.New()
	staleCheckIn := time.Date(2026, 10, 17, 7, 0, 0, 0, time.UTC)
	corrected := "2026-10-17T20:00:00Z"
	correctedTime := time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC)

	t.Run("closes without new check-in", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
		stale := openRecord(guardID, uuid.New(), "Warehouse", fixedToday.AddDate(0, 0, -1), staleCheckIn)

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().FindByID(gomock.Any(), stale.ID.String()).Return(stale, nil)
		deps.repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
		deps.repo.EXPECT().Close(gomock.Any(), stale.ID.String(), attendance.StatusLateClose, correctedTime).Return(true, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

		res, err := deps.service.Resolve(context.Background(), guardID.String(), false, attendance.ResolveRequest{
			StaleRecordID:         stale.ID.String(),
			CorrectedCheckoutTime: corrected,
		})

		assert.NoError(t, err)
		assert.Equal(t, attendance.OutcomeResolved, res.Outcome)
		assert.Nil(t, res.CheckedIn)
		assert.Equal(t, attendance.StatusLateClose, res.Closed.Status)
		assert.True(t, res.Closed.Anomaly)
		if assert.NotNil(t, res.Closed.CheckOutTime) {
			assert.Equal(t, corrected, *res.Closed.CheckOutTime)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("closes and checks in at pending site", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
		stale := openRecord(guardID, uuid.New(), "Warehouse", fixedToday.AddDate(0, 0, -1), staleCheckIn)
		pendingSite := uuid.New()

		var created *attendance.SiteAttendance
		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().FindByID(gomock.Any(), stale.ID.String()).Return(stale, nil)
		deps.repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
		deps.repo.EXPECT().Close(gomock.Any(), stale.ID.String(), attendance.StatusLateClose, correctedTime).Return(true, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, a *attendance.SiteAttendance) error {
				created = a
				return nil
			})

		res, err := deps.service.Resolve(context.Background(), guardID.String(), false, attendance.ResolveRequest{
			StaleRecordID:         stale.ID.String(),
			CorrectedCheckoutTime: corrected,
			PendingSiteID:         pendingSite.String(),
			PendingSiteName:       "Lobby",
		})

		assert.NoError(t, err)
		assert.Equal(t, attendance.OutcomeResolvedAndCheckedIn, res.Outcome)
		if assert.NotNil(t, created) {
			assert.Equal(t, guardID, created.GuardID)
			assert.Equal(t, pendingSite, created.SiteID)
			assert.Equal(t, fixedToday, created.Date)
			assert.Equal(t, fixedNow, created.CheckInTime)
			assert.Equal(t, attendance.StatusCheckedIn, created.Status)
		}
		if assert.NotNil(t, res.CheckedIn) {
			assert.Equal(t, "Lobby", res.CheckedIn.SiteName)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back the close", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
		stale := openRecord(guardID, uuid.New(), "Warehouse", fixedToday.AddDate(0, 0, -1), staleCheckIn)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().FindByID(gomock.Any(), stale.ID.String()).Return(stale, nil)
		deps.repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
		deps.repo.EXPECT().Close(gomock.Any(), stale.ID.String(), attendance.StatusLateClose, correctedTime).Return(true, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := deps.service.Resolve(context.Background(), guardID.String(), false, attendance.ResolveRequest{
			StaleRecordID:         stale.ID.String(),
			CorrectedCheckoutTime: corrected,
			PendingSiteID:         uuid.NewString(),
		})

		assert.Equal(t, http.StatusServiceUnavailable, apperror.ToHTTP(err).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestAttendanceService_Resolve_Rejections(t *testing.T) {
	guardID := uuid.New()
	staleCheckIn := time.Date(2026, 10, 17, 7, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		actorID   string
		canAny    bool
		record    func() *attendance.SiteAttendance
		corrected string
		wantErr   error
	}{
		{
			name:    "checkout before check-in",
			actorID: guardID.String(),
			record: func() *attendance.SiteAttendance {
				return openRecord(guardID, uuid.New(), "Warehouse", fixedToday.AddDate(0, 0, -1), staleCheckIn)
			},
			corrected: "2026-10-17T06:59:00Z",
			wantErr:   attendanceerrors.ErrInvalidCheckoutTime,
		},
		{
			name:    "checkout in the future",
			actorID: guardID.String(),
			record: func() *attendance.SiteAttendance {
				return openRecord(guardID, uuid.New(), "Warehouse", fixedToday.AddDate(0, 0, -1), staleCheckIn)
			},
			corrected: "2026-10-18T10:00:00Z",
			wantErr:   attendanceerrors.ErrInvalidCheckoutTime,
		},
		{
			name:    "record already closed",
			actorID: guardID.String(),
			record: func() *attendance.SiteAttendance {
				r := openRecord(guardID, uuid.New(), "Warehouse", fixedToday.AddDate(0, 0, -1), staleCheckIn)
				r.Status = attendance.StatusSystemAutoClosed
				return r
			},
			corrected: "2026-10-17T20:00:00Z",
			wantErr:   attendanceerrors.ErrRecordAlreadyClosed,
		},
		{
			name:    "record of another guard",
			actorID: uuid.NewString(),
			record: func() *attendance.SiteAttendance {
				return openRecord(guardID, uuid.New(), "Warehouse", fixedToday.AddDate(0, 0, -1), staleCheckIn)
			},
			corrected: "2026-10-17T20:00:00Z",
			wantErr:   attendanceerrors.ErrRecordNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
			stale := tt.record()

			expectTx(t, deps.sqlMock, false)
			deps.repo.EXPECT().FindByID(gomock.Any(), stale.ID.String()).Return(stale, nil)
			deps.repo.EXPECT().Close(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			_, err := deps.service.Resolve(context.Background(), tt.actorID, tt.canAny, attendance.ResolveRequest{
				StaleRecordID:         stale.ID.String(),
				CorrectedCheckoutTime: tt.corrected,
			})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		})
	}
}

func TestAttendanceService_Resolve_SupervisorMayResolveAnyGuard(t *testing.T) {
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
	guardID := uuid.New()
	stale := openRecord(guardID, uuid.New(), "Warehouse", fixedToday.AddDate(0, 0, -1), fixedNow.Add(-20*time.Hour))

	expectTx(t, deps.sqlMock, true)
	deps.repo.EXPECT().FindByID(gomock.Any(), stale.ID.String()).Return(stale, nil)
	deps.repo.EXPECT().LockGuard(gomock.Any(), guardID.String()).Return(nil)
	deps.repo.EXPECT().Close(gomock.Any(), stale.ID.String(), attendance.StatusLateClose, gomock.Any()).Return(true, nil)

	res, err := deps.service.Resolve(context.Background(), uuid.NewString(), true, attendance.ResolveRequest{
		StaleRecordID:         stale.ID.String(),
		CorrectedCheckoutTime: "2026-10-17T20:00:00+07:00",
	})

	assert.NoError(t, err)
	assert.Equal(t, attendance.OutcomeResolved, res.Outcome)
	if assert.NotNil(t, res.Closed.CheckOutTime) {
		assert.Equal(t, "2026-10-17T13:00:00Z", *res.Closed.CheckOutTime)
	}
}

func TestAttendanceService_Resolve_BadInputTouchesNoStorage(t *testing.T) {
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)

	_, err := deps.service.Resolve(context.Background(), uuid.NewString(), false, attendance.ResolveRequest{
		StaleRecordID:         uuid.NewString(),
		CorrectedCheckoutTime: "yesterday evening",
	})
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidCheckoutTime)

	_, err = deps.service.Resolve(context.Background(), uuid.NewString(), false, attendance.ResolveRequest{
		StaleRecordID:         uuid.NewString(),
		CorrectedCheckoutTime: "2026-10-17T20:00:00Z",
		PendingSiteID:         "lobby",
	})
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidPendingSite)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAttendanceService_GetOpen(t *testing.T) {
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
	guardID := uuid.New()
	open := openRecord(guardID, uuid.New(), "Gate A", fixedToday, fixedNow.Add(-time.Hour))

	deps.repo.EXPECT().FindOpenByGuard(gomock.Any(), guardID.String()).Return(open, nil)
	resp, err := deps.service.GetOpen(context.Background(), guardID.String())
	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, open.ID.String(), resp.ID)
	}

	deps.repo.EXPECT().FindOpenByGuard(gomock.Any(), guardID.String()).Return(nil, gorm.ErrRecordNotFound)
	resp, err = deps.service.GetOpen(context.Background(), guardID.String())
	assert.NoError(t, err)
	assert.Nil(t, resp)
}

func TestAttendanceService_GetToday(t *testing.T) {
	deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
	guardID := uuid.New()
	rows := []attendance.SiteAttendance{
		*openRecord(guardID, uuid.New(), "Gate A", fixedToday, fixedNow.Add(-time.Hour)),
	}

	deps.repo.EXPECT().FindByGuardAndDate(gomock.Any(), guardID.String(), fixedToday).Return(rows, nil)

	resp, err := deps.service.GetToday(context.Background(), guardID.String())
	assert.NoError(t, err)
	assert.Len(t, resp, 1)
}

func TestAttendanceService_GetAll(t *testing.T) {
	actorID := uuid.New()

	t.Run("guard only sees own records", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)

		deps.repo.EXPECT().FindAll(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, f attendance.ListFilter) ([]attendance.SiteAttendance, int64, error) {
				assert.Equal(t, actorID.String(), f.GuardID)
				assert.True(t, f.AnomaliesOnly)
				assert.Equal(t, 20, f.Limit)
				assert.Equal(t, 20, f.Offset)
				if assert.NotNil(t, f.From) {
					assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), *f.From)
				}
				assert.Nil(t, f.To)
				return nil, 0, nil
			})

		_, total, err := deps.service.GetAll(context.Background(), actorID.String(), false, attendance.ListRequest{
			GuardID:       uuid.NewString(),
			From:          "2026-10-01",
			AnomaliesOnly: true,
			Page:          2,
			PageSize:      20,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("supervisor filters by any guard", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)
		other := uuid.NewString()

		deps.repo.EXPECT().FindAll(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, f attendance.ListFilter) ([]attendance.SiteAttendance, int64, error) {
				assert.Equal(t, other, f.GuardID)
				assert.Equal(t, 10, f.Limit)
				assert.Equal(t, 0, f.Offset)
				return []attendance.SiteAttendance{{ID: uuid.New(), Status: attendance.StatusSystemAutoClosed}}, 1, nil
			})

		resp, total, err := deps.service.GetAll(context.Background(), actorID.String(), true, attendance.ListRequest{GuardID: other})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.True(t, resp[0].Anomaly)
	})

	t.Run("bad date", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t, attendance.CheckoutStrictToday)

		_, _, err := deps.service.GetAll(context.Background(), actorID.String(), true, attendance.ListRequest{To: "18/10/2026"})
		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidDateFormat)
	})
}
