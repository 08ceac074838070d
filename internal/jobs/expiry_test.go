package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-patrol/internal/notice"
	"go-patrol/internal/profile"
	"go-patrol/internal/shared/businessday"

	"github.com/google/uuid"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var expiryNow = time.Date(2026, 10, 18, 1, 0, 0, 0, time.UTC)

type fakeProfiles struct {
	expiringPermits   []profile.Profile
	expiringPassports []profile.Profile
	expiredPermits    []profile.Profile
	failOn            string

	permitRange   [2]time.Time
	passportRange [2]time.Time
	expiredBefore time.Time
}

func (f *fakeProfiles) FindWorkPermitsExpiringBetween(ctx context.Context, from, to time.Time) ([]profile.Profile, error) {
	f.permitRange = [2]time.Time{from, to}
	if f.failOn == "permits" {
		return nil, errors.New("query canceled")
	}
	return f.expiringPermits, nil
}

func (f *fakeProfiles) FindPassportsExpiringBetween(ctx context.Context, from, to time.Time) ([]profile.Profile, error) {
	f.passportRange = [2]time.Time{from, to}
	if f.failOn == "passports" {
		return nil, errors.New("query canceled")
	}
	return f.expiringPassports, nil
}

func (f *fakeProfiles) FindWorkPermitsExpiredBefore(ctx context.Context, date time.Time) ([]profile.Profile, error) {
	f.expiredBefore = date
	if f.failOn == "expired" {
		return nil, errors.New("query canceled")
	}
	return f.expiredPermits, nil
}

type fakeNotices struct {
	created []notice.Notice
	err     error
}

func (f *fakeNotices) Create(ctx context.Context, n *notice.Notice) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *n)
	return nil
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newMonitor(p ProfileStore, n NoticeStore) *ExpiryMonitor {
	cal := businessday.New(testclock.NewClock(expiryNow), time.UTC)
	return NewExpiryMonitor(p, n, cal, zap.NewNop())
}

func TestExpiryMonitor_CreatesOneAggregatedNotice(t *testing.T) {
	profiles := &fakeProfiles{
		expiringPermits: []profile.Profile{
			{ID: uuid.New(), FullName: "Ana Reyes", EmployeeID: "EMP-7", WorkPermitExpiryDate: datePtr(2026, 11, 1)},
		},
		expiredPermits: []profile.Profile{
			{ID: uuid.New(), FullName: "Ko Min", EmployeeID: "EMP-9", WorkPermitExpiryDate: datePtr(2026, 10, 1)},
			{ID: uuid.New(), FullName: "Raj Patel", EmployeeID: "EMP-12", WorkPermitExpiryDate: datePtr(2026, 9, 30)},
		},
	}
	notices := &fakeNotices{}

	res, err := newMonitor(profiles, notices).Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, res.ExpiringPermits)
	assert.Equal(t, 0, res.ExpiringPassports)
	assert.Equal(t, 2, res.ExpiredPermits)
	assert.Equal(t, 1, res.NoticesCreated)

	today := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, [2]time.Time{today, today.AddDate(0, 0, 30)}, profiles.permitRange)
	assert.Equal(t, [2]time.Time{today, today.AddDate(0, 0, 30)}, profiles.passportRange)
	assert.Equal(t, today, profiles.expiredBefore)

	if assert.Len(t, notices.created, 1) {
		n := notices.created[0]
		assert.Contains(t, n.Title, "2026-10-18")
		assert.Equal(t, notice.PriorityHigh, n.Priority)
		assert.Equal(t, []string{"admin", "manager"}, []string(n.TargetRoles))
		assert.Equal(t, expiryNow, n.StartDate)
		assert.Equal(t, expiryNow.AddDate(0, 0, 7), n.EndDate)

		assert.Contains(t, n.Content, "Work permits expiring within 30 days (1):")
		assert.Contains(t, n.Content, "- Ana Reyes (EMP-7): 2026-11-01")
		assert.Contains(t, n.Content, "Expired work permits (2):")
		assert.Contains(t, n.Content, "- Raj Patel (EMP-12): 2026-09-30")
		assert.NotContains(t, n.Content, "Passports")
	}
}

func TestExpiryMonitor_NoNoticeWhenNothingExpires(t *testing.T) {
	notices := &fakeNotices{}

	res, err := newMonitor(&fakeProfiles{}, notices).Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, res.NoticesCreated)
	assert.Empty(t, notices.created)
}

func TestExpiryMonitor_RepeatedRunsAreNotDeduplicated(t *testing.T) {
	profiles := &fakeProfiles{
		expiringPassports: []profile.Profile{
			{ID: uuid.New(), FullName: "Ana Reyes", EmployeeID: "EMP-7", PassportExpiryDate: datePtr(2026, 10, 20)},
		},
	}
	notices := &fakeNotices{}
	monitor := newMonitor(profiles, notices)

	_, err := monitor.Run(context.Background())
	assert.NoError(t, err)
	_, err = monitor.Run(context.Background())
	assert.NoError(t, err)

	assert.Len(t, notices.created, 2)
}

func TestExpiryMonitor_QueryFailureAbortsWithoutNotice(t *testing.T) {
	for _, failOn := range []string{"permits", "passports", "expired"} {
		t.Run(failOn, func(t *testing.T) {
			profiles := &fakeProfiles{
				failOn:          failOn,
				expiringPermits: []profile.Profile{{FullName: "Ana Reyes"}},
			}
			notices := &fakeNotices{}

			_, err := newMonitor(profiles, notices).Run(context.Background())

			var abort *JobAbortError
			assert.ErrorAs(t, err, &abort)
			assert.Empty(t, notices.created)
		})
	}
}

func TestExpiryMonitor_NoticeInsertFailure(t *testing.T) {
	profiles := &fakeProfiles{expiredPermits: []profile.Profile{{FullName: "Ko Min"}}}
	notices := &fakeNotices{err: errors.New("insert failed")}

	res, err := newMonitor(profiles, notices).Run(context.Background())

	assert.EqualError(t, err, "insert failed")
	assert.Equal(t, 0, res.NoticesCreated)
}
