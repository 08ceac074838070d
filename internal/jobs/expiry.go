package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-patrol/internal/notice"
	"go-patrol/internal/profile"
	"go-patrol/internal/shared/businessday"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	ExpiryJobName = "check-permit-expiry"

	ExpiryWarningDays = 30
	NoticeValidDays   = 7
)

var expiryNoticeRoles = []string{"admin", "manager"}

type ProfileStore interface {
	FindWorkPermitsExpiringBetween(ctx context.Context, from, to time.Time) ([]profile.Profile, error)
	FindPassportsExpiringBetween(ctx context.Context, from, to time.Time) ([]profile.Profile, error)
	FindWorkPermitsExpiredBefore(ctx context.Context, date time.Time) ([]profile.Profile, error)
}

type NoticeStore interface {
	Create(ctx context.Context, n *notice.Notice) error
}

type ExpiryResult struct {
	Message           string `json:"message"`
	ExpiringPermits   int    `json:"expiring_permits"`
	ExpiringPassports int    `json:"expiring_passports"`
	ExpiredPermits    int    `json:"expired_permits"`
	NoticesCreated    int    `json:"notices_created"`
}

// ExpiryMonitor raises one aggregated notice per run about foreign employees' documents.
// Runs are not deduplicated: two runs on the same day create two notices.
type ExpiryMonitor struct {
	profiles ProfileStore
	notices  NoticeStore
	calendar *businessday.Calendar
	logger   *zap.Logger
}

func NewExpiryMonitor(profiles ProfileStore, notices NoticeStore, calendar *businessday.Calendar, logger *zap.Logger) *ExpiryMonitor {
	return &ExpiryMonitor{
		profiles: profiles,
		notices:  notices,
		calendar: calendar,
		logger:   logger.Named("jobs.expiry"),
	}
}

func (m *ExpiryMonitor) Name() string {
	return ExpiryJobName
}

func (m *ExpiryMonitor) Run(ctx context.Context) (ExpiryResult, error) {
	today := m.calendar.Today()
	horizon := today.AddDate(0, 0, ExpiryWarningDays)

	expiringPermits, err := m.profiles.FindWorkPermitsExpiringBetween(ctx, today, horizon)
	if err != nil {
		return ExpiryResult{}, m.abort("work permits expiring", err)
	}
	expiringPassports, err := m.profiles.FindPassportsExpiringBetween(ctx, today, horizon)
	if err != nil {
		return ExpiryResult{}, m.abort("passports expiring", err)
	}
	expiredPermits, err := m.profiles.FindWorkPermitsExpiredBefore(ctx, today)
	if err != nil {
		return ExpiryResult{}, m.abort("work permits expired", err)
	}

	res := ExpiryResult{
		Message:           "Document expiry check completed",
		ExpiringPermits:   len(expiringPermits),
		ExpiringPassports: len(expiringPassports),
		ExpiredPermits:    len(expiredPermits),
	}

	content := buildExpiryReport(expiringPermits, expiringPassports, expiredPermits)
	if content == "" {
		m.logger.Info("no expiring documents")
		return res, nil
	}

	now := m.calendar.Now()
	n := &notice.Notice{
		ID:          uuid.New(),
		Title:       "Document Expiry Alert - " + businessday.Format(today),
		Content:     content,
		Priority:    notice.PriorityHigh,
		Status:      notice.StatusActive,
		TargetRoles: pq.StringArray(expiryNoticeRoles),
		StartDate:   now,
		EndDate:     now.AddDate(0, 0, NoticeValidDays),
	}
	if err := m.notices.Create(ctx, n); err != nil {
		m.logger.Error("create expiry notice failed", zap.Error(err))
		return ExpiryResult{}, err
	}
	res.NoticesCreated = 1

	m.logger.Info("expiry notice created",
		zap.String("notice_id", n.ID.String()),
		zap.Int("expiring_permits", res.ExpiringPermits),
		zap.Int("expiring_passports", res.ExpiringPassports),
		zap.Int("expired_permits", res.ExpiredPermits),
	)
	return res, nil
}

func (m *ExpiryMonitor) abort(query string, err error) error {
	m.logger.Error("expiry query failed", zap.String("query", query), zap.Error(err))
	return &JobAbortError{Job: ExpiryJobName, Err: fmt.Errorf("%s: %w", query, err)}
}

// buildExpiryReport returns "" when every set is empty.
func buildExpiryReport(expiringPermits, expiringPassports, expiredPermits []profile.Profile) string {
	var sections []string

	section := func(title string, rows []profile.Profile, expiry func(profile.Profile) *time.Time) {
		if len(rows) == 0 {
			return
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s (%d):\n", title, len(rows))
		for _, p := range rows {
			date := "-"
			if d := expiry(p); d != nil {
				date = businessday.Format(*d)
			}
			fmt.Fprintf(&b, "- %s (%s): %s\n", p.FullName, p.EmployeeID, date)
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}

	workPermit := func(p profile.Profile) *time.Time { return p.WorkPermitExpiryDate }
	passport := func(p profile.Profile) *time.Time { return p.PassportExpiryDate }

	section("Work permits expiring within 30 days", expiringPermits, workPermit)
	section("Passports expiring within 30 days", expiringPassports, passport)
	section("Expired work permits", expiredPermits, workPermit)

	return strings.Join(sections, "\n\n")
}
