package attendance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	GuardID       string
	SiteID        string
	From          *time.Time
	To            *time.Time
	AnomaliesOnly bool
	Limit         int
	Offset        int
}

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// LockGuard serializes scans of one guard until the surrounding transaction ends.
	LockGuard(ctx context.Context, guardID string) error
	FindOpenByGuard(ctx context.Context, guardID string) (*SiteAttendance, error)
	FindByID(ctx context.Context, id string) (*SiteAttendance, error)
	FindByGuardAndDate(ctx context.Context, guardID string, date time.Time) ([]SiteAttendance, error)
	FindAll(ctx context.Context, filter ListFilter) ([]SiteAttendance, int64, error)
	Create(ctx context.Context, a *SiteAttendance) error
	// Close moves a checked_in row to status; false means the row was no longer open.
	Close(ctx context.Context, id string, status string, checkOut time.Time) (bool, error)
	FindStaleOpen(ctx context.Context, checkedInBefore time.Time) ([]SiteAttendance, error)
	AutoClose(ctx context.Context, id string, checkOut, closedAt time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn runs statements on the bound *sql.Tx when there is one.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) LockGuard(ctx context.Context, guardID string) error {
	return r.conn(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "site_attendance:"+guardID).Error
}

func (r *repository) FindOpenByGuard(ctx context.Context, guardID string) (*SiteAttendance, error) {
	var a SiteAttendance
	err := r.conn(ctx).
		Preload("Site").
		Where("guard_id = ?", guardID).
		Where("status = ?", StatusCheckedIn).
		Order("check_in_time DESC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*SiteAttendance, error) {
	var a SiteAttendance
	err := r.conn(ctx).
		Preload("Site").
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindByGuardAndDate(ctx context.Context, guardID string, date time.Time) ([]SiteAttendance, error) {
	var rows []SiteAttendance
	err := r.conn(ctx).
		Preload("Site").
		Where("guard_id = ?", guardID).
		Where("date = ?", date.Format("2006-01-02")).
		Order("check_in_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]SiteAttendance, int64, error) {
	q := r.conn(ctx).Model(&SiteAttendance{})
	if filter.GuardID != "" {
		q = q.Where("guard_id = ?", filter.GuardID)
	}
	if filter.SiteID != "" {
		q = q.Where("site_id = ?", filter.SiteID)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", filter.From.Format("2006-01-02"))
	}
	if filter.To != nil {
		q = q.Where("date <= ?", filter.To.Format("2006-01-02"))
	}
	if filter.AnomaliesOnly {
		q = q.Where("status IN ?", []string{StatusLateClose, StatusSystemAutoClosed})
	}

	// Session lets the count and the page query share the filter without leaking clauses
	base := q.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []SiteAttendance
	err := base.Preload("Site").
		Order("date DESC, check_in_time DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) Create(ctx context.Context, a *SiteAttendance) error {
	return r.conn(ctx).Omit("Site").Create(a).Error
}

func (r *repository) Close(ctx context.Context, id string, status string, checkOut time.Time) (bool, error) {
	res := r.conn(ctx).
		Model(&SiteAttendance{}).
		Where("id = ?", id).
		Where("status = ?", StatusCheckedIn).
		Updates(map[string]any{
			"status":         status,
			"check_out_time": checkOut,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *repository) FindStaleOpen(ctx context.Context, checkedInBefore time.Time) ([]SiteAttendance, error) {
	var rows []SiteAttendance
	err := r.conn(ctx).
		Preload("Site").
		Where("status = ?", StatusCheckedIn).
		Where("check_in_time < ?", checkedInBefore).
		Order("check_in_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) AutoClose(ctx context.Context, id string, checkOut, closedAt time.Time) (bool, error) {
	res := r.conn(ctx).
		Model(&SiteAttendance{}).
		Where("id = ?", id).
		Where("status = ?", StatusCheckedIn).
		Updates(map[string]any{
			"status":         StatusSystemAutoClosed,
			"check_out_time": checkOut,
			"auto_closed_at": closedAt,
		})
	return res.RowsAffected == 1, res.Error
}
