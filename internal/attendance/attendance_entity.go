package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusCheckedIn        = "checked_in"
	StatusCheckedOut       = "checked_out"
	StatusSystemAutoClosed = "system_auto_closed"
	StatusLateClose        = "late_close"
)

const (
	ConstraintGuardSiteDate = "uq_site_attendance_guard_site_date"
	ConstraintOpenGuard     = "uq_site_attendance_open_guard"
	ConstraintSiteFK        = "fk_site_attendance_site"
)

// SiteAttendance is one guard/site/day session. At most one row per guard may be checked_in.
type SiteAttendance struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	GuardID      uuid.UUID  `gorm:"column:guard_id;type:uuid;not null;uniqueIndex:uq_site_attendance_guard_site_date,priority:1;uniqueIndex:uq_site_attendance_open_guard,where:status = 'checked_in'"`
	SiteID       uuid.UUID  `gorm:"column:site_id;type:uuid;not null;uniqueIndex:uq_site_attendance_guard_site_date,priority:2"`
	Date         time.Time  `gorm:"column:date;type:date;not null;uniqueIndex:uq_site_attendance_guard_site_date,priority:3"`
	CheckInTime  time.Time  `gorm:"column:check_in_time;type:timestamptz;not null"`
	CheckOutTime *time.Time `gorm:"column:check_out_time;type:timestamptz"`
	Status       string     `gorm:"column:status;type:varchar(32);not null;default:checked_in;index"`
	AutoClosedAt *time.Time `gorm:"column:auto_closed_at;type:timestamptz"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
	Site         *SiteRef   `gorm:"foreignKey:SiteID;references:ID"`
}

func (SiteAttendance) TableName() string {
	return "site_attendance"
}

func (a SiteAttendance) IsOpen() bool {
	return a.Status == StatusCheckedIn
}

// IsAnomaly marks rows whose checkout was set by reconciliation, not by the guard.
func (a SiteAttendance) IsAnomaly() bool {
	return a.Status == StatusLateClose || a.Status == StatusSystemAutoClosed
}

func (a SiteAttendance) SiteName() string {
	if a.Site != nil && a.Site.Name != "" {
		return a.Site.Name
	}
	return a.SiteID.String()
}

type SiteRef struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"column:name"`
}

func (SiteRef) TableName() string {
	return "sites"
}
