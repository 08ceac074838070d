package events

import "time"

const SiteAttendanceLifecycleTopic = "patrol.site_attendance.lifecycle.v1"

const (
	EventCheckedIn        = "site_attendance.checked_in"
	EventCheckedOut       = "site_attendance.checked_out"
	EventLateClosed       = "site_attendance.late_closed"
	EventSystemAutoClosed = "site_attendance.system_auto_closed"
)

type SiteAttendanceEvent struct {
	EventType    string     `json:"event_type"`
	RequestID    string     `json:"request_id,omitempty"`
	RecordID     string     `json:"record_id"`
	GuardID      string     `json:"guard_id"`
	SiteID       string     `json:"site_id"`
	SiteName     string     `json:"site_name,omitempty"`
	Date         string     `json:"date"`
	Status       string     `json:"status"`
	CheckInTime  time.Time  `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

// IsAnomaly reports whether the checkout was set by a reconciliation path rather than the guard.
func (e SiteAttendanceEvent) IsAnomaly() bool {
	return e.EventType == EventLateClosed || e.EventType == EventSystemAutoClosed
}
