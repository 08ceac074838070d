package attendance

const (
	OutcomeCheckIn              = "check_in"
	OutcomeCheckOut             = "check_out"
	OutcomeConflict             = "conflict"
	OutcomeResolved             = "resolved"
	OutcomeResolvedAndCheckedIn = "resolved_and_checked_in"
)

type ScanRequest struct {
	// Raw text decoded from the QR code.
	Payload string `json:"payload" binding:"required"`
}

type ScanResult struct {
	Outcome  string              `json:"outcome"`
	Record   *AttendanceResponse `json:"record,omitempty"`
	Conflict *ConflictResponse   `json:"conflict,omitempty"`
}

type ConflictResponse struct {
	StaleRecordID         string `json:"stale_record_id"`
	StaleSiteID           string `json:"stale_site_id"`
	StaleSiteName         string `json:"stale_site_name"`
	StaleCheckInTime      string `json:"stale_check_in_time"`
	PendingSiteID         string `json:"pending_site_id"`
	PendingSiteName       string `json:"pending_site_name"`
	SuggestedCheckoutTime string `json:"suggested_checkout_time"`
}

type ResolveRequest struct {
	StaleRecordID         string `json:"stale_record_id" binding:"required,uuid"`
	CorrectedCheckoutTime string `json:"corrected_checkout_time" binding:"required"`
	PendingSiteID         string `json:"pending_site_id" binding:"omitempty,uuid"`
	PendingSiteName       string `json:"pending_site_name"`
}

type ResolveResult struct {
	Outcome   string              `json:"outcome"`
	Closed    AttendanceResponse  `json:"closed"`
	CheckedIn *AttendanceResponse `json:"checked_in,omitempty"`
}

type ListRequest struct {
	GuardID       string `form:"guard_id" binding:"omitempty,uuid"`
	SiteID        string `form:"site_id" binding:"omitempty,uuid"`
	From          string `form:"from"`
	To            string `form:"to"`
	AnomaliesOnly bool   `form:"anomalies_only"`
	Page          int    `form:"page"`
	PageSize      int    `form:"page_size"`
}

type AttendanceResponse struct {
	ID           string  `json:"id"`
	GuardID      string  `json:"guard_id"`
	SiteID       string  `json:"site_id"`
	SiteName     string  `json:"site_name,omitempty"`
	Date         string  `json:"date"`
	CheckInTime  string  `json:"check_in_time"`
	CheckOutTime *string `json:"check_out_time,omitempty"`
	Status       string  `json:"status"`
	AutoClosedAt *string `json:"auto_closed_at,omitempty"`
	Anomaly      bool    `json:"anomaly"`
}
