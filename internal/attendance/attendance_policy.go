package attendance

import (
	"fmt"

	"go-patrol/internal/shared/businessday"
)

// CheckoutPolicy decides whether a same-site scan over an open session is a checkout.
type CheckoutPolicy string

const (
	// CheckoutStrictToday only accepts an open session dated today. A session opened
	// before midnight and scanned again after it becomes a conflict.
	CheckoutStrictToday CheckoutPolicy = "strict_today"
	// CheckoutAnyOpen accepts any open session at the scanned site, whatever its date.
	CheckoutAnyOpen CheckoutPolicy = "any_open"
)

func ParseCheckoutPolicy(v string) (CheckoutPolicy, error) {
	switch p := CheckoutPolicy(v); p {
	case CheckoutStrictToday, CheckoutAnyOpen:
		return p, nil
	case "":
		return CheckoutStrictToday, nil
	default:
		return "", fmt.Errorf("unknown checkout policy %q", v)
	}
}

func (p CheckoutPolicy) isCheckout(open *SiteAttendance, scannedSiteID string, cal *businessday.Calendar) bool {
	if open == nil || !open.IsOpen() || open.SiteID.String() != scannedSiteID {
		return false
	}
	if p == CheckoutAnyOpen {
		return true
	}
	return cal.IsToday(open.Date)
}
