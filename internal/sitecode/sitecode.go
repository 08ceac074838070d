// Package sitecode encodes and decodes the JSON carried by a site's check-in QR code:
//
//	{"type":"site_checkin","site_id":"<uuid>","site_name":"<string>","code":"<optional>"}
package sitecode

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const TypeSiteCheckIn = "site_checkin"

// Anything longer is not one of our codes.
const maxPayloadBytes = 2048

var ErrInvalidPayload = errors.New("sitecode: not a site check-in code")

type Payload struct {
	Type     string `json:"type"`
	SiteID   string `json:"site_id"`
	SiteName string `json:"site_name"`
	Code     string `json:"code,omitempty"`
}

// SiteUUID is only valid on a Payload returned by Parse.
func (p Payload) SiteUUID() uuid.UUID {
	return uuid.MustParse(p.SiteID)
}

func Parse(raw string) (Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxPayloadBytes {
		return Payload{}, ErrInvalidPayload
	}

	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.Type != TypeSiteCheckIn {
		return Payload{}, fmt.Errorf("%w: type %q", ErrInvalidPayload, p.Type)
	}
	id, err := uuid.Parse(strings.TrimSpace(p.SiteID))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: site_id %q", ErrInvalidPayload, p.SiteID)
	}

	p.SiteID = id.String()
	p.SiteName = strings.TrimSpace(p.SiteName)
	return p, nil
}

func Encode(siteID uuid.UUID, siteName, code string) ([]byte, error) {
	return json.Marshal(Payload{
		Type:     TypeSiteCheckIn,
		SiteID:   siteID.String(),
		SiteName: siteName,
		Code:     code,
	})
}
