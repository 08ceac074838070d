package site

type QRCodeResponse struct {
	SiteID   string `json:"site_id"`
	SiteName string `json:"site_name,omitempty"`
	Payload  string `json:"payload,omitempty"`
	PNG      []byte `json:"-"`
	// DataURL is filled for ?format=base64.
	DataURL string `json:"qr_code_image,omitempty"`
}
