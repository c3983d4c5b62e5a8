package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DeviceClass is the coarse device classification recorded per scan.
type DeviceClass string

const (
	DeviceIOS     DeviceClass = "iOS"
	DeviceAndroid DeviceClass = "Android"
	DeviceDesktop DeviceClass = "Desktop"
	DeviceOther   DeviceClass = "Other"
)

// String returns the string representation of the device class
func (d DeviceClass) String() string {
	return string(d)
}

// Valid checks if the device class is valid
func (d DeviceClass) Valid() bool {
	switch d {
	case DeviceIOS, DeviceAndroid, DeviceDesktop, DeviceOther:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for DeviceClass
func (d *DeviceClass) Scan(value any) error {
	if value == nil {
		*d = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*d = DeviceClass(v)
	case []byte:
		*d = DeviceClass(string(v))
	default:
		return fmt.Errorf("cannot scan %T into DeviceClass", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for DeviceClass
func (d DeviceClass) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid DeviceClass: %s", d)
	}
	return string(d), nil
}

// Geolocation defaults recorded when derivation degrades.
const (
	GeoUnknown = "Unknown"
	GeoLocal   = "Local"
)

// ScanEvent is one immutable record of a single inbound scan. Rows are
// append-only: nothing in the system updates or deletes them, and the
// cached counters on qr_codes can always be re-derived from this table.
// BusinessID and WebsiteID are denormalized from the QR code at record
// time so aggregation queries never need the ownership join.
type ScanEvent struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	QRCodeID   uint `gorm:"not null;index:idx_scan_events_qr_code_id" json:"qr_code_id"`
	BusinessID uint `gorm:"not null;index:idx_scan_events_business_id" json:"business_id"`
	WebsiteID  uint `gorm:"not null;index:idx_scan_events_website_id" json:"website_id"`

	ScannedAt time.Time `gorm:"not null;index:idx_scan_events_scanned_at" json:"scanned_at"`

	Country string `gorm:"size:100;not null;default:'Unknown';index:idx_scan_events_country" json:"country"`
	City    string `gorm:"size:100;not null;default:'Unknown';index:idx_scan_events_city" json:"city"`
	Region  string `gorm:"size:100;not null;default:'Unknown'" json:"region"`

	IPAddress string      `gorm:"size:64;not null;index:idx_scan_events_ip_address" json:"ip_address"`
	Device    DeviceClass `gorm:"size:20;not null;default:'Other';index:idx_scan_events_device" json:"device"`
	Browser   string      `gorm:"size:100;not null;default:'Unknown'" json:"browser"`
	OS        string      `gorm:"size:100;not null;default:'Unknown'" json:"os"`
	UserAgent string      `gorm:"type:text" json:"user_agent"`

	// One-way hash of ip|user-agent|day-bucket; see the fingerprint
	// service. Used only for day-scoped uniqueness counting.
	Fingerprint string `gorm:"size:64;not null;index:idx_scan_events_fingerprint" json:"fingerprint"`
	IsUnique    bool   `gorm:"not null;default:false" json:"is_unique"`

	Referrer    *string `gorm:"type:text" json:"referrer,omitempty"`
	UTMSource   *string `gorm:"size:255" json:"utm_source,omitempty"`
	UTMMedium   *string `gorm:"size:255" json:"utm_medium,omitempty"`
	UTMCampaign *string `gorm:"size:255" json:"utm_campaign,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

// TableName returns the table name for ScanEvent
func (ScanEvent) TableName() string { return "scan_events" }

// ScanEventFilter provides filter fields for repository queries. The
// dimension fields mirror what the management API aggregates on.
type ScanEventFilter struct {
	ID            *uint
	QRCodeID      *uint
	BusinessID    *uint
	WebsiteID     *uint
	IPAddress     *string
	Fingerprint   *string
	Country       *string
	City          *string
	Device        *DeviceClass
	IsUnique      *bool
	ScannedAfter  *time.Time
	ScannedBefore *time.Time
}
