package models

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QRCodeStatus represents the lifecycle status of a QR code
type QRCodeStatus string

const (
	QRCodeStatusActive   QRCodeStatus = "active"
	QRCodeStatusInactive QRCodeStatus = "inactive"
	QRCodeStatusArchived QRCodeStatus = "archived"
)

// String returns the string representation of the status
func (s QRCodeStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s QRCodeStatus) Valid() bool {
	switch s {
	case QRCodeStatusActive, QRCodeStatusInactive, QRCodeStatusArchived:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for QRCodeStatus
func (s *QRCodeStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = QRCodeStatus(v)
	case []byte:
		*s = QRCodeStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into QRCodeStatus", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for QRCodeStatus
func (s QRCodeStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid QRCodeStatus: %s", s)
	}
	return string(s), nil
}

var targetURLPattern = regexp.MustCompile(`^https?://`)

// IsValidTargetURL reports whether u is an absolute http(s) URL.
func IsValidTargetURL(u string) bool {
	return targetURLPattern.MatchString(u)
}

// QRCode represents one short, stable redirect target owned by a
// website/business pair. ShortCode is immutable after creation; the
// counters are a derived cache over scan_events and are only ever
// incremented by scan processing.
type QRCode struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_qr_codes_uuid" json:"uuid"`
	BusinessID  uint      `gorm:"not null;index:idx_qr_codes_business_id" json:"business_id"`
	WebsiteID   uint      `gorm:"not null;index:idx_qr_codes_website_id" json:"website_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	TargetURL   string    `gorm:"type:text;not null" json:"target_url"`
	ShortCode   string    `gorm:"size:20;not null;uniqueIndex:uk_qr_codes_short_code" json:"short_code"`

	// Reference to the rendered PNG/SVG in object storage, filled in by
	// the issuance flow.
	ImageURL        *string `gorm:"type:text" json:"image_url,omitempty"`
	PrimaryColor    *string `gorm:"size:7;not null;default:'#000000'" json:"primary_color"`
	BackgroundColor *string `gorm:"size:7;not null;default:'#FFFFFF'" json:"background_color"`

	Status   QRCodeStatus `gorm:"size:20;not null;default:'active';index:idx_qr_codes_status" json:"status"`
	IsActive *bool        `gorm:"not null;default:true" json:"is_active"`

	TotalScans  int64      `gorm:"not null;default:0" json:"total_scans"`
	UniqueScans int64      `gorm:"not null;default:0" json:"unique_scans"`
	LastScanAt  *time.Time `json:"last_scan_at,omitempty"`

	CreatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_qr_codes_created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index:idx_qr_codes_deleted_at" json:"-"`
}

// TableName returns the table name for QRCode
func (QRCode) TableName() string { return "qr_codes" }

// Scannable reports whether an inbound scan may resolve this code.
func (q *QRCode) Scannable() bool {
	return q.IsActive != nil && *q.IsActive && q.Status == QRCodeStatusActive
}

// QRCodeFilter provides filter fields for repository queries
type QRCodeFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	BusinessID    *uint
	WebsiteID     *uint
	ShortCode     *string
	Status        *QRCodeStatus
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
