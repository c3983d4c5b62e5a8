package models

import (
	"time"

	"github.com/google/uuid"
)

// WebsiteType distinguishes the kinds of single-page sites a business
// can publish: a digital business card, a product catalog, or a plain
// redirect to an external URL.
type WebsiteType string

const (
	WebsiteTypeBusinessCard WebsiteType = "business_card"
	WebsiteTypeCatalog      WebsiteType = "catalog"
	WebsiteTypeRedirect     WebsiteType = "redirect"
)

// String returns the string representation of the type
func (t WebsiteType) String() string {
	return string(t)
}

// Valid checks if the type is valid
func (t WebsiteType) Valid() bool {
	switch t {
	case WebsiteTypeBusinessCard, WebsiteTypeCatalog, WebsiteTypeRedirect:
		return true
	default:
		return false
	}
}

// Website represents one published site owned by a business. QR codes
// point at the website's public URL.
type Website struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:uk_websites_uuid" json:"uuid"`
	BusinessID uint        `gorm:"not null;index:idx_websites_business_id" json:"business_id"`
	Slug       string      `gorm:"size:100;not null;uniqueIndex:uk_websites_slug" json:"slug"`
	Type       WebsiteType `gorm:"size:20;not null;default:'business_card'" json:"type"`
	PublicURL  string      `gorm:"type:text;not null" json:"public_url"`
	IsActive   *bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time   `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for Website
func (Website) TableName() string { return "websites" }

// WebsiteFilter provides filter fields for repository queries
type WebsiteFilter struct {
	ID         *uint
	UUID       *uuid.UUID
	BusinessID *uint
	Slug       *string
	IsActive   *bool
}
