// Package models defines the persistence entities for the QRHub platform.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Business represents a platform account that owns websites and QR codes.
// Profile details (logo, category, contacts) live in the management
// service; the scan core only needs the ownership identity.
type Business struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_businesses_uuid" json:"uuid"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:uk_businesses_email" json:"email"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for Business
func (Business) TableName() string { return "businesses" }

// BusinessFilter provides filter fields for repository queries
type BusinessFilter struct {
	ID       *uint
	UUID     *uuid.UUID
	Email    *string
	IsActive *bool
}
