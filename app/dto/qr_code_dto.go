package dto

import (
	"time"
)

// CreateQRCodeRequest represents the request to create a new QR code
type CreateQRCodeRequest struct {
	BusinessID      uint    `json:"-"`
	WebsiteUUID     string  `json:"website_uuid" validate:"required,uuid4"`
	Name            string  `json:"name" validate:"required,min=1,max=255"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	TargetURL       string  `json:"target_url" validate:"required,url"`
	ShortCode       *string `json:"short_code,omitempty" validate:"omitempty,min=6,max=20"`
	PrimaryColor    *string `json:"primary_color,omitempty" validate:"omitempty,hexcolor"`
	BackgroundColor *string `json:"background_color,omitempty" validate:"omitempty,hexcolor"`
}

// QRCodeResponse represents one QR code in responses
type QRCodeResponse struct {
	UUID            string     `json:"uuid"`
	WebsiteUUID     string     `json:"website_uuid,omitempty"`
	Name            string     `json:"name"`
	Description     *string    `json:"description,omitempty"`
	TargetURL       string     `json:"target_url"`
	ShortCode       string     `json:"short_code"`
	ScanURL         string     `json:"scan_url"`
	ImageURL        *string    `json:"image_url,omitempty"`
	PrimaryColor    *string    `json:"primary_color,omitempty"`
	BackgroundColor *string    `json:"background_color,omitempty"`
	Status          string     `json:"status"`
	IsActive        bool       `json:"is_active"`
	TotalScans      int64      `json:"total_scans"`
	UniqueScans     int64      `json:"unique_scans"`
	LastScanAt      *time.Time `json:"last_scan_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ListQRCodesRequest represents the request to list a business's QR codes
type ListQRCodesRequest struct {
	BusinessID  uint    `json:"-"`
	WebsiteUUID *string `json:"-" validate:"omitempty,uuid4"`
	Status      *string `json:"-" validate:"omitempty,oneof=active inactive archived"`
	Limit       int     `json:"-" validate:"omitempty,min=1,max=200"`
	Offset      int     `json:"-" validate:"omitempty,min=0"`
}

// ListQRCodesResponse represents the paged QR code listing
type ListQRCodesResponse struct {
	Items []QRCodeResponse `json:"items"`
	Total int64            `json:"total"`
}

// UpdateQRCodeStatusRequest represents the request to change a QR code's status
type UpdateQRCodeStatusRequest struct {
	UUID       string `json:"-"`
	BusinessID uint   `json:"-"`
	Status     string `json:"status" validate:"required,oneof=active inactive archived"`
}
