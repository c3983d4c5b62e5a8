package dto

import (
	"time"
)

// ScanPreviewResponse represents the preview payload for one scannable code
type ScanPreviewResponse struct {
	ShortCode       string  `json:"short_code"`
	Name            string  `json:"name"`
	TargetURL       string  `json:"target_url"`
	PrimaryColor    *string `json:"primary_color,omitempty"`
	BackgroundColor *string `json:"background_color,omitempty"`
	RedirectIn      int     `json:"redirect_in_seconds"`
}

// AnalyticsRequest represents the request for a QR code's scan analytics
type AnalyticsRequest struct {
	UUID       string     `json:"-"`
	BusinessID uint       `json:"-"`
	From       *time.Time `json:"-"`
	To         *time.Time `json:"-"`
}

// DimensionBucket is one value of a grouped analytics dimension
type DimensionBucket struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// DailyBucket is one UTC day of scan totals
type DailyBucket struct {
	Day         string `json:"day"`
	TotalScans  int64  `json:"total_scans"`
	UniqueScans int64  `json:"unique_scans"`
}

// AnalyticsResponse represents the aggregated scan analytics of one QR code
type AnalyticsResponse struct {
	UUID        string            `json:"uuid"`
	ShortCode   string            `json:"short_code"`
	TotalScans  int64             `json:"total_scans"`
	UniqueScans int64             `json:"unique_scans"`
	LastScanAt  *time.Time        `json:"last_scan_at,omitempty"`
	ByDay       []DailyBucket     `json:"by_day"`
	ByCountry   []DimensionBucket `json:"by_country"`
	ByCity      []DimensionBucket `json:"by_city"`
	ByDevice    []DimensionBucket `json:"by_device"`
}
