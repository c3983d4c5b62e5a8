// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/forze-dev/QRHUB-Server/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// BusinessRepository defines operations for business accounts
type BusinessRepository interface {
	Repository[models.Business, models.BusinessFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Business, error)
}

// WebsiteRepository defines operations for websites
type WebsiteRepository interface {
	Repository[models.Website, models.WebsiteFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Website, error)
	ListByBusiness(ctx context.Context, businessID uint) ([]*models.Website, error)
}

// QRCodeRepository defines operations for QR codes
type QRCodeRepository interface {
	Repository[models.QRCode, models.QRCodeFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.QRCode, error)
	// FindActiveByShortCode resolves a short code case-insensitively and
	// returns only codes that are scannable. Soft-deleted, deactivated
	// and archived codes all come back as (nil, nil).
	FindActiveByShortCode(ctx context.Context, shortCode string) (*models.QRCode, error)
	// CountActiveByWebsite counts scannable codes for the per-website cap.
	CountActiveByWebsite(ctx context.Context, websiteID uint) (int64, error)
	// IncrementScans applies the cached counter update for one scan.
	IncrementScans(ctx context.Context, qrCodeID uint, isUnique bool, scannedAt time.Time) error
	UpdateStatus(ctx context.Context, qrCodeID uint, status models.QRCodeStatus, isActive bool) error
	SoftDelete(ctx context.Context, qrCodeID uint) error
}

// ScanEventRepository defines operations for the append-only scan log
type ScanEventRepository interface {
	Repository[models.ScanEvent, models.ScanEventFilter]
	// CountRecent counts events for (qrCodeID, ip) scanned at or after
	// since; the rate limiter's sliding window read.
	CountRecent(ctx context.Context, qrCodeID uint, ip string, since time.Time) (int64, error)
	// ExistsTodayFor reports whether the fingerprint already scanned this
	// code since UTC midnight of asOf's day.
	ExistsTodayFor(ctx context.Context, qrCodeID uint, fingerprint string, asOf time.Time) (bool, error)
	// AggregateByDimension groups matching events by one of the queryable
	// dimensions (country, city, device) and returns per-value counts.
	AggregateByDimension(ctx context.Context, filter models.ScanEventFilter, dimension string) ([]DimensionCount, error)
	// AggregateByDay returns per-UTC-day total and unique counts.
	AggregateByDay(ctx context.Context, filter models.ScanEventFilter) ([]DayCount, error)
}

// DimensionCount is one bucket of a grouped aggregation
type DimensionCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// DayCount is one day's scan totals
type DayCount struct {
	Day         time.Time `json:"day"`
	TotalScans  int64     `json:"total_scans"`
	UniqueScans int64     `json:"unique_scans"`
}
