package repository

import (
	"context"
	"errors"
	"time"

	"github.com/forze-dev/QRHUB-Server/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QRCodeRepositoryImpl implements QRCodeRepository
type QRCodeRepositoryImpl struct {
	*BaseRepository[models.QRCode, models.QRCodeFilter]
}

func NewQRCodeRepository(db *gorm.DB) QRCodeRepository {
	return &QRCodeRepositoryImpl{BaseRepository: NewBaseRepository[models.QRCode, models.QRCodeFilter](db)}
}

func (r *QRCodeRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.QRCode, error) {
	filter := models.QRCodeFilter{UUID: &id}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// FindActiveByShortCode resolves a scannable code by its short code.
// The lookup is case-insensitive; codes that exist but are deactivated,
// archived or soft-deleted are reported exactly like missing ones so
// anonymous scanners cannot probe lifecycle state.
func (r *QRCodeRepositoryImpl) FindActiveByShortCode(ctx context.Context, shortCode string) (*models.QRCode, error) {
	db := r.getDB(ctx)
	var row models.QRCode
	err := db.
		Where("LOWER(short_code) = LOWER(?)", shortCode).
		Where("is_active = ?", true).
		Where("status = ?", models.QRCodeStatusActive).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *QRCodeRepositoryImpl) CountActiveByWebsite(ctx context.Context, websiteID uint) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.QRCode{}).
		Where("website_id = ?", websiteID).
		Where("is_active = ?", true).
		Where("status = ?", models.QRCodeStatusActive).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// IncrementScans applies the cached counter update for one recorded
// scan in a single UPDATE. Counters only ever grow; scan_events is the
// source of truth if this write is ever lost.
func (r *QRCodeRepositoryImpl) IncrementScans(ctx context.Context, qrCodeID uint, isUnique bool, scannedAt time.Time) error {
	db := r.getDB(ctx)
	updates := map[string]any{
		"total_scans":  gorm.Expr("total_scans + 1"),
		"last_scan_at": scannedAt,
		"updated_at":   scannedAt,
	}
	if isUnique {
		updates["unique_scans"] = gorm.Expr("unique_scans + 1")
	}
	return db.Model(&models.QRCode{}).Where("id = ?", qrCodeID).Updates(updates).Error
}

func (r *QRCodeRepositoryImpl) UpdateStatus(ctx context.Context, qrCodeID uint, status models.QRCodeStatus, isActive bool) error {
	db := r.getDB(ctx)
	return db.Model(&models.QRCode{}).Where("id = ?", qrCodeID).Updates(map[string]any{
		"status":    status,
		"is_active": isActive,
	}).Error
}

// SoftDelete marks the code deleted. Rows are never hard-deleted so
// historical scan_events keep a valid reference.
func (r *QRCodeRepositoryImpl) SoftDelete(ctx context.Context, qrCodeID uint) error {
	db := r.getDB(ctx)
	return db.Delete(&models.QRCode{}, qrCodeID).Error
}

func (r *QRCodeRepositoryImpl) applyFilter(db *gorm.DB, f models.QRCodeFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.BusinessID != nil {
		db = db.Where("business_id = ?", *f.BusinessID)
	}
	if f.WebsiteID != nil {
		db = db.Where("website_id = ?", *f.WebsiteID)
	}
	if f.ShortCode != nil {
		db = db.Where("LOWER(short_code) = LOWER(?)", *f.ShortCode)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *QRCodeRepositoryImpl) ByFilter(ctx context.Context, filter models.QRCodeFilter, orderBy string, limit, offset int) ([]*models.QRCode, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.QRCode{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.QRCode
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *QRCodeRepositoryImpl) Count(ctx context.Context, filter models.QRCodeFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.QRCode{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *QRCodeRepositoryImpl) Exists(ctx context.Context, filter models.QRCodeFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
