package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/forze-dev/QRHUB-Server/models"
	"github.com/forze-dev/QRHUB-Server/utils"
	"gorm.io/gorm"
)

// ScanEventRepositoryImpl implements ScanEventRepository. The table is
// append-only: there are deliberately no update or delete operations.
type ScanEventRepositoryImpl struct {
	*BaseRepository[models.ScanEvent, models.ScanEventFilter]
}

func NewScanEventRepository(db *gorm.DB) ScanEventRepository {
	return &ScanEventRepositoryImpl{BaseRepository: NewBaseRepository[models.ScanEvent, models.ScanEventFilter](db)}
}

func (r *ScanEventRepositoryImpl) CountRecent(ctx context.Context, qrCodeID uint, ip string, since time.Time) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.ScanEvent{}).
		Where("qr_code_id = ?", qrCodeID).
		Where("ip_address = ?", ip).
		Where("scanned_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsTodayFor is the read half of the best-effort uniqueness check.
// Two concurrent first scans of the day can both observe false here;
// that race is accepted rather than serialized.
func (r *ScanEventRepositoryImpl) ExistsTodayFor(ctx context.Context, qrCodeID uint, fingerprint string, asOf time.Time) (bool, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.ScanEvent{}).
		Where("qr_code_id = ?", qrCodeID).
		Where("fingerprint = ?", fingerprint).
		Where("scanned_at >= ?", utils.DayStartUTC(asOf)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// aggregatable whitelists the dimensions the management API may group
// by; the dimension name goes into SQL and must never come from user
// input unchecked.
var aggregatable = map[string]string{
	"country": "country",
	"city":    "city",
	"device":  "device",
}

func (r *ScanEventRepositoryImpl) AggregateByDimension(ctx context.Context, filter models.ScanEventFilter, dimension string) ([]DimensionCount, error) {
	column, ok := aggregatable[dimension]
	if !ok {
		return nil, fmt.Errorf("cannot aggregate scan events by %q", dimension)
	}
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ScanEvent{}), filter)
	var rows []DimensionCount
	err := query.
		Select(column + " AS value, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScanEventRepositoryImpl) AggregateByDay(ctx context.Context, filter models.ScanEventFilter) ([]DayCount, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ScanEvent{}), filter)
	var rows []DayCount
	err := query.
		Select("DATE_TRUNC('day', scanned_at AT TIME ZONE 'UTC') AS day, COUNT(*) AS total_scans, COUNT(*) FILTER (WHERE is_unique) AS unique_scans").
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScanEventRepositoryImpl) applyFilter(db *gorm.DB, f models.ScanEventFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.QRCodeID != nil {
		db = db.Where("qr_code_id = ?", *f.QRCodeID)
	}
	if f.BusinessID != nil {
		db = db.Where("business_id = ?", *f.BusinessID)
	}
	if f.WebsiteID != nil {
		db = db.Where("website_id = ?", *f.WebsiteID)
	}
	if f.IPAddress != nil {
		db = db.Where("ip_address = ?", *f.IPAddress)
	}
	if f.Fingerprint != nil {
		db = db.Where("fingerprint = ?", *f.Fingerprint)
	}
	if f.Country != nil {
		db = db.Where("country = ?", *f.Country)
	}
	if f.City != nil {
		db = db.Where("city = ?", *f.City)
	}
	if f.Device != nil {
		db = db.Where("device = ?", *f.Device)
	}
	if f.IsUnique != nil {
		db = db.Where("is_unique = ?", *f.IsUnique)
	}
	if f.ScannedAfter != nil {
		db = db.Where("scanned_at >= ?", *f.ScannedAfter)
	}
	if f.ScannedBefore != nil {
		db = db.Where("scanned_at < ?", *f.ScannedBefore)
	}
	return db
}

func (r *ScanEventRepositoryImpl) ByFilter(ctx context.Context, filter models.ScanEventFilter, orderBy string, limit, offset int) ([]*models.ScanEvent, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ScanEvent{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ScanEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScanEventRepositoryImpl) Count(ctx context.Context, filter models.ScanEventFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ScanEvent{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ScanEventRepositoryImpl) Exists(ctx context.Context, filter models.ScanEventFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
