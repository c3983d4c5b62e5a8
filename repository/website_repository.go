package repository

import (
	"context"

	"github.com/forze-dev/QRHUB-Server/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WebsiteRepositoryImpl implements WebsiteRepository
type WebsiteRepositoryImpl struct {
	*BaseRepository[models.Website, models.WebsiteFilter]
}

func NewWebsiteRepository(db *gorm.DB) WebsiteRepository {
	return &WebsiteRepositoryImpl{BaseRepository: NewBaseRepository[models.Website, models.WebsiteFilter](db)}
}

func (r *WebsiteRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Website, error) {
	filter := models.WebsiteFilter{UUID: &id}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *WebsiteRepositoryImpl) ListByBusiness(ctx context.Context, businessID uint) ([]*models.Website, error) {
	filter := models.WebsiteFilter{BusinessID: &businessID}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

func (r *WebsiteRepositoryImpl) applyFilter(db *gorm.DB, f models.WebsiteFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.BusinessID != nil {
		db = db.Where("business_id = ?", *f.BusinessID)
	}
	if f.Slug != nil {
		db = db.Where("slug = ?", *f.Slug)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	return db
}

func (r *WebsiteRepositoryImpl) ByFilter(ctx context.Context, filter models.WebsiteFilter, orderBy string, limit, offset int) ([]*models.Website, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Website{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Website
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *WebsiteRepositoryImpl) Count(ctx context.Context, filter models.WebsiteFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Website{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *WebsiteRepositoryImpl) Exists(ctx context.Context, filter models.WebsiteFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
