package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/openlearnhq/enterprise-catalog/models"
	"github.com/openlearnhq/enterprise-catalog/utils"
	"gorm.io/gorm"
)

// EnterpriseCatalogRepositoryImpl implements the EnterpriseCatalogRepository interface
type EnterpriseCatalogRepositoryImpl struct {
	*BaseRepository[models.EnterpriseCatalog, models.EnterpriseCatalogFilter]
}

// NewEnterpriseCatalogRepository creates a new enterprise catalog repository
func NewEnterpriseCatalogRepository(db *gorm.DB) EnterpriseCatalogRepository {
	return &EnterpriseCatalogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.EnterpriseCatalog, models.EnterpriseCatalogFilter](db),
	}
}

// ByUUID retrieves an enterprise catalog by UUID
func (r *EnterpriseCatalogRepositoryImpl) ByUUID(ctx context.Context, catalogUUID uuid.UUID) (*models.EnterpriseCatalog, error) {
	filter := models.EnterpriseCatalogFilter{UUID: &catalogUUID}
	catalogs, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(catalogs) == 0 {
		return nil, nil
	}

	return catalogs[0], nil
}

// ListByEnterprise retrieves all catalogs owned by an enterprise customer
func (r *EnterpriseCatalogRepositoryImpl) ListByEnterprise(ctx context.Context, enterpriseUUID uuid.UUID) ([]*models.EnterpriseCatalog, error) {
	filter := models.EnterpriseCatalogFilter{EnterpriseUUID: &enterpriseUUID}
	return r.ByFilter(ctx, filter, "created_at DESC", 0, 0)
}

// Update updates an enterprise catalog
func (r *EnterpriseCatalogRepositoryImpl) Update(ctx context.Context, catalog models.EnterpriseCatalog) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	now := utils.UTCNow()
	catalog.UpdatedAt = &now

	err = db.Save(&catalog).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves enterprise catalogs based on filter criteria
func (r *EnterpriseCatalogRepositoryImpl) ByFilter(ctx context.Context, filter models.EnterpriseCatalogFilter, orderBy string, limit, offset int) ([]*models.EnterpriseCatalog, error) {
	db := r.getDB(ctx)

	var catalogs []*models.EnterpriseCatalog
	query := r.applyFilter(db, filter)

	// Apply ordering
	if orderBy != "" {
		query = query.Order(orderBy)
	}

	// Apply pagination
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	// Preload the owned query; catalog reads almost always need it
	query = query.Preload("CatalogQuery")

	err := query.Find(&catalogs).Error
	if err != nil {
		return nil, err
	}

	return catalogs, nil
}

// Count returns the number of enterprise catalogs matching the filter
func (r *EnterpriseCatalogRepositoryImpl) Count(ctx context.Context, filter models.EnterpriseCatalogFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var catalog models.EnterpriseCatalog
	err := r.applyFilter(db.Model(&catalog), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any enterprise catalog matching the filter exists
func (r *EnterpriseCatalogRepositoryImpl) Exists(ctx context.Context, filter models.EnterpriseCatalogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *EnterpriseCatalogRepositoryImpl) applyFilter(db *gorm.DB, filter models.EnterpriseCatalogFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.EnterpriseUUID != nil {
		db = db.Where("enterprise_uuid = ?", *filter.EnterpriseUUID)
	}
	if filter.CatalogQueryID != nil {
		db = db.Where("catalog_query_id = ?", *filter.CatalogQueryID)
	}
	if filter.Title != nil {
		db = db.Where("title ILIKE ?", "%"+*filter.Title+"%")
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}
	return db
}
