package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/openlearnhq/enterprise-catalog/models"
	"gorm.io/gorm"
)

// ContentMetadataRepositoryImpl implements the ContentMetadataRepository interface
type ContentMetadataRepositoryImpl struct {
	*BaseRepository[models.ContentMetadata, models.ContentMetadataFilter]
}

// NewContentMetadataRepository creates a new content metadata repository
func NewContentMetadataRepository(db *gorm.DB) ContentMetadataRepository {
	return &ContentMetadataRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ContentMetadata, models.ContentMetadataFilter](db),
	}
}

// ByContentKey retrieves a content metadata record by its content key
func (r *ContentMetadataRepositoryImpl) ByContentKey(ctx context.Context, contentKey string) (*models.ContentMetadata, error) {
	filter := models.ContentMetadataFilter{ContentKey: &contentKey}
	records, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, nil
	}

	return records[0], nil
}

// ListByCatalogQuery retrieves content metadata associated with a
// catalog query, via the ingestion-maintained join table
func (r *ContentMetadataRepositoryImpl) ListByCatalogQuery(ctx context.Context, catalogQueryID uint, limit, offset int) ([]*models.ContentMetadata, error) {
	db := r.getDB(ctx)

	query := r.joinCatalogQuery(db, catalogQueryID).Order("content_metadata.content_key ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var records []*models.ContentMetadata
	err := query.Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

// CountByCatalogQuery counts content metadata associated with a catalog query
func (r *ContentMetadataRepositoryImpl) CountByCatalogQuery(ctx context.Context, catalogQueryID uint) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := r.joinCatalogQuery(db.Model(&models.ContentMetadata{}), catalogQueryID).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// LastModifiedByCatalogQuery returns the most recent modification time
// across all content metadata under a catalog query, or nil when the
// query has no content
func (r *ContentMetadataRepositoryImpl) LastModifiedByCatalogQuery(ctx context.Context, catalogQueryID uint) (*time.Time, error) {
	db := r.getDB(ctx)

	var lastModified sql.NullTime
	err := r.joinCatalogQuery(db.Model(&models.ContentMetadata{}), catalogQueryID).
		Select("MAX(COALESCE(content_metadata.updated_at, content_metadata.created_at))").
		Scan(&lastModified).Error
	if err != nil {
		return nil, err
	}

	if !lastModified.Valid {
		return nil, nil
	}

	modified := lastModified.Time
	return &modified, nil
}

// ChildRecords retrieves the child records of a content item, e.g. the
// course runs owned by a course
func (r *ContentMetadataRepositoryImpl) ChildRecords(ctx context.Context, parentContentKey string) ([]*models.ContentMetadata, error) {
	filter := models.ContentMetadataFilter{ParentContentKey: &parentContentKey}
	return r.ByFilter(ctx, filter, "content_key ASC", 0, 0)
}

func (r *ContentMetadataRepositoryImpl) joinCatalogQuery(db *gorm.DB, catalogQueryID uint) *gorm.DB {
	return db.
		Joins("JOIN catalog_query_content_metadata ON catalog_query_content_metadata.content_metadata_id = content_metadata.id").
		Where("catalog_query_content_metadata.catalog_query_id = ?", catalogQueryID)
}

// ByFilter retrieves content metadata based on filter criteria
func (r *ContentMetadataRepositoryImpl) ByFilter(ctx context.Context, filter models.ContentMetadataFilter, orderBy string, limit, offset int) ([]*models.ContentMetadata, error) {
	db := r.getDB(ctx)

	var records []*models.ContentMetadata
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

	err := query.Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Count returns the number of content metadata records matching the filter
func (r *ContentMetadataRepositoryImpl) Count(ctx context.Context, filter models.ContentMetadataFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var record models.ContentMetadata
	err := r.applyFilter(db.Model(&record), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any content metadata record matching the filter exists
func (r *ContentMetadataRepositoryImpl) Exists(ctx context.Context, filter models.ContentMetadataFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ContentMetadataRepositoryImpl) applyFilter(db *gorm.DB, filter models.ContentMetadataFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.ContentKey != nil {
		db = db.Where("content_key = ?", *filter.ContentKey)
	}
	if filter.ContentType != nil {
		db = db.Where("content_type = ?", *filter.ContentType)
	}
	if filter.ParentContentKey != nil {
		db = db.Where("parent_content_key = ?", *filter.ParentContentKey)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}
	return db
}
