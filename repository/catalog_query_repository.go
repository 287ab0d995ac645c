package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/openlearnhq/enterprise-catalog/models"
	"github.com/openlearnhq/enterprise-catalog/utils"
	"gorm.io/gorm"
)

// pgUniqueViolationCode is the Postgres error code for unique_violation
const pgUniqueViolationCode = "23505"

// UniqueViolation reports whether err is a Postgres unique-constraint
// violation and, if so, which constraint was violated. Only code 23505
// is translated; other database errors are left to the caller.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// CatalogQueryRepositoryImpl implements the CatalogQueryRepository interface
type CatalogQueryRepositoryImpl struct {
	*BaseRepository[models.CatalogQuery, models.CatalogQueryFilter]
}

// NewCatalogQueryRepository creates a new catalog query repository
func NewCatalogQueryRepository(db *gorm.DB) CatalogQueryRepository {
	return &CatalogQueryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CatalogQuery, models.CatalogQueryFilter](db),
	}
}

// ByUUID retrieves a catalog query by UUID
func (r *CatalogQueryRepositoryImpl) ByUUID(ctx context.Context, queryUUID uuid.UUID) (*models.CatalogQuery, error) {
	filter := models.CatalogQueryFilter{UUID: &queryUUID}
	queries, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(queries) == 0 {
		return nil, nil
	}

	return queries[0], nil
}

// ByNaturalKey retrieves a catalog query by its (content_filter_hash,
// include_exec_ed_2u_courses) natural key
func (r *CatalogQueryRepositoryImpl) ByNaturalKey(ctx context.Context, contentFilterHash string, includeExecEd2UCourses bool) (*models.CatalogQuery, error) {
	filter := models.CatalogQueryFilter{
		ContentFilterHash:      &contentFilterHash,
		IncludeExecEd2UCourses: &includeExecEd2UCourses,
	}
	queries, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(queries) == 0 {
		return nil, nil
	}

	return queries[0], nil
}

// GetOrCreate returns the catalog query matching the natural key, or
// creates one from defaults when no row matches. Defaults are applied
// on creation only. A unique violation during the insert means another
// writer created the row first; the winner is re-read instead of
// surfacing the error.
func (r *CatalogQueryRepositoryImpl) GetOrCreate(ctx context.Context, contentFilterHash string, includeExecEd2UCourses bool, defaults models.CatalogQuery) (*models.CatalogQuery, bool, error) {
	existing, err := r.ByNaturalKey(ctx, contentFilterHash, includeExecEd2UCourses)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	created := defaults
	created.ContentFilterHash = contentFilterHash
	created.IncludeExecEd2UCourses = includeExecEd2UCourses

	if err := r.Save(ctx, &created); err != nil {
		if _, ok := UniqueViolation(err); ok {
			winner, readErr := r.ByNaturalKey(ctx, contentFilterHash, includeExecEd2UCourses)
			if readErr != nil {
				return nil, false, readErr
			}
			if winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, err
	}

	return &created, true, nil
}

// Update persists all fields of an existing catalog query. Integrity
// errors are returned untranslated so the caller can inspect them.
func (r *CatalogQueryRepositoryImpl) Update(ctx context.Context, query models.CatalogQuery) error {
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
	query.UpdatedAt = &now

	err = db.Save(&query).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves catalog queries based on filter criteria
func (r *CatalogQueryRepositoryImpl) ByFilter(ctx context.Context, filter models.CatalogQueryFilter, orderBy string, limit, offset int) ([]*models.CatalogQuery, error) {
	db := r.getDB(ctx)

	var queries []*models.CatalogQuery
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

	err := query.Find(&queries).Error
	if err != nil {
		return nil, err
	}

	return queries, nil
}

// Count returns the number of catalog queries matching the filter
func (r *CatalogQueryRepositoryImpl) Count(ctx context.Context, filter models.CatalogQueryFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var query models.CatalogQuery
	err := r.applyFilter(db.Model(&query), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any catalog query matching the filter exists
func (r *CatalogQueryRepositoryImpl) Exists(ctx context.Context, filter models.CatalogQueryFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *CatalogQueryRepositoryImpl) applyFilter(db *gorm.DB, filter models.CatalogQueryFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.ContentFilterHash != nil {
		db = db.Where("content_filter_hash = ?", *filter.ContentFilterHash)
	}
	if filter.IncludeExecEd2UCourses != nil {
		db = db.Where("include_exec_ed_2u_courses = ?", *filter.IncludeExecEd2UCourses)
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
