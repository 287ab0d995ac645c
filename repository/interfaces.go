// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openlearnhq/enterprise-catalog/models"
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

// CatalogQueryRepository defines operations for catalog queries
type CatalogQueryRepository interface {
	Repository[models.CatalogQuery, models.CatalogQueryFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.CatalogQuery, error)
	ByNaturalKey(ctx context.Context, contentFilterHash string, includeExecEd2UCourses bool) (*models.CatalogQuery, error)
	GetOrCreate(ctx context.Context, contentFilterHash string, includeExecEd2UCourses bool, defaults models.CatalogQuery) (*models.CatalogQuery, bool, error)
	Update(ctx context.Context, query models.CatalogQuery) error
}

// EnterpriseCatalogRepository defines operations for enterprise catalogs
type EnterpriseCatalogRepository interface {
	Repository[models.EnterpriseCatalog, models.EnterpriseCatalogFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.EnterpriseCatalog, error)
	ListByEnterprise(ctx context.Context, enterpriseUUID uuid.UUID) ([]*models.EnterpriseCatalog, error)
	Update(ctx context.Context, catalog models.EnterpriseCatalog) error
}

// ContentMetadataRepository defines operations for content metadata
type ContentMetadataRepository interface {
	Repository[models.ContentMetadata, models.ContentMetadataFilter]
	ByContentKey(ctx context.Context, contentKey string) (*models.ContentMetadata, error)
	ListByCatalogQuery(ctx context.Context, catalogQueryID uint, limit, offset int) ([]*models.ContentMetadata, error)
	CountByCatalogQuery(ctx context.Context, catalogQueryID uint) (int64, error)
	LastModifiedByCatalogQuery(ctx context.Context, catalogQueryID uint) (*time.Time, error)
	ChildRecords(ctx context.Context, parentContentKey string) ([]*models.ContentMetadata, error)
}
