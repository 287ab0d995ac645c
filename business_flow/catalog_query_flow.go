// Package businessflow contains the core business logic and use cases for catalog workflows
package businessflow

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/openlearnhq/enterprise-catalog/models"
	"github.com/openlearnhq/enterprise-catalog/repository"
	"github.com/openlearnhq/enterprise-catalog/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution branch labels for the resolver metric
const (
	resolutionUpdatedByUUID = "updated_by_uuid"
	resolutionCreated       = "created"
	resolutionReused        = "reused"
)

var catalogQueryResolutions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_query_resolutions_total",
		Help: "Catalog query resolutions partitioned by branch taken",
	},
	[]string{"branch"},
)

// CatalogQueryFlow resolves a content filter to a single persisted catalog query
type CatalogQueryFlow interface {
	FindAndModifyCatalogQuery(ctx context.Context, contentFilter models.JSONMap, queryUUID *uuid.UUID, queryTitle *string, includeExecEd2UCourses bool) (*models.CatalogQuery, error)
}

// CatalogQueryFlowImpl implements the catalog query resolution flow
type CatalogQueryFlowImpl struct {
	queryRepo repository.CatalogQueryRepository
}

// NewCatalogQueryFlow creates a new catalog query flow instance
func NewCatalogQueryFlow(queryRepo repository.CatalogQueryRepository) CatalogQueryFlow {
	return &CatalogQueryFlowImpl{
		queryRepo: queryRepo,
	}
}

// FindAndModifyCatalogQuery deterministically resolves a content filter
// to one catalog query, keyed by the hash of the normalized filter plus
// the exec-ed inclusion flag. The caller's parameters are the source of
// truth, but UUID, title, and filter are never duplicated:
//
//   - A known queryUUID wins: the stored query is overwritten in place
//     with the caller's filter, title, hash, and flag.
//   - Otherwise the filter is deduplicated against existing queries by
//     the natural key; filter, UUID, and title are applied only when a
//     new row is created.
func (s *CatalogQueryFlowImpl) FindAndModifyCatalogQuery(ctx context.Context, contentFilter models.JSONMap, queryUUID *uuid.UUID, queryTitle *string, includeExecEd2UCourses bool) (*models.CatalogQuery, error) {
	if len(contentFilter) == 0 {
		return nil, NewBusinessError("CONTENT_FILTER_REQUIRED", "Content filter must not be empty", ErrContentFilterRequired)
	}

	hashedContentFilter := utils.ContentFilterHash(contentFilter)

	if queryUUID != nil && *queryUUID != uuid.Nil {
		queryFromUUID, err := s.queryRepo.ByUUID(ctx, *queryUUID)
		if err != nil {
			return nil, NewBusinessError("CATALOG_QUERY_LOOKUP_FAILED", "Failed to lookup catalog query by UUID", err)
		}

		if queryFromUUID != nil {
			queryFromUUID.ContentFilter = contentFilter
			queryFromUUID.Title = queryTitle
			queryFromUUID.ContentFilterHash = hashedContentFilter
			queryFromUUID.IncludeExecEd2UCourses = includeExecEd2UCourses

			if err := s.queryRepo.Update(ctx, *queryFromUUID); err != nil {
				if constraint, ok := repository.UniqueViolation(err); ok {
					log.Printf("Error occurred while saving catalog query %s: %v", queryFromUUID.UUID, err)
					return nil, NewBusinessErrorf(
						"CATALOG_QUERY_NOT_UNIQUE",
						"%s is not unique",
						errors.Join(ErrCatalogQueryNotUnique, err),
						constraint,
					)
				}
				return nil, NewBusinessError("CATALOG_QUERY_UPDATE_FAILED", "Failed to update catalog query", err)
			}

			catalogQueryResolutions.WithLabelValues(resolutionUpdatedByUUID).Inc()
			return queryFromUUID, nil
		}

		defaults := models.CatalogQuery{
			UUID:          *queryUUID,
			ContentFilter: contentFilter,
			Title:         queryTitle,
		}
		return s.getOrCreate(ctx, hashedContentFilter, includeExecEd2UCourses, defaults)
	}

	defaults := models.CatalogQuery{
		ContentFilter: contentFilter,
		Title:         queryTitle,
	}
	return s.getOrCreate(ctx, hashedContentFilter, includeExecEd2UCourses, defaults)
}

func (s *CatalogQueryFlowImpl) getOrCreate(ctx context.Context, hashedContentFilter string, includeExecEd2UCourses bool, defaults models.CatalogQuery) (*models.CatalogQuery, error) {
	resolved, created, err := s.queryRepo.GetOrCreate(ctx, hashedContentFilter, includeExecEd2UCourses, defaults)
	if err != nil {
		return nil, NewBusinessError("CATALOG_QUERY_RESOLUTION_FAILED", "Failed to resolve catalog query by content filter hash", err)
	}

	if created {
		catalogQueryResolutions.WithLabelValues(resolutionCreated).Inc()
	} else {
		catalogQueryResolutions.WithLabelValues(resolutionReused).Inc()
	}

	return resolved, nil
}
