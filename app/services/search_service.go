// Package services provides external service integrations and technical concerns like search and enterprise data
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/openlearnhq/enterprise-catalog/config"
	"github.com/openlearnhq/enterprise-catalog/utils"
	"github.com/redis/go-redis/v9"
)

// AlgoliaAttributesToRetrieve is the fixed attribute set requested from
// the search index per query.
var AlgoliaAttributesToRetrieve = []string{
	"title",
	"key",
	"content_type",
	"partners",
	"advertised_course_run",
	"programs",
	"program_titles",
	"level_type",
	"language",
	"short_description",
	"subjects",
	"aggregation_key",
	"skills",
	"first_enrollable_paid_seat_price",
	"marketing_url",
	"outcome",
	"prerequisites_raw",
	"program_type",
	"subtitle",
	"course_keys",
	"course_runs",
}

// SearchService queries the external search index
type SearchService interface {
	Search(ctx context.Context, query string, facets map[string][]string) ([]json.RawMessage, error)
}

// AlgoliaSearchService implements SearchService against an Algolia index,
// with a Redis read-through cache for whole search responses
type AlgoliaSearchService struct {
	index  *search.Index
	config *config.AlgoliaConfig
	rc     *redis.Client
}

// NewAlgoliaSearchService creates a new Algolia-backed search service
func NewAlgoliaSearchService(cfg *config.AlgoliaConfig, rc *redis.Client) SearchService {
	client := search.NewClient(cfg.AppID, cfg.SearchAPIKey)
	return &AlgoliaSearchService{
		index:  client.InitIndex(cfg.IndexName),
		config: cfg,
		rc:     rc,
	}
}

// Search runs a facet-filtered query against the index and returns the
// raw hits across all result pages.
func (s *AlgoliaSearchService) Search(ctx context.Context, query string, facets map[string][]string) ([]json.RawMessage, error) {
	cacheKey := s.cacheKey(query, facets)
	if s.rc != nil {
		if bs, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var hits []json.RawMessage
			if err := json.Unmarshal(bs, &hits); err == nil {
				return hits, nil
			}
		}
	}

	var hits []json.RawMessage
	for page := 0; ; page++ {
		res, err := s.index.Search(query,
			opt.AttributesToRetrieve(AlgoliaAttributesToRetrieve...),
			facetFilters(facets),
			opt.HitsPerPage(s.config.HitsPerPage),
			opt.Page(page),
		)
		if err != nil {
			return nil, fmt.Errorf("algolia search failed on page %d: %w", page, err)
		}

		for _, hit := range res.Hits {
			raw, err := json.Marshal(hit)
			if err != nil {
				return nil, fmt.Errorf("failed to serialize search hit: %w", err)
			}
			hits = append(hits, raw)
		}

		if page >= res.NbPages-1 {
			break
		}
	}

	if s.rc != nil {
		if bs, err := json.Marshal(hits); err == nil {
			if err := s.rc.Set(ctx, cacheKey, bs, s.config.CacheTTL).Err(); err != nil {
				log.Printf("Failed to cache search response: %v", err)
			}
		}
	}

	return hits, nil
}

func (s *AlgoliaSearchService) cacheKey(query string, facets map[string][]string) string {
	return "catalog:search:" + utils.ContentFilterHash(map[string]any{
		"index":  s.config.IndexName,
		"query":  query,
		"facets": facets,
	})
}

// facetFilters converts a validated facet param bag into Algolia facet
// filters: values of one facet are ORed, facets are ANDed together.
func facetFilters(facets map[string][]string) *opt.FacetFiltersOption {
	groups := make([]any, 0, len(facets))
	for facet, values := range facets {
		if len(values) == 1 {
			groups = append(groups, facet+":"+values[0])
			continue
		}
		ors := make([]any, 0, len(values))
		for _, value := range values {
			ors = append(ors, facet+":"+value)
		}
		groups = append(groups, opt.FacetFilterOr(ors...))
	}
	return opt.FacetFilterAnd(groups...)
}
