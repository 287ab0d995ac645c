// Package testing provides test utilities and database setup for testing the catalog service
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/openlearnhq/enterprise-catalog/models"
	"github.com/openlearnhq/enterprise-catalog/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCatalogQuery creates a catalog query with a random content filter
func (tf *TestFixtures) CreateTestCatalogQuery(includeExecEd2UCourses bool) (*models.CatalogQuery, error) {
	contentFilter := models.JSONMap{
		"content_type": "course",
		"partner":      fmt.Sprintf("partner-%d", rand.Intn(100000)),
	}

	query := &models.CatalogQuery{
		ContentFilter:          contentFilter,
		IncludeExecEd2UCourses: includeExecEd2UCourses,
		Title:                  utils.ToPtr(fmt.Sprintf("test query %d", rand.Intn(100000))),
	}

	if err := tf.DB.DB.Create(query).Error; err != nil {
		return nil, fmt.Errorf("failed to create test catalog query: %w", err)
	}

	return query, nil
}

// CreateTestCatalog creates an enterprise catalog owned by the given query
func (tf *TestFixtures) CreateTestCatalog(query *models.CatalogQuery) (*models.EnterpriseCatalog, error) {
	catalog := &models.EnterpriseCatalog{
		Title:          fmt.Sprintf("test catalog %d", rand.Intn(100000)),
		EnterpriseUUID: uuid.New(),
		EnterpriseName: "Test Enterprise",
		CatalogQueryID: query.ID,
	}

	if err := tf.DB.DB.Create(catalog).Error; err != nil {
		return nil, fmt.Errorf("failed to create test catalog: %w", err)
	}
	catalog.CatalogQuery = query

	return catalog, nil
}

// CreateTestContentMetadata creates a content metadata record associated
// with the given query
func (tf *TestFixtures) CreateTestContentMetadata(query *models.CatalogQuery, contentType models.ContentType, contentKey string, jsonMetadata models.JSONMap) (*models.ContentMetadata, error) {
	if jsonMetadata == nil {
		jsonMetadata = models.JSONMap{"key": contentKey, "title": "Test Content"}
	}

	record := &models.ContentMetadata{
		ContentKey:   contentKey,
		ContentType:  contentType,
		JSONMetadata: jsonMetadata,
	}

	if err := tf.DB.DB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create test content metadata: %w", err)
	}

	if query != nil {
		if err := tf.DB.DB.Model(record).Association("CatalogQueries").Append(query); err != nil {
			return nil, fmt.Errorf("failed to associate content metadata with catalog query: %w", err)
		}
	}

	return record, nil
}
