package businessflow_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlearnhq/enterprise-catalog/app/dto"
	businessflow "github.com/openlearnhq/enterprise-catalog/business_flow"
	"github.com/openlearnhq/enterprise-catalog/config"
	"github.com/openlearnhq/enterprise-catalog/models"
	"github.com/openlearnhq/enterprise-catalog/repository"
	catalogtesting "github.com/openlearnhq/enterprise-catalog/testing"
	"github.com/openlearnhq/enterprise-catalog/utils"
)

func setupCatalogFlow(t *testing.T) (businessflow.CatalogFlow, *catalogtesting.TestDB) {
	t.Helper()

	testDB, err := catalogtesting.SetupTestDB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := testDB.TeardownTestDB(); err != nil {
			t.Logf("failed to teardown test database: %v", err)
		}
	})

	queryRepo := repository.NewCatalogQueryRepository(testDB.DB)
	catalogRepo := repository.NewEnterpriseCatalogRepository(testDB.DB)
	metadataRepo := repository.NewContentMetadataRepository(testDB.DB)
	queryFlow := businessflow.NewCatalogQueryFlow(queryRepo)

	flow := businessflow.NewCatalogFlow(
		catalogRepo,
		metadataRepo,
		queryFlow,
		nil,
		&config.EnterpriseConfig{LMSBaseURL: "https://lms.example.com"},
	)
	return flow, testDB
}

func TestCatalogFlowCRUD(t *testing.T) {
	flow, testDB := setupCatalogFlow(t)
	ctx := context.Background()

	createReq := &dto.CreateEnterpriseCatalogRequest{
		Title:                  "Engineering Catalog",
		EnterpriseCustomer:     uuid.New().String(),
		EnterpriseCustomerName: "Acme Corp",
		ContentFilter:          map[string]any{"content_type": "course"},
		QueryTitle:             utils.ToPtr("all courses"),
	}

	created, err := flow.CreateCatalog(ctx, createReq)
	require.NoError(t, err)
	assert.Equal(t, "Engineering Catalog", created.Title)
	require.NotNil(t, created.CatalogQueryUUID)
	assert.Equal(t, "all courses", *created.QueryTitle)
	assert.Nil(t, created.ContentLastModified)

	t.Run("catalogs with the same filter share a query", func(t *testing.T) {
		other, err := flow.CreateCatalog(ctx, &dto.CreateEnterpriseCatalogRequest{
			Title:                  "Second Catalog",
			EnterpriseCustomer:     uuid.New().String(),
			EnterpriseCustomerName: "Other Corp",
			ContentFilter:          map[string]any{"content_type": "course"},
		})
		require.NoError(t, err)
		assert.Equal(t, *created.CatalogQueryUUID, *other.CatalogQueryUUID)
		// Insert-only defaulting: the shared query keeps its title
		assert.Equal(t, "all courses", *other.QueryTitle)
	})

	t.Run("get returns the catalog", func(t *testing.T) {
		got, err := flow.GetCatalog(ctx, created.UUID)
		require.NoError(t, err)
		assert.Equal(t, created.UUID, got.UUID)
		assert.Equal(t, created.Title, got.Title)
	})

	t.Run("get missing catalog", func(t *testing.T) {
		_, err := flow.GetCatalog(ctx, uuid.New().String())
		require.Error(t, err)
		assert.True(t, businessflow.IsCatalogNotFound(err))
	})

	t.Run("update overwrites the current query in place", func(t *testing.T) {
		// The catalog's current query uuid is re-submitted by default,
		// so a changed filter rewrites that query rather than minting a
		// new one.
		updated, err := flow.UpdateCatalog(ctx, &dto.UpdateEnterpriseCatalogRequest{
			UUID:          created.UUID,
			Title:         utils.ToPtr("Renamed Catalog"),
			ContentFilter: map[string]any{"content_type": "program"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed Catalog", updated.Title)
		assert.Equal(t, *created.CatalogQueryUUID, *updated.CatalogQueryUUID)
		// Query title defaulted from the current query
		require.NotNil(t, updated.QueryTitle)
		assert.Equal(t, "all courses", *updated.QueryTitle)

		// Put the original filter back for the content listing below
		_, err = flow.UpdateCatalog(ctx, &dto.UpdateEnterpriseCatalogRequest{
			UUID:          created.UUID,
			ContentFilter: map[string]any{"content_type": "course"},
		})
		require.NoError(t, err)
	})

	t.Run("content listing is paginated and enriched", func(t *testing.T) {
		got, err := flow.GetCatalog(ctx, created.UUID)
		require.NoError(t, err)

		// Attach content to the catalog's current query
		queryRepo := repository.NewCatalogQueryRepository(testDB.DB)
		query, err := queryRepo.ByUUID(ctx, uuid.MustParse(*got.CatalogQueryUUID))
		require.NoError(t, err)
		require.NotNil(t, query)

		fixtures := catalogtesting.NewTestFixtures(testDB)
		_, err = fixtures.CreateTestContentMetadata(query, models.ContentTypeCourse, "edX+TestX", models.JSONMap{
			"key":           "edX+TestX",
			"marketing_url": "https://example.com/course/testx",
		})
		require.NoError(t, err)

		content, err := flow.GetCatalogContent(ctx, &dto.GetCatalogContentRequest{UUID: created.UUID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), content.Count)
		require.Len(t, content.Results, 1)

		result := content.Results[0]
		assert.Contains(t, result, "enrollment_url")
		assert.Contains(t, result, "content_last_modified")
		marketingURL, _ := result["marketing_url"].(string)
		assert.Contains(t, marketingURL, "utm_medium=enterprise")

		// The catalog detail now reports a content last modified time
		detail, err := flow.GetCatalog(ctx, created.UUID)
		require.NoError(t, err)
		assert.NotNil(t, detail.ContentLastModified)
	})
}
