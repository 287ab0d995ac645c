package businessflow_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businessflow "github.com/openlearnhq/enterprise-catalog/business_flow"
	"github.com/openlearnhq/enterprise-catalog/models"
	"github.com/openlearnhq/enterprise-catalog/repository"
	catalogtesting "github.com/openlearnhq/enterprise-catalog/testing"
	"github.com/openlearnhq/enterprise-catalog/utils"
)

func setupResolver(t *testing.T) (businessflow.CatalogQueryFlow, repository.CatalogQueryRepository) {
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

	repo := repository.NewCatalogQueryRepository(testDB.DB)
	return businessflow.NewCatalogQueryFlow(repo), repo
}

func TestFindAndModifyCatalogQuery(t *testing.T) {
	flow, repo := setupResolver(t)
	ctx := context.Background()

	contentFilter := models.JSONMap{"content_type": "course", "partner": "edx"}

	t.Run("empty filter is rejected", func(t *testing.T) {
		_, err := flow.FindAndModifyCatalogQuery(ctx, nil, nil, nil, false)
		require.Error(t, err)
		assert.True(t, businessflow.IsContentFilterRequired(err))
	})

	t.Run("no uuid creates then reuses", func(t *testing.T) {
		first, err := flow.FindAndModifyCatalogQuery(ctx, contentFilter, nil, utils.ToPtr("created title"), false)
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := flow.FindAndModifyCatalogQuery(ctx, contentFilter, nil, utils.ToPtr("another title"), false)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		require.NotNil(t, second.Title)
		assert.Equal(t, "created title", *second.Title)
	})

	t.Run("key order does not matter", func(t *testing.T) {
		reordered := models.JSONMap{"partner": "edx", "content_type": "course"}

		resolved, err := flow.FindAndModifyCatalogQuery(ctx, reordered, nil, nil, false)
		require.NoError(t, err)

		existing, err := repo.ByNaturalKey(ctx, utils.ContentFilterHash(contentFilter), false)
		require.NoError(t, err)
		require.NotNil(t, existing)
		assert.Equal(t, existing.ID, resolved.ID)
	})

	t.Run("exec ed flag splits the key", func(t *testing.T) {
		plain, err := flow.FindAndModifyCatalogQuery(ctx, contentFilter, nil, nil, false)
		require.NoError(t, err)

		execEd, err := flow.FindAndModifyCatalogQuery(ctx, contentFilter, nil, nil, true)
		require.NoError(t, err)
		assert.NotEqual(t, plain.ID, execEd.ID)
	})

	t.Run("known uuid forces an overwrite", func(t *testing.T) {
		filter := models.JSONMap{"content_type": "program"}
		created, err := flow.FindAndModifyCatalogQuery(ctx, filter, nil, utils.ToPtr("old title"), false)
		require.NoError(t, err)

		newFilter := models.JSONMap{"content_type": "program", "status": "active"}
		updated, err := flow.FindAndModifyCatalogQuery(ctx, newFilter, &created.UUID, utils.ToPtr("new title"), false)
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, utils.ContentFilterHash(newFilter), updated.ContentFilterHash)
		require.NotNil(t, updated.Title)
		assert.Equal(t, "new title", *updated.Title)
	})

	t.Run("overwrite onto an occupied key is rejected", func(t *testing.T) {
		filterA := models.JSONMap{"subject": "math"}
		filterB := models.JSONMap{"subject": "physics"}

		_, err := flow.FindAndModifyCatalogQuery(ctx, filterA, nil, nil, false)
		require.NoError(t, err)

		queryB, err := flow.FindAndModifyCatalogQuery(ctx, filterB, nil, nil, false)
		require.NoError(t, err)

		// Steering queryB's filter onto filterA's natural key must fail
		_, err = flow.FindAndModifyCatalogQuery(ctx, filterA, &queryB.UUID, nil, false)
		require.Error(t, err)
		assert.True(t, businessflow.IsCatalogQueryNotUnique(err))

		businessErr, ok := err.(*businessflow.BusinessError)
		require.True(t, ok)
		assert.Contains(t, businessErr.Message, "uk_catalog_queries_hash_exec_ed")
	})

	t.Run("unknown uuid falls back to get or create", func(t *testing.T) {
		filter := models.JSONMap{"subject": "chemistry"}
		wantUUID := uuid.New()

		resolved, err := flow.FindAndModifyCatalogQuery(ctx, filter, &wantUUID, nil, false)
		require.NoError(t, err)
		assert.Equal(t, wantUUID, resolved.UUID)

		// A second call with yet another unknown uuid reuses the row
		// instead of re-keying it
		otherUUID := uuid.New()
		reused, err := flow.FindAndModifyCatalogQuery(ctx, filter, &otherUUID, nil, false)
		require.NoError(t, err)
		assert.Equal(t, resolved.ID, reused.ID)
		assert.Equal(t, wantUUID, reused.UUID)
	})
}
