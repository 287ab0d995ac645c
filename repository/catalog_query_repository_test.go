package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlearnhq/enterprise-catalog/models"
	"github.com/openlearnhq/enterprise-catalog/repository"
	catalogtesting "github.com/openlearnhq/enterprise-catalog/testing"
	"github.com/openlearnhq/enterprise-catalog/utils"
)

func setupDB(t *testing.T) *catalogtesting.TestDB {
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

	return testDB
}

func TestCatalogQueryRepository(t *testing.T) {
	testDB := setupDB(t)
	repo := repository.NewCatalogQueryRepository(testDB.DB)
	ctx := context.Background()

	contentFilter := models.JSONMap{"content_type": "course", "partner": "edx"}
	hash := utils.ContentFilterHash(contentFilter)

	t.Run("GetOrCreate creates on first call", func(t *testing.T) {
		defaults := models.CatalogQuery{
			ContentFilter: contentFilter,
			Title:         utils.ToPtr("first title"),
		}

		query, created, err := repo.GetOrCreate(ctx, hash, false, defaults)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, hash, query.ContentFilterHash)
		assert.NotEqual(t, uuid.Nil, query.UUID)
	})

	t.Run("GetOrCreate reuses and ignores defaults", func(t *testing.T) {
		defaults := models.CatalogQuery{
			ContentFilter: contentFilter,
			Title:         utils.ToPtr("a different title"),
		}

		query, created, err := repo.GetOrCreate(ctx, hash, false, defaults)
		require.NoError(t, err)
		assert.False(t, created)
		require.NotNil(t, query.Title)
		assert.Equal(t, "first title", *query.Title)
	})

	t.Run("natural key includes the exec ed flag", func(t *testing.T) {
		query, created, err := repo.GetOrCreate(ctx, hash, true, models.CatalogQuery{ContentFilter: contentFilter})
		require.NoError(t, err)
		assert.True(t, created)
		assert.True(t, query.IncludeExecEd2UCourses)
	})

	t.Run("ByUUID and ByNaturalKey", func(t *testing.T) {
		existing, err := repo.ByNaturalKey(ctx, hash, false)
		require.NoError(t, err)
		require.NotNil(t, existing)

		byUUID, err := repo.ByUUID(ctx, existing.UUID)
		require.NoError(t, err)
		require.NotNil(t, byUUID)
		assert.Equal(t, existing.ID, byUUID.ID)

		missing, err := repo.ByUUID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("Update collision surfaces the violated constraint", func(t *testing.T) {
		otherFilter := models.JSONMap{"content_type": "program"}
		otherHash := utils.ContentFilterHash(otherFilter)
		other, created, err := repo.GetOrCreate(ctx, otherHash, false, models.CatalogQuery{ContentFilter: otherFilter})
		require.NoError(t, err)
		require.True(t, created)

		// Collide with the natural key of the first query
		other.ContentFilterHash = hash
		other.IncludeExecEd2UCourses = false

		err = repo.Update(ctx, *other)
		require.Error(t, err)

		constraint, ok := repository.UniqueViolation(err)
		assert.True(t, ok)
		assert.Equal(t, "uk_catalog_queries_hash_exec_ed", constraint)
	})
}

func TestContentMetadataRepository(t *testing.T) {
	testDB := setupDB(t)
	fixtures := catalogtesting.NewTestFixtures(testDB)
	repo := repository.NewContentMetadataRepository(testDB.DB)
	ctx := context.Background()

	query, err := fixtures.CreateTestCatalogQuery(false)
	require.NoError(t, err)

	course, err := fixtures.CreateTestContentMetadata(query, models.ContentTypeCourse, "edX+TestX", nil)
	require.NoError(t, err)

	runMetadata := models.JSONMap{"key": "course-v1:edX+TestX+1T2023"}
	run, err := fixtures.CreateTestContentMetadata(query, models.ContentTypeCourseRun, "course-v1:edX+TestX+1T2023", runMetadata)
	require.NoError(t, err)
	run.ParentContentKey = utils.ToPtr(course.ContentKey)
	require.NoError(t, testDB.DB.Save(run).Error)

	t.Run("ListByCatalogQuery is ordered and paginated", func(t *testing.T) {
		records, err := repo.ListByCatalogQuery(ctx, query.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "course-v1:edX+TestX+1T2023", records[0].ContentKey)
		assert.Equal(t, "edX+TestX", records[1].ContentKey)

		page, err := repo.ListByCatalogQuery(ctx, query.ID, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "edX+TestX", page[0].ContentKey)
	})

	t.Run("CountByCatalogQuery", func(t *testing.T) {
		count, err := repo.CountByCatalogQuery(ctx, query.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("LastModifiedByCatalogQuery", func(t *testing.T) {
		lastModified, err := repo.LastModifiedByCatalogQuery(ctx, query.ID)
		require.NoError(t, err)
		require.NotNil(t, lastModified)
		assert.False(t, lastModified.IsZero())

		empty, err := repo.LastModifiedByCatalogQuery(ctx, query.ID+1000)
		require.NoError(t, err)
		assert.Nil(t, empty)
	})

	t.Run("ChildRecords", func(t *testing.T) {
		children, err := repo.ChildRecords(ctx, course.ContentKey)
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, run.ContentKey, children[0].ContentKey)
	})

	t.Run("ByContentKey missing returns nil", func(t *testing.T) {
		record, err := repo.ByContentKey(ctx, "does-not-exist")
		require.NoError(t, err)
		assert.Nil(t, record)
	})
}
