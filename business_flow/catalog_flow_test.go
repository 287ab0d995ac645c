package businessflow

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlearnhq/enterprise-catalog/config"
	"github.com/openlearnhq/enterprise-catalog/models"
	"github.com/openlearnhq/enterprise-catalog/repository"
	"github.com/openlearnhq/enterprise-catalog/utils"
)

type stubMetadataRepo struct {
	repository.ContentMetadataRepository
	children []*models.ContentMetadata
}

func (s *stubMetadataRepo) ChildRecords(ctx context.Context, parentContentKey string) ([]*models.ContentMetadata, error) {
	return s.children, nil
}

func enrichmentFlow(children []*models.ContentMetadata) *CatalogFlowImpl {
	return &CatalogFlowImpl{
		metadataRepo:     &stubMetadataRepo{children: children},
		enterpriseConfig: &config.EnterpriseConfig{LMSBaseURL: "https://lms.example.com"},
	}
}

func testCatalog() *models.EnterpriseCatalog {
	return &models.EnterpriseCatalog{
		UUID:           uuid.MustParse("11111111-1111-4111-8111-111111111111"),
		EnterpriseUUID: uuid.MustParse("22222222-2222-4222-8222-222222222222"),
		EnterpriseName: "Acme Corp",
		CreatedAt:      time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEnrichContentMetadataCourse(t *testing.T) {
	runKey := "course-v1:edX+TestX+1T2023"
	record := &models.ContentMetadata{
		ContentKey:  "edX+TestX",
		ContentType: models.ContentTypeCourse,
		JSONMetadata: models.JSONMap{
			"key":           "edX+TestX",
			"title":         "Intro to Testing",
			"marketing_url": "https://example.com/course/testx",
			"course_runs": []any{
				map[string]any{"key": runKey, "status": "published", "is_enrollable": true, "is_marketable": true},
			},
		},
		CreatedAt: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	children := []*models.ContentMetadata{
		{ContentKey: runKey, ContentType: models.ContentTypeCourseRun},
	}

	flow := enrichmentFlow(children)
	catalog := testCatalog()

	enriched, err := flow.EnrichContentMetadata(context.Background(), record, catalog, nil)
	require.NoError(t, err)

	enrollmentURL, _ := enriched["enrollment_url"].(string)
	assert.Contains(t, enrollmentURL, "https://lms.example.com/enterprise/22222222-2222-4222-8222-222222222222/course/edX+TestX/enroll/")
	assert.Contains(t, enrollmentURL, "catalog=11111111-1111-4111-8111-111111111111")
	assert.NotContains(t, enrollmentURL, "audit=true")

	assert.Equal(t, "https://lms.example.com/xapi/activities/course/edX+TestX", enriched["xapi_activity_id"])
	assert.Equal(t, true, enriched["active"])

	// Marketing URL carries the enterprise UTM context
	marketingURL, _ := enriched["marketing_url"].(string)
	parsed, err := url.Parse(marketingURL)
	require.NoError(t, err)
	assert.Equal(t, "enterprise", parsed.Query().Get(utils.UTMMediumKey))
	assert.Equal(t, "acme-corp", parsed.Query().Get(utils.UTMSourceKey))

	// Nested run picked up its own enrollment URL
	runs := enriched["course_runs"].([]any)
	run := runs[0].(map[string]any)
	runURL, _ := run["enrollment_url"].(string)
	assert.Contains(t, runURL, "/course/"+url.PathEscape(runKey)+"/enroll/")

	// The stored record is untouched
	storedRuns := record.JSONMetadata["course_runs"].([]any)
	_, mutated := storedRuns[0].(map[string]any)["enrollment_url"]
	assert.False(t, mutated)
	assert.NotContains(t, record.JSONMetadata, "enrollment_url")
}

func TestEnrichContentMetadataExecEd2UCourse(t *testing.T) {
	record := &models.ContentMetadata{
		ContentKey:  "2u+ExecX",
		ContentType: models.ContentTypeCourse,
		JSONMetadata: models.JSONMap{
			"key":         "2u+ExecX",
			"course_type": utils.ExecEd2UCourseType,
			"course_runs": []any{
				map[string]any{"key": "run-1", "status": "published", "is_enrollable": true, "is_marketable": true},
			},
		},
	}

	flow := enrichmentFlow(nil)

	enriched, err := flow.EnrichContentMetadata(context.Background(), record, testCatalog(), nil)
	require.NoError(t, err)

	// The course itself still gets an enrollment URL, but nested runs do not
	assert.NotNil(t, enriched["enrollment_url"])
	runs := enriched["course_runs"].([]any)
	_, hasRunURL := runs[0].(map[string]any)["enrollment_url"]
	assert.False(t, hasRunURL)
}

func TestEnrichContentMetadataProgram(t *testing.T) {
	record := &models.ContentMetadata{
		ContentKey:  "program-uuid",
		ContentType: models.ContentTypeProgram,
		JSONMetadata: models.JSONMap{
			"key":   "program-uuid",
			"title": "Testing at Scale",
		},
	}

	flow := enrichmentFlow(nil)

	enriched, err := flow.EnrichContentMetadata(context.Background(), record, testCatalog(), nil)
	require.NoError(t, err)

	value, present := enriched["enrollment_url"]
	assert.True(t, present)
	assert.Nil(t, value)
	assert.NotContains(t, enriched, "xapi_activity_id")
}

func TestEnrichContentMetadataAuditMode(t *testing.T) {
	record := &models.ContentMetadata{
		ContentKey:   "edX+TestX",
		ContentType:  models.ContentTypeCourseRun,
		JSONMetadata: models.JSONMap{"key": "edX+TestX"},
	}

	flow := enrichmentFlow(nil)
	catalog := testCatalog()
	catalog.PublishAuditEnrollmentURLs = true

	enriched, err := flow.EnrichContentMetadata(context.Background(), record, catalog, nil)
	require.NoError(t, err)

	enrollmentURL, _ := enriched["enrollment_url"].(string)
	assert.Contains(t, enrollmentURL, "audit=true")
}

func TestEnrichContentMetadataLastModified(t *testing.T) {
	recordTime := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	customerTime := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	record := &models.ContentMetadata{
		ContentKey:   "edX+TestX",
		ContentType:  models.ContentTypeProgram,
		JSONMetadata: models.JSONMap{"key": "edX+TestX"},
		CreatedAt:    recordTime,
	}

	flow := enrichmentFlow(nil)

	enriched, err := flow.EnrichContentMetadata(context.Background(), record, testCatalog(), &customerTime)
	require.NoError(t, err)

	assert.Equal(t, customerTime, enriched["content_last_modified"])
}
