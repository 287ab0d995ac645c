package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlearnhq/enterprise-catalog/utils"
)

func TestJSONMapRoundTrip(t *testing.T) {
	original := JSONMap{"key": "edX+TestX", "nested": map[string]any{"a": float64(1)}}

	value, err := original.Value()
	require.NoError(t, err)

	var scanned JSONMap
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, original, scanned)
}

func TestJSONMapScanNil(t *testing.T) {
	var m JSONMap
	require.NoError(t, m.Scan(nil))
	assert.Nil(t, m)
}

func TestJSONMapDeepCopy(t *testing.T) {
	original := JSONMap{
		"title": "Course",
		"course_runs": []any{
			map[string]any{"key": "run-1"},
		},
	}

	copied, err := original.DeepCopy()
	require.NoError(t, err)

	copied["title"] = "Changed"
	copiedRuns := copied["course_runs"].([]any)
	copiedRuns[0].(map[string]any)["key"] = "changed"

	assert.Equal(t, "Course", original["title"])
	originalRuns := original["course_runs"].([]any)
	assert.Equal(t, "run-1", originalRuns[0].(map[string]any)["key"])
}

func TestStringListRoundTrip(t *testing.T) {
	original := StringList{"verified", "audit"}

	value, err := original.Value()
	require.NoError(t, err)

	var scanned StringList
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, original, scanned)
}

func TestContentTypeValid(t *testing.T) {
	assert.True(t, ContentTypeCourse.Valid())
	assert.True(t, ContentTypeCourseRun.Valid())
	assert.True(t, ContentTypeProgram.Valid())
	assert.False(t, ContentType("webinar").Valid())

	_, err := ContentType("webinar").Value()
	assert.Error(t, err)
}

func TestIsExecEd2UCourse(t *testing.T) {
	execEd := &ContentMetadata{
		ContentType:  ContentTypeCourse,
		JSONMetadata: JSONMap{"course_type": utils.ExecEd2UCourseType},
	}
	assert.True(t, execEd.IsExecEd2UCourse())

	ocm := &ContentMetadata{
		ContentType:  ContentTypeCourse,
		JSONMetadata: JSONMap{"course_type": "verified-audit"},
	}
	assert.False(t, ocm.IsExecEd2UCourse())

	program := &ContentMetadata{
		ContentType:  ContentTypeProgram,
		JSONMetadata: JSONMap{"course_type": utils.ExecEd2UCourseType},
	}
	assert.False(t, program.IsExecEd2UCourse())
}

func TestContentMetadataModified(t *testing.T) {
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	record := &ContentMetadata{CreatedAt: created}
	assert.Equal(t, created, record.Modified())

	record.UpdatedAt = &updated
	assert.Equal(t, updated, record.Modified())
}

func TestCatalogQueryBeforeCreateDerivesHash(t *testing.T) {
	query := &CatalogQuery{
		ContentFilter: JSONMap{"content_type": "course"},
	}

	require.NoError(t, query.BeforeCreate(nil))

	assert.NotEqual(t, "", query.ContentFilterHash)
	assert.Equal(t, utils.ContentFilterHash(query.ContentFilter), query.ContentFilterHash)
	assert.NotEqual(t, "", query.UUID.String())
}
