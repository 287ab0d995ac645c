package services

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFacetsToQuery(t *testing.T) {
	t.Run("query key wins and is consumed", func(t *testing.T) {
		facets := url.Values{"query": []string{"abc"}, "content_type": []string{"course"}}

		assert.Equal(t, "abc", FacetsToQuery(facets))
		assert.NotContains(t, facets, "query")
		assert.Contains(t, facets, "content_type")
	})

	t.Run("legacy q alias", func(t *testing.T) {
		facets := url.Values{"q": []string{"xyz"}}

		assert.Equal(t, "xyz", FacetsToQuery(facets))
		assert.NotContains(t, facets, "q")
	})

	t.Run("query preferred over q", func(t *testing.T) {
		facets := url.Values{"query": []string{"first"}, "q": []string{"second"}}

		assert.Equal(t, "first", FacetsToQuery(facets))
		assert.Contains(t, facets, "q")
	})

	t.Run("first value only", func(t *testing.T) {
		facets := url.Values{"query": []string{"one", "two"}}

		assert.Equal(t, "one", FacetsToQuery(facets))
	})

	t.Run("empty bag", func(t *testing.T) {
		assert.Equal(t, "", FacetsToQuery(url.Values{}))
	})
}

func TestValidFacets(t *testing.T) {
	valid := ValidFacets()

	assert.Len(t, valid, len(AttributesForFaceting))
	assert.Contains(t, valid, "content_type")
	assert.Contains(t, valid, "partners.name")
	assert.Contains(t, valid, "skills.name")
	assert.NotContains(t, valid, "searchable(partners.name)")
}

func TestValidateQueryFacets(t *testing.T) {
	t.Run("all valid", func(t *testing.T) {
		facets := url.Values{
			"content_type": []string{"course"},
			"language":     []string{"English"},
		}

		assert.Empty(t, ValidateQueryFacets(facets))
	})

	t.Run("invalid reported", func(t *testing.T) {
		facets := url.Values{
			"content_type": []string{"course"},
			"bogus":        []string{"x"},
		}

		invalid := ValidateQueryFacets(facets)
		assert.Equal(t, []string{"bogus"}, invalid)
	})
}
