package services

import (
	"net/url"
	"strings"
)

// AttributesForFaceting mirrors the index configuration: the facets a
// search request may filter on. Entries wrapped in searchable() are
// facets whose values are themselves searchable in the index.
var AttributesForFaceting = []string{
	"availability",
	"content_type",
	"course_type",
	"language",
	"learning_type",
	"level_type",
	"program_type",
	"searchable(partners.name)",
	"searchable(programs)",
	"searchable(program_titles)",
	"searchable(skills.name)",
	"searchable(subjects)",
}

// FacetsToQuery extracts the free-text search query out of a facet
// param bag, preferring the query key over its legacy q alias. The
// consumed key is removed so the remaining keys are pure facets.
func FacetsToQuery(facets url.Values) string {
	if values := facets["query"]; len(values) > 0 {
		facets.Del("query")
		return values[0]
	}
	if values := facets["q"]; len(values) > 0 {
		facets.Del("q")
		return values[0]
	}
	return ""
}

// ValidFacets returns the facet names a query may filter on, with the
// searchable() wrapper stripped.
func ValidFacets() []string {
	valid := make([]string, 0, len(AttributesForFaceting))
	for _, facet := range AttributesForFaceting {
		facet = strings.TrimSuffix(strings.TrimPrefix(facet, "searchable("), ")")
		valid = append(valid, facet)
	}
	return valid
}

// ValidateQueryFacets verifies that the provided facet params are valid
// index facets, returning the unrecognized ones for the caller to
// reject.
func ValidateQueryFacets(facets url.Values) []string {
	valid := ValidFacets()

	var invalid []string
	for facet := range facets {
		found := false
		for _, v := range valid {
			if facet == v {
				found = true
				break
			}
		}
		if !found {
			invalid = append(invalid, facet)
		}
	}
	return invalid
}
