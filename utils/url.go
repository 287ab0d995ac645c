package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var slugStripPattern = regexp.MustCompile(`[^a-z0-9\s-]`)
var slugSpacePattern = regexp.MustCompile(`[\s-]+`)

// Slugify lowercases a display name and collapses it into a
// hyphen-separated identifier suitable for UTM source values.
func Slugify(name string) string {
	slug := slugStripPattern.ReplaceAllString(strings.ToLower(name), "")
	slug = slugSpacePattern.ReplaceAllString(strings.TrimSpace(slug), "-")
	return slug
}

// EnterpriseUTMContext returns the UTM parameters attached to marketing
// URLs served to a given enterprise.
func EnterpriseUTMContext(enterpriseName string) url.Values {
	return url.Values{
		UTMMediumKey: []string{UTMMediumEnterprise},
		UTMSourceKey: []string{Slugify(enterpriseName)},
	}
}

// UpdateQueryParameters merges the given parameters into the query
// string of rawURL. Existing parameters are preserved unless a key
// collides, in which case the supplied value wins.
func UpdateQueryParameters(rawURL string, params url.Values) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url %q: %w", rawURL, err)
	}

	query := parsed.Query()
	for key, values := range params {
		query[key] = values
	}
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}
