package dto

// SearchExportRequest represents the request to export search results
type SearchExportRequest struct {
	// Query is the free-text search string extracted from the params
	Query string `json:"-"`
	// Facets maps the remaining validated facet params to their values
	Facets map[string][]string `json:"-"`
	// Format is either csv or xlsx
	Format string `json:"-" validate:"oneof=csv xlsx"`
}

// SearchExportResponse carries the rendered export document
type SearchExportResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}
