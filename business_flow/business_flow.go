// Package businessflow contains the business logic for the application.
package businessflow

const (
	RequestIDKey  = "X-Request-ID"
	CancelFuncKey = "cancel-func"
)

// Pagination bounds a content listing request
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize clamps the pagination to sane defaults
func (p *Pagination) Normalize(defaultSize, maxSize int) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if p.PageSize > maxSize {
		p.PageSize = maxSize
	}
}

// Offset returns the row offset for the normalized page
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}
