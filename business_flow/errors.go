// Package businessflow contains the core business logic and use cases for catalog workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Catalog query errors
	ErrCatalogQueryNotFound  = errors.New("catalog query not found")
	ErrCatalogQueryNotUnique = errors.New("catalog query violates the content filter natural key")
	ErrContentFilterRequired = errors.New("content filter is required")

	// Enterprise catalog errors
	ErrCatalogNotFound       = errors.New("enterprise catalog not found")
	ErrCatalogTitleRequired  = errors.New("catalog title is required")
	ErrEnterpriseUUIDInvalid = errors.New("enterprise customer UUID is invalid")

	// Content metadata errors
	ErrContentMetadataNotFound = errors.New("content metadata not found")

	// Search and export errors
	ErrInvalidFacets        = errors.New("unsupported facets in search query")
	ErrUnsupportedExportFmt = errors.New("unsupported export format")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsCatalogQueryNotUnique(err error) bool {
	return errors.Is(err, ErrCatalogQueryNotUnique)
}

func IsContentFilterRequired(err error) bool {
	return errors.Is(err, ErrContentFilterRequired)
}

func IsCatalogNotFound(err error) bool {
	return errors.Is(err, ErrCatalogNotFound)
}

func IsInvalidFacets(err error) bool {
	return errors.Is(err, ErrInvalidFacets)
}
