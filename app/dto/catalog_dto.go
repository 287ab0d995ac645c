package dto

import (
	"time"
)

// CreateEnterpriseCatalogRequest represents the request to create a new enterprise catalog
type CreateEnterpriseCatalogRequest struct {
	// UUID is writable to allow importing existing catalogs and keeping the same identity
	UUID                       *string        `json:"uuid,omitempty" validate:"omitempty,uuid4"`
	Title                      string         `json:"title" validate:"required,max=255"`
	EnterpriseCustomer         string         `json:"enterprise_customer" validate:"required,uuid4"`
	EnterpriseCustomerName     string         `json:"enterprise_customer_name" validate:"required,max=255"`
	EnabledCourseModes         []string       `json:"enabled_course_modes,omitempty" validate:"omitempty,dive,oneof=verified audit professional"`
	PublishAuditEnrollmentURLs bool           `json:"publish_audit_enrollment_urls"`
	ContentFilter              map[string]any `json:"content_filter" validate:"required"`
	CatalogQueryUUID           *string        `json:"catalog_query_uuid,omitempty" validate:"omitempty,uuid4"`
	QueryTitle                 *string        `json:"query_title,omitempty" validate:"omitempty,max=255"`
	IncludeExecEd2UCourses     *bool          `json:"include_exec_ed_2u_courses,omitempty"`
}

// UpdateEnterpriseCatalogRequest represents the request to update an existing enterprise catalog.
// Query fields left out default to the catalog's current query.
type UpdateEnterpriseCatalogRequest struct {
	UUID                       string         `json:"-"`
	Title                      *string        `json:"title,omitempty" validate:"omitempty,max=255"`
	EnterpriseCustomerName     *string        `json:"enterprise_customer_name,omitempty" validate:"omitempty,max=255"`
	EnabledCourseModes         []string       `json:"enabled_course_modes,omitempty" validate:"omitempty,dive,oneof=verified audit professional"`
	PublishAuditEnrollmentURLs *bool          `json:"publish_audit_enrollment_urls,omitempty"`
	ContentFilter              map[string]any `json:"content_filter,omitempty"`
	CatalogQueryUUID           *string        `json:"catalog_query_uuid,omitempty" validate:"omitempty,uuid4"`
	QueryTitle                 *string        `json:"query_title,omitempty" validate:"omitempty,max=255"`
	IncludeExecEd2UCourses     *bool          `json:"include_exec_ed_2u_courses,omitempty"`
}

// EnterpriseCatalogResponse represents an enterprise catalog in responses
type EnterpriseCatalogResponse struct {
	UUID                   string     `json:"uuid"`
	Title                  string     `json:"title"`
	EnterpriseCustomer     string     `json:"enterprise_customer"`
	CatalogQueryUUID       *string    `json:"catalog_query_uuid,omitempty"`
	QueryTitle             *string    `json:"query_title,omitempty"`
	IncludeExecEd2UCourses bool       `json:"include_exec_ed_2u_courses"`
	CatalogModified        time.Time  `json:"catalog_modified"`
	ContentLastModified    *time.Time `json:"content_last_modified,omitempty"`
}

// GetCatalogContentRequest represents the request to list a catalog's content
type GetCatalogContentRequest struct {
	UUID     string `json:"-"`
	Page     int    `json:"-"`
	PageSize int    `json:"-"`
}

// CatalogContentResponse represents a page of enriched content metadata
type CatalogContentResponse struct {
	Count    int64            `json:"count"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Results  []map[string]any `json:"results"`
}
