package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/openlearnhq/enterprise-catalog/utils"
	"gorm.io/gorm"
)

// CatalogQuery holds a content filter describing which content items
// belong to the catalogs that reference it. Queries are deduplicated by
// the (content_filter_hash, include_exec_ed_2u_courses) natural key,
// which is enforced by the database.
type CatalogQuery struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	UUID                   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_catalog_queries_uuid" json:"uuid"`
	ContentFilter          JSONMap    `gorm:"type:jsonb;not null" json:"content_filter"`
	ContentFilterHash      string     `gorm:"size:64;not null;uniqueIndex:uk_catalog_queries_hash_exec_ed,priority:1" json:"content_filter_hash"`
	IncludeExecEd2UCourses bool       `gorm:"not null;default:false;uniqueIndex:uk_catalog_queries_hash_exec_ed,priority:2" json:"include_exec_ed_2u_courses"`
	Title                  *string    `gorm:"size:255" json:"title,omitempty"`
	CreatedAt              time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt              *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (CatalogQuery) TableName() string {
	return "catalog_queries"
}

// BeforeCreate is called before creating a new record
func (q *CatalogQuery) BeforeCreate(tx *gorm.DB) error {
	if q.UUID == uuid.Nil {
		q.UUID = uuid.New()
	}
	if q.ContentFilterHash == "" {
		q.ContentFilterHash = utils.ContentFilterHash(q.ContentFilter)
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (q *CatalogQuery) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	q.UpdatedAt = &now
	return nil
}

// CatalogQueryFilter represents filter criteria for catalog queries
type CatalogQueryFilter struct {
	ID                     *uint      `json:"id,omitempty"`
	UUID                   *uuid.UUID `json:"uuid,omitempty"`
	ContentFilterHash      *string    `json:"content_filter_hash,omitempty"`
	IncludeExecEd2UCourses *bool      `json:"include_exec_ed_2u_courses,omitempty"`
	Title                  *string    `json:"title,omitempty"`
	CreatedAfter           *time.Time `json:"created_after,omitempty"`
	CreatedBefore          *time.Time `json:"created_before,omitempty"`
}
