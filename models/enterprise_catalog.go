package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/openlearnhq/enterprise-catalog/utils"
	"gorm.io/gorm"
)

// EnterpriseCatalog associates a single catalog query with one
// enterprise customer. Many catalogs may share the same query.
type EnterpriseCatalog struct {
	ID                         uint       `gorm:"primaryKey" json:"id"`
	UUID                       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_enterprise_catalogs_uuid" json:"uuid"`
	Title                      string     `gorm:"size:255;not null" json:"title"`
	EnterpriseUUID             uuid.UUID  `gorm:"type:uuid;not null;index:idx_enterprise_catalogs_enterprise_uuid" json:"enterprise_uuid"`
	EnterpriseName             string     `gorm:"size:255;not null" json:"enterprise_name"`
	CatalogQueryID             uint       `gorm:"not null;index:idx_enterprise_catalogs_catalog_query_id" json:"catalog_query_id"`
	EnabledCourseModes         StringList `gorm:"type:jsonb;not null" json:"enabled_course_modes"`
	PublishAuditEnrollmentURLs bool       `gorm:"not null;default:false" json:"publish_audit_enrollment_urls"`
	CreatedAt                  time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt                  *time.Time `json:"updated_at,omitempty"`

	// Relations
	CatalogQuery *CatalogQuery `gorm:"foreignKey:CatalogQueryID;references:ID" json:"catalog_query,omitempty"`
}

// TableName returns the table name for the model
func (EnterpriseCatalog) TableName() string {
	return "enterprise_catalogs"
}

// BeforeCreate is called before creating a new record
func (c *EnterpriseCatalog) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if len(c.EnabledCourseModes) == 0 {
		c.EnabledCourseModes = StringList{utils.CourseModeVerified}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *EnterpriseCatalog) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// Modified returns the catalog's last modification time, falling back
// to the creation time when the row was never updated.
func (c *EnterpriseCatalog) Modified() time.Time {
	if c.UpdatedAt != nil {
		return *c.UpdatedAt
	}
	return c.CreatedAt
}

// EnterpriseCatalogFilter represents filter criteria for enterprise catalogs
type EnterpriseCatalogFilter struct {
	ID             *uint      `json:"id,omitempty"`
	UUID           *uuid.UUID `json:"uuid,omitempty"`
	EnterpriseUUID *uuid.UUID `json:"enterprise_uuid,omitempty"`
	CatalogQueryID *uint      `json:"catalog_query_id,omitempty"`
	Title          *string    `json:"title,omitempty"`
	CreatedAfter   *time.Time `json:"created_after,omitempty"`
	CreatedBefore  *time.Time `json:"created_before,omitempty"`
}
