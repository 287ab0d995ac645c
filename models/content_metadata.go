package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/openlearnhq/enterprise-catalog/utils"
	"gorm.io/gorm"
)

// ContentType represents the kind of content item a metadata record describes
type ContentType string

const (
	ContentTypeCourse    ContentType = "course"
	ContentTypeCourseRun ContentType = "courserun"
	ContentTypeProgram   ContentType = "program"
)

// String returns the string representation of the content type
func (t ContentType) String() string {
	return string(t)
}

// Valid checks if the content type is valid
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeCourse, ContentTypeCourseRun, ContentTypeProgram:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ContentType
func (t *ContentType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = ContentType(v)
	case []byte:
		*t = ContentType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ContentType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ContentType
func (t ContentType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid ContentType: %s", t)
	}
	return string(t), nil
}

// ContentMetadata represents a single content item (course, course run,
// or program). Records are created and refreshed by the ingestion
// pipeline; the API layer only reads them and enriches copies of the
// raw metadata blob at serialization time.
type ContentMetadata struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	ContentKey       string      `gorm:"size:255;not null;uniqueIndex:uk_content_metadata_content_key" json:"content_key"`
	ContentType      ContentType `gorm:"type:varchar(32);not null;index:idx_content_metadata_content_type" json:"content_type"`
	ParentContentKey *string     `gorm:"size:255;index:idx_content_metadata_parent_content_key" json:"parent_content_key,omitempty"`
	JSONMetadata     JSONMap     `gorm:"type:jsonb;not null" json:"json_metadata"`
	CreatedAt        time.Time   `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt        *time.Time  `json:"updated_at,omitempty"`

	// Relations
	CatalogQueries []CatalogQuery `gorm:"many2many:catalog_query_content_metadata" json:"catalog_queries,omitempty"`
}

// TableName returns the table name for the model
func (ContentMetadata) TableName() string {
	return "content_metadata"
}

// BeforeCreate is called before creating a new record
func (m *ContentMetadata) BeforeCreate(tx *gorm.DB) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (m *ContentMetadata) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	m.UpdatedAt = &now
	return nil
}

// Modified returns the record's last modification time, falling back to
// the creation time when the row was never updated.
func (m *ContentMetadata) Modified() time.Time {
	if m.UpdatedAt != nil {
		return *m.UpdatedAt
	}
	return m.CreatedAt
}

// IsExecEd2UCourse checks whether the record is an executive education
// course sourced from 2U. Enrollment for such courses is fulfilled via
// entitlements tied to the course itself, not to individual runs.
func (m *ContentMetadata) IsExecEd2UCourse() bool {
	return m.ContentType == ContentTypeCourse &&
		m.JSONMetadata.GetString("course_type") == utils.ExecEd2UCourseType
}

// MarketingURL returns the marketing url from the raw metadata, or ""
func (m *ContentMetadata) MarketingURL() string {
	return m.JSONMetadata.GetString("marketing_url")
}

// ContentMetadataFilter represents filter criteria for content metadata
type ContentMetadataFilter struct {
	ID               *uint        `json:"id,omitempty"`
	ContentKey       *string      `json:"content_key,omitempty"`
	ContentType      *ContentType `json:"content_type,omitempty"`
	ParentContentKey *string      `json:"parent_content_key,omitempty"`
	CreatedAfter     *time.Time   `json:"created_after,omitempty"`
	CreatedBefore    *time.Time   `json:"created_before,omitempty"`
}
