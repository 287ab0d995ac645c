package utils

// Content and enrollment constants
const (
	// ExecEd2UCourseType marks executive education courses sourced from 2U
	ExecEd2UCourseType = "executive-education-2u"

	// Course modes an enterprise may enable for its catalogs
	CourseModeVerified     = "verified"
	CourseModeAudit        = "audit"
	CourseModeProfessional = "professional"

	// CourseRunStatusPublished is the only run status visible to learners
	CourseRunStatusPublished = "published"
)

// Export constants
const (
	// DateFormat is the textual day format used in exported cells
	DateFormat = "2006-01-02"
)

// UTM constants applied to enterprise marketing URLs
const (
	UTMMediumKey        = "utm_medium"
	UTMSourceKey        = "utm_source"
	UTMMediumEnterprise = "enterprise"
)

// Pagination defaults for catalog content listings
const (
	DefaultContentPageSize = 100
	MaxContentPageSize     = 500
)
