package utils

// IsCourseRunActive checks whether a serialized course run is currently
// open to learners: it must be published, enrollable, and marketable.
func IsCourseRunActive(run map[string]any) bool {
	status, _ := run["status"].(string)
	isEnrollable, _ := run["is_enrollable"].(bool)
	isMarketable, _ := run["is_marketable"].(bool)
	return status == CourseRunStatusPublished && isEnrollable && isMarketable
}

// IsAnyCourseRunActive reports whether at least one of the serialized
// course runs nested under a course is active.
func IsAnyCourseRunActive(runs []any) bool {
	for _, raw := range runs {
		if run, ok := raw.(map[string]any); ok && IsCourseRunActive(run) {
			return true
		}
	}
	return false
}
