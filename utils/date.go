package utils

import (
	"time"

	"github.com/araddon/dateparse"
)

// ParseDay normalizes an ISO-ish date string to the YYYY-MM-DD export
// format.
func ParseDay(s string) (string, error) {
	parsed, err := dateparse.ParseAny(s)
	if err != nil {
		return "", err
	}
	return parsed.Format(DateFormat), nil
}

// UnixDay formats a unix-seconds timestamp as a YYYY-MM-DD day.
func UnixDay(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(DateFormat)
}
