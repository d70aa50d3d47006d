package util

import "time"

// ISOTimestamp formats t in UTC with millisecond precision and a trailing Z.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// Today returns the current UTC date as YYYY-MM-DD, used to anchor prompts.
func Today(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}
