package models

import (
	"strings"
	"time"

	"github.com/julianstephens/hourlog/internal/constants"
)

// LogEntry is a single free-text work log. The collection is kept newest-first.
type LogEntry struct {
	ID       int64  `json:"id"`       // creation time in Unix milliseconds, unique within the collection
	Text     string `json:"text"`     // trimmed, 1..500 characters
	Time     string `json:"time"`     // ISO-8601 creation timestamp, never edited
	Category string `json:"category"` // category name; may refer to a deleted category
}

// CreatedAt parses the entry's timestamp. The second return value is false
// when the stored timestamp cannot be parsed.
func (e LogEntry) CreatedAt() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, e.Time)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CategoryOrDefault returns the entry's category, or "Other" when it has none.
func (e LogEntry) CategoryOrDefault() string {
	if strings.TrimSpace(e.Category) == "" {
		return constants.FallbackCategory
	}
	return e.Category
}

// CloneLogs returns a shallow copy of logs so callers can mutate the slice
// without touching the original backing array.
func CloneLogs(logs []LogEntry) []LogEntry {
	out := make([]LogEntry, len(logs))
	copy(out, logs)
	return out
}
