package summary

import (
	"fmt"
	"time"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/models"
)

// Recent returns up to n of the newest logs.
func Recent(logs []models.LogEntry, n int) []models.LogEntry {
	if n > len(logs) {
		n = len(logs)
	}
	if n < 0 {
		n = 0
	}
	return models.CloneLogs(logs[:n])
}

// TimeSinceLast describes how long ago the newest log was written, e.g.
// "12 min ago" or "2h 5m ago". It returns false when there is no log with a
// readable time.
func TimeSinceLast(logs []models.LogEntry, now time.Time) (string, bool) {
	if len(logs) == 0 {
		return "", false
	}
	t, ok := logs[0].CreatedAt()
	if !ok {
		return "", false
	}
	minutes := int(now.Sub(t) / time.Minute)
	if minutes < 60 {
		return fmt.Sprintf("%d min ago", minutes), true
	}
	return fmt.Sprintf("%dh %dm ago", minutes/60, minutes%60), true
}

// FormatTimeAgo renders a log time relative to now: "Just now", "5m ago",
// "3h ago", or the calendar date once a day has passed.
func FormatTimeAgo(l models.LogEntry, now time.Time) string {
	t, ok := l.CreatedAt()
	if !ok {
		return l.Time
	}
	minutes := int(now.Sub(t) / time.Minute)
	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%dh ago", minutes/60)
	}
	return t.In(now.Location()).Format(constants.DateFormat)
}

// Truncate shortens text to length runes, appending "..." when cut.
func Truncate(text string, length int) string {
	r := []rune(text)
	if len(r) <= length {
		return text
	}
	return string(r[:length]) + "..."
}
