// Package summary derives filtered views, category breakdowns and
// statistics from the log collection. Every function is pure: inputs are
// never modified and results depend only on the arguments.
package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/utils"
)

// DateRange restricts logs to a window ending at now.
type DateRange string

const (
	RangeNone  DateRange = ""
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
)

// Ranges lists the selectable ranges in display order.
var Ranges = []DateRange{RangeNone, RangeToday, RangeWeek, RangeMonth}

func (r DateRange) String() string {
	if r == RangeNone {
		return "all time"
	}
	return string(r)
}

// ParseDateRange accepts "", "all", "none", "today", "week" and "month".
func ParseDateRange(s string) (DateRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "none":
		return RangeNone, nil
	case "today":
		return RangeToday, nil
	case "week":
		return RangeWeek, nil
	case "month":
		return RangeMonth, nil
	}
	return RangeNone, fmt.Errorf("invalid date range %q (expected today, week, month or all)", s)
}

// Cutoff returns the earliest time included by r. The second value is false
// for RangeNone. Today starts at local midnight; week and month are rolling
// windows of 7 and 30 days.
func Cutoff(r DateRange, now time.Time) (time.Time, bool) {
	switch r {
	case RangeToday:
		return utils.StartOfDay(now), true
	case RangeWeek:
		return now.Add(-7 * 24 * time.Hour), true
	case RangeMonth:
		return now.Add(-30 * 24 * time.Hour), true
	default:
		return time.Time{}, false
	}
}

// Criteria are the predicates Filter applies. Zero values match everything.
type Criteria struct {
	Search   string
	Category string
	Range    DateRange
}

// IsZero reports whether c matches every log.
func (c Criteria) IsZero() bool {
	return c.Search == "" && c.Category == "" && c.Range == RangeNone
}

// Filter returns the logs matching all of c's predicates, in their original
// order. Search is a case-insensitive substring match on the text; category
// must match exactly. Logs whose time cannot be parsed never pass a date
// range.
func Filter(logs []models.LogEntry, c Criteria, now time.Time) []models.LogEntry {
	search := strings.ToLower(c.Search)
	cutoff, hasCutoff := Cutoff(c.Range, now)

	out := make([]models.LogEntry, 0, len(logs))
	for _, l := range logs {
		if search != "" && !strings.Contains(strings.ToLower(l.Text), search) {
			continue
		}
		if c.Category != "" && l.Category != c.Category {
			continue
		}
		if hasCutoff && !since(l, cutoff) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func since(l models.LogEntry, cutoff time.Time) bool {
	t, ok := l.CreatedAt()
	return ok && !t.Before(cutoff)
}
