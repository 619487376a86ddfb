package summary

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/utils"
)

// CategoryCount is one row of the category breakdown.
type CategoryCount struct {
	Category   string
	Count      int
	Percentage float64
}

// AggregateByCategory counts logs per category, most frequent first. Ties
// keep the order in which categories first appear. Logs without a category
// count as "Other". An empty input yields an empty result.
func AggregateByCategory(logs []models.LogEntry) []CategoryCount {
	if len(logs) == 0 {
		return []CategoryCount{}
	}

	index := map[string]int{}
	out := []CategoryCount{}
	for _, l := range logs {
		name := l.CategoryOrDefault()
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryCount{Category: name})
		}
		out[i].Count++
	}

	total := float64(len(logs))
	for i := range out {
		out[i].Percentage = round1(float64(out[i].Count) / total * 100)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// Stats summarizes a log collection.
type Stats struct {
	Total     int
	Today     int
	Week      int
	AvgPerDay float64
}

// ComputeStats counts logs overall, since local midnight and over the last
// seven days. AvgPerDay divides the total by the number of distinct local
// calendar days that have a log.
func ComputeStats(logs []models.LogEntry, now time.Time) Stats {
	stats := Stats{Total: len(logs)}
	if len(logs) == 0 {
		return stats
	}

	today, _ := Cutoff(RangeToday, now)
	week, _ := Cutoff(RangeWeek, now)
	days := map[string]struct{}{}

	for _, l := range logs {
		t, ok := l.CreatedAt()
		if !ok {
			continue
		}
		if !t.Before(today) {
			stats.Today++
		}
		if !t.Before(week) {
			stats.Week++
		}
		days[utils.DayKey(t, now.Location())] = struct{}{}
	}

	if len(days) > 0 {
		stats.AvgPerDay = round1(float64(stats.Total) / float64(len(days)))
	}
	return stats
}

// round1 rounds half away from zero to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
