package scheduler

import (
	"time"

	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/utils"
)

// IsSuppressed reports whether reminders are muted at now's local time of day.
//
// A window whose start is before its end covers [start, end). Otherwise the
// window wraps midnight and covers now >= start or now < end, which makes
// start == end a full-day window. Unparseable bounds never suppress.
func IsSuppressed(now time.Time, settings models.Settings) bool {
	if !settings.QuietHoursEnabled {
		return false
	}

	start, err := utils.ParseTimeToMinutes(settings.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := utils.ParseTimeToMinutes(settings.QuietHoursEnd)
	if err != nil {
		return false
	}
	current := utils.MinutesOfDay(now)

	if start < end {
		return current >= start && current < end
	}
	return current >= start || current < end
}
