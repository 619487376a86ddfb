package models

import (
	"encoding/json"

	"github.com/julianstephens/hourlog/internal/constants"
)

// DefaultSettings returns the settings written on first run.
func DefaultSettings() Settings {
	return Settings{
		ReminderInterval:  constants.DefaultReminderInterval,
		QuietHoursEnabled: constants.DefaultQuietHoursEnabled,
		QuietHoursStart:   constants.DefaultQuietHoursStart,
		QuietHoursEnd:     constants.DefaultQuietHoursEnd,
		NotificationSound: constants.DefaultNotificationSound,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.ReminderInterval <= 0 {
		settings.ReminderInterval = constants.DefaultReminderInterval
	}
	if settings.QuietHoursStart == "" {
		settings.QuietHoursStart = constants.DefaultQuietHoursStart
	}
	if settings.QuietHoursEnd == "" {
		settings.QuietHoursEnd = constants.DefaultQuietHoursEnd
	}
}

// DecodeSettings decodes a stored settings record. Fields absent from data
// keep their default value, so a partial record written by an older version
// still yields a complete Settings.
func DecodeSettings(data []byte) (Settings, error) {
	settings := DefaultSettings()
	if len(data) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, err
	}
	ApplyDefaultSettings(&settings)
	return settings, nil
}
