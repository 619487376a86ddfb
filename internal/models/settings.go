package models

// Settings represents the reminder configuration shared by the daemon and the UI
type Settings struct {
	ReminderInterval  int    `json:"reminderInterval"`  // minutes between reminders
	QuietHoursEnabled bool   `json:"quietHoursEnabled"` // whether reminders are suppressed inside the quiet window
	QuietHoursStart   string `json:"quietHoursStart"`   // start of the quiet window, e.g. "22:00"
	QuietHoursEnd     string `json:"quietHoursEnd"`     // end of the quiet window, e.g. "08:00"; may be before start
	NotificationSound bool   `json:"notificationSound"` // whether reminders play a sound
}
