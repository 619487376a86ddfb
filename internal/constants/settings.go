package constants

const (
	// Storage aggregate keys
	KeyLogs       = "logs"
	KeySettings   = "settings"
	KeyCategories = "categories"
	KeyTemplates  = "templates"

	// Default Settings Values
	DefaultReminderInterval  = 60 // minutes
	DefaultQuietHoursEnabled = false
	DefaultQuietHoursStart   = "22:00"
	DefaultQuietHoursEnd     = "08:00"
	DefaultNotificationSound = true
)
