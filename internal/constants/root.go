package constants

import "time"

const (
	AppName            = "hourlog"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/hourlog/hourlog.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time-of-day format used for quiet hours (HH:MM)
	TimeFormat = "15:04"

	// DisplayTimeFormat is used when rendering a log entry's timestamp in exports and listings
	DisplayTimeFormat = "2006-01-02 15:04"

	// EntryTimeFormat is the ISO-8601 layout used when a log entry is created
	EntryTimeFormat = "2006-01-02T15:04:05.000Z07:00"

	// Log entry constraints
	MaxLogTextLength = 500
	RecentLogCount   = 3
	FallbackCategory = "Other"
	DefaultEmoji     = "📌"

	// Export constants
	TextExportSeparatorWidth = 50
	TextExportFilePrefix     = "hourly-logs-"
	TextExportFileSuffix     = ".txt"
	JSONBackupFilePrefix     = "hourly-logger-backup-"
	JSONBackupFileSuffix     = ".json"

	// Backup rotation constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "hourlog-"
	BackupFileSuffix = ".json"

	// Timer keys
	TimerPrimary = "primary"
	TimerSnooze  = "snooze"
	SnoozeDelay  = 15 * time.Minute

	// Notification constants
	ReminderNotificationID = "hourlog-reminder"
	ReminderTitle          = "Hourly Logger"
	ReminderMessage        = "Time to log your work! What did you accomplish?"
	SnoozedTitle           = "Hourly Logger - Snoozed Reminder"
	SnoozedMessage         = "Time to log your work!"
	ButtonLogNow           = "Log Now"
	ButtonSnooze           = "Snooze 15min"
	ButtonIndexLogNow      = 0
	ButtonIndexSnooze      = 1
	NotificationPriority   = 2

	// Notify constants
	NotifierLockfileName   = "hourlog-notifier.lock"
	DaemonLockfileName     = "hourlog-daemon.lock"
	NotificationDurationMs = 8000
	TrayAppIdentifier      = "com.julianstephens.hourlog"
	TrayExecutablePrefix   = "hourlog-tray"
	DaemonExecutablePrefix = "hourlog"
	SecretHeader           = "X-Hourlog-Secret"
	CallbackPath           = "/interaction"

	// Storage watch coalescing window
	WatchThrottle = 100 * time.Millisecond
)
