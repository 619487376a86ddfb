package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/logger"
	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/notifier"
)

// Outcome describes what a timer fire resulted in.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeSuppressed
	OutcomeNotified
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeNotified:
		return "notified"
	default:
		return "ignored"
	}
}

// SettingsSource supplies the current settings. Settings are re-read on
// every decision so edits made elsewhere apply without a restart.
type SettingsSource interface {
	Settings(ctx context.Context) (models.Settings, error)
}

// Scheduler owns the primary recurring reminder and the one-shot snooze.
type Scheduler struct {
	timers   Timers
	settings SettingsSource
	notifier notifier.Sender
}

func New(timers Timers, settings SettingsSource, sender notifier.Sender) *Scheduler {
	return &Scheduler{
		timers:   timers,
		settings: settings,
		notifier: sender,
	}
}

// Interval returns the reminder period configured by settings.
func Interval(settings models.Settings) time.Duration {
	minutes := settings.ReminderInterval
	if minutes <= 0 {
		minutes = constants.DefaultReminderInterval
	}
	return time.Duration(minutes) * time.Minute
}

// Arm replaces the primary timer with one firing every configured interval.
// The cancel is unconditional, so arming twice leaves exactly one timer.
func (s *Scheduler) Arm(settings models.Settings) error {
	s.timers.Clear(constants.TimerPrimary)
	interval := Interval(settings)
	if err := s.timers.Create(constants.TimerPrimary, TimerSpec{Period: interval}); err != nil {
		return fmt.Errorf("failed to arm reminder: %w", err)
	}
	logger.Info("Reminder armed", "interval", interval)
	return nil
}

// OnFire handles a fired timer. Primary reminders respect quiet hours;
// snoozed reminders are always shown.
func (s *Scheduler) OnFire(ctx context.Context, key string, now time.Time) (Outcome, error) {
	switch key {
	case constants.TimerPrimary:
		settings := s.currentSettings(ctx)
		if IsSuppressed(now, settings) {
			logger.Debug("Reminder suppressed by quiet hours", "time", now.Format(constants.TimeFormat))
			return OutcomeSuppressed, nil
		}
		return OutcomeNotified, s.notifier.Notify(ctx, ReminderNotification(settings))
	case constants.TimerSnooze:
		return OutcomeNotified, s.notifier.Notify(ctx, SnoozedNotification(s.currentSettings(ctx)))
	default:
		logger.Warn("Unknown timer fired", "key", key)
		return OutcomeIgnored, nil
	}
}

// OnSnoozeRequested schedules the snoozed reminder and dismisses the
// notification the request came from.
func (s *Scheduler) OnSnoozeRequested(ctx context.Context, notificationID string) error {
	if err := s.timers.Create(constants.TimerSnooze, TimerSpec{Delay: constants.SnoozeDelay}); err != nil {
		return fmt.Errorf("failed to schedule snooze: %w", err)
	}
	logger.Info("Reminder snoozed", "delay", constants.SnoozeDelay)
	if notificationID == "" {
		return nil
	}
	return s.notifier.Clear(ctx, notificationID)
}

func (s *Scheduler) currentSettings(ctx context.Context) models.Settings {
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		logger.Warn("Failed to read settings, using defaults", "error", err)
		return models.DefaultSettings()
	}
	return settings
}

// ReminderNotification builds the main reminder with its two actions.
func ReminderNotification(settings models.Settings) notifier.Notification {
	return notifier.Notification{
		ID:       constants.ReminderNotificationID,
		Title:    constants.ReminderTitle,
		Message:  constants.ReminderMessage,
		Buttons:  []string{constants.ButtonLogNow, constants.ButtonSnooze},
		Priority: constants.NotificationPriority,
		Silent:   !settings.NotificationSound,
	}
}

// SnoozedNotification builds the reminder shown when a snooze expires.
func SnoozedNotification(settings models.Settings) notifier.Notification {
	return notifier.Notification{
		ID:       constants.ReminderNotificationID,
		Title:    constants.SnoozedTitle,
		Message:  constants.SnoozedMessage,
		Priority: constants.NotificationPriority,
		Silent:   !settings.NotificationSound,
	}
}
