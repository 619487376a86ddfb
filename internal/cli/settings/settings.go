package settings

import (
	"context"
	"fmt"

	"github.com/julianstephens/hourlog/internal/cli"
	"github.com/julianstephens/hourlog/internal/forms"
	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/validation"
)

type SettingsCmd struct {
	List        bool `help:"List current settings."`
	Reset       bool `help:"Restore default settings, categories and templates."`
	Interactive bool `short:"i" help:"Edit settings in a form."`

	Interval   *int    `help:"Minutes between reminders."`
	QuietHours *bool   `help:"Enable or disable quiet hours."`
	QuietStart *string `help:"Start of quiet hours (HH:MM)."`
	QuietEnd   *string `help:"End of quiet hours (HH:MM)."`
	Sound      *bool   `help:"Play a sound with reminders."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	if c.Reset {
		if err := ctx.Aggregates.ResetDefaults(bg); err != nil {
			return fmt.Errorf("failed to reset settings: %w", err)
		}
		fmt.Println("✓ Settings, categories and templates reset to defaults.")
		return nil
	}

	settings, err := ctx.Aggregates.Settings(bg)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		printSettings(settings)
		return nil
	}

	updated := false
	if c.Interactive {
		fm := forms.NewSettingsFormModel(settings)
		if err := forms.NewSettingsForm(fm).Run(); err != nil {
			return err
		}
		if settings, err = fm.Settings(); err != nil {
			return err
		}
		updated = true
	}
	if c.Interval != nil {
		settings.ReminderInterval = *c.Interval
		updated = true
	}
	if c.QuietHours != nil {
		settings.QuietHoursEnabled = *c.QuietHours
		updated = true
	}
	if c.QuietStart != nil {
		settings.QuietHoursStart = *c.QuietStart
		updated = true
	}
	if c.QuietEnd != nil {
		settings.QuietHoursEnd = *c.QuietEnd
		updated = true
	}
	if c.Sound != nil {
		settings.NotificationSound = *c.Sound
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := validation.Settings(settings); err != nil {
		return err
	}
	if err := ctx.Aggregates.SaveSettings(bg, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}

func printSettings(s models.Settings) {
	fmt.Println("Current Settings:")
	fmt.Printf("  Reminder Interval:   %d min\n", s.ReminderInterval)
	fmt.Printf("  Quiet Hours:         %v\n", s.QuietHoursEnabled)
	fmt.Printf("  Quiet Hours Window:  %s - %s\n", s.QuietHoursStart, s.QuietHoursEnd)
	fmt.Printf("  Notification Sound:  %v\n", s.NotificationSound)
}
