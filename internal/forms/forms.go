// Package forms holds the huh forms shared by the CLI and the TUI.
package forms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/utils"
	"github.com/julianstephens/hourlog/internal/validation"
)

type EntryFormModel struct {
	Text     string
	Category string
}

type SettingsFormModel struct {
	ReminderInterval  string
	QuietHoursEnabled bool
	QuietHoursStart   string
	QuietHoursEnd     string
	NotificationSound bool
}

// NewSettingsFormModel fills the form from stored settings.
func NewSettingsFormModel(s models.Settings) *SettingsFormModel {
	return &SettingsFormModel{
		ReminderInterval:  strconv.Itoa(s.ReminderInterval),
		QuietHoursEnabled: s.QuietHoursEnabled,
		QuietHoursStart:   s.QuietHoursStart,
		QuietHoursEnd:     s.QuietHoursEnd,
		NotificationSound: s.NotificationSound,
	}
}

// Settings converts the form back and validates the result.
func (fm *SettingsFormModel) Settings() (models.Settings, error) {
	interval, err := strconv.Atoi(strings.TrimSpace(fm.ReminderInterval))
	if err != nil {
		return models.Settings{}, fmt.Errorf("reminder interval must be a number of minutes")
	}
	s := models.Settings{
		ReminderInterval:  interval,
		QuietHoursEnabled: fm.QuietHoursEnabled,
		QuietHoursStart:   strings.TrimSpace(fm.QuietHoursStart),
		QuietHoursEnd:     strings.TrimSpace(fm.QuietHoursEnd),
		NotificationSound: fm.NotificationSound,
	}
	if err := validation.Settings(s); err != nil {
		return models.Settings{}, err
	}
	return s, nil
}

// CategoryOptions lists categories as "emoji name" options. An empty list
// offers the fallback category only.
func CategoryOptions(categories []models.Category) []huh.Option[string] {
	if len(categories) == 0 {
		return []huh.Option[string]{huh.NewOption(constants.FallbackCategory, constants.FallbackCategory)}
	}
	opts := make([]huh.Option[string], 0, len(categories))
	for _, c := range categories {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s %s", c.Emoji, c.Name), c.Name))
	}
	return opts
}

// entryCategoryOptions is CategoryOptions plus the entry's own category when
// the list no longer has it, so an edit keeps it unless the user picks another.
func entryCategoryOptions(categories []models.Category, current string) []huh.Option[string] {
	opts := CategoryOptions(categories)
	for _, o := range opts {
		if o.Value == current {
			return opts
		}
	}
	if current == "" {
		return append(opts, huh.NewOption("(none)", ""))
	}
	return append(opts, huh.NewOption(current+" (removed)", current))
}

// NewEntryForm asks for a log text and a category. The select starts on
// fm.Category.
func NewEntryForm(fm *EntryFormModel, categories []models.Category) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("What did you work on?").
				CharLimit(constants.MaxLogTextLength).
				Value(&fm.Text).
				Validate(func(s string) error {
					_, err := validation.LogText(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Category").
				Options(entryCategoryOptions(categories, fm.Category)...).
				Value(&fm.Category),
		),
	)
}

// NewTemplateForm offers the templates as a starting text. Choosing none
// leaves choice empty.
func NewTemplateForm(choice *string, templates []models.Template) *huh.Form {
	opts := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, t := range templates {
		opts = append(opts, huh.NewOption(t.Name, t.Text))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Template").
				Options(opts...).
				Value(choice),
		),
	)
}

func validateClock(s string) error {
	if !utils.ValidateTimeFormat(strings.TrimSpace(s)) {
		return fmt.Errorf("use HH:MM")
	}
	return nil
}

// NewSettingsForm edits the reminder settings.
func NewSettingsForm(fm *SettingsFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Reminder interval (min)").
				Value(&fm.ReminderInterval).
				Validate(func(s string) error {
					i, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return err
					}
					if i <= 0 {
						return fmt.Errorf("interval must be a positive number of minutes")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Quiet hours").
				Value(&fm.QuietHoursEnabled),
			huh.NewInput().
				Title("Quiet hours start").
				Description("HH:MM").
				Value(&fm.QuietHoursStart).
				Validate(validateClock),
			huh.NewInput().
				Title("Quiet hours end").
				Description("HH:MM, may be before the start").
				Value(&fm.QuietHoursEnd).
				Validate(validateClock),
			huh.NewConfirm().
				Title("Notification sound").
				Value(&fm.NotificationSound),
		),
	)
}

// NewConfirmForm asks a yes/no question.
func NewConfirmForm(title string, confirmed *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(confirmed),
		),
	)
}
