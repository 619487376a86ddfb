package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/errors"
	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/utils"
)

// LogText trims text and checks it against the entry length limits.
// It returns the trimmed text that should be stored.
func LogText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", errors.NewValidation("text", "please enter something before saving")
	}
	if utf8.RuneCountInString(trimmed) > constants.MaxLogTextLength {
		return "", errors.NewValidation("text", "log is too long, keep it under %d characters", constants.MaxLogTextLength)
	}
	return trimmed, nil
}

// Settings checks a settings record before it is saved.
func Settings(s models.Settings) error {
	if s.ReminderInterval <= 0 {
		return errors.NewValidation("reminderInterval", "must be a positive number of minutes, got %d", s.ReminderInterval)
	}
	if !utils.ValidateTimeFormat(s.QuietHoursStart) {
		return errors.NewValidation("quietHoursStart", "invalid time %q (expected HH:MM)", s.QuietHoursStart)
	}
	if !utils.ValidateTimeFormat(s.QuietHoursEnd) {
		return errors.NewValidation("quietHoursEnd", "invalid time %q (expected HH:MM)", s.QuietHoursEnd)
	}
	return nil
}

// NewCategory validates a category about to be appended to existing and
// returns it with defaults applied.
func NewCategory(existing []models.Category, name, emoji string) (models.Category, error) {
	name = strings.TrimSpace(name)
	emoji = strings.TrimSpace(emoji)
	if name == "" {
		return models.Category{}, errors.NewValidation("name", "please enter a category name")
	}
	if models.FindCategory(existing, name) >= 0 {
		return models.Category{}, errors.NewValidation("name", "category %q already exists", name)
	}
	if emoji == "" {
		emoji = constants.DefaultEmoji
	}
	return models.Category{Name: name, Emoji: emoji}, nil
}

// NewTemplate validates a template about to be created.
func NewTemplate(name, text string) (models.Template, error) {
	name = strings.TrimSpace(name)
	text = strings.TrimSpace(text)
	if name == "" || text == "" {
		return models.Template{}, errors.NewValidation("template", "please enter both name and text")
	}
	return models.Template{Name: name, Text: text}, nil
}
