package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/errors"
	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/validation"
)

// Snapshot is the JSON backup document. Every aggregate is always present.
type Snapshot struct {
	Logs       []models.LogEntry `json:"logs"`
	Categories []models.Category `json:"categories"`
	Templates  []models.Template `json:"templates"`
	Settings   models.Settings   `json:"settings"`
	ExportDate string            `json:"exportDate"`
}

// snapshotInput mirrors Snapshot with nullable fields so absent keys can be
// told apart from empty ones.
type snapshotInput struct {
	Logs       *[]models.LogEntry `json:"logs"`
	Categories *[]models.Category `json:"categories"`
	Templates  *[]models.Template `json:"templates"`
	Settings   json.RawMessage    `json:"settings"`
}

// Export encodes st as an indented snapshot stamped with now.
func Export(st models.State, now time.Time) ([]byte, error) {
	snap := Snapshot{
		Logs:       st.Logs,
		Categories: st.Categories,
		Templates:  st.Templates,
		Settings:   st.Settings,
		ExportDate: now.UTC().Format(constants.EntryTimeFormat),
	}
	if snap.Logs == nil {
		snap.Logs = []models.LogEntry{}
	}
	if snap.Categories == nil {
		snap.Categories = []models.Category{}
	}
	if snap.Templates == nil {
		snap.Templates = []models.Template{}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return data, nil
}

// Import decodes a snapshot. Malformed input, settings that fail validation,
// and logs with empty text or repeated ids all fail with a
// MalformedBackupError. Missing aggregates fall back to empty logs and the
// built-in categories, templates and settings.
func Import(data []byte) (models.State, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return models.State{}, &errors.MalformedBackupError{Err: fmt.Errorf("expected a JSON object")}
	}
	var in snapshotInput
	if err := json.Unmarshal(data, &in); err != nil {
		return models.State{}, &errors.MalformedBackupError{Err: err}
	}

	st := models.State{
		Logs:       []models.LogEntry{},
		Categories: models.DefaultCategories(),
		Templates:  models.DefaultTemplates(),
		Settings:   models.DefaultSettings(),
	}
	if in.Logs != nil && *in.Logs != nil {
		st.Logs = *in.Logs
	}
	if in.Categories != nil && *in.Categories != nil {
		st.Categories = *in.Categories
	}
	if in.Templates != nil && *in.Templates != nil {
		st.Templates = *in.Templates
	}
	if len(in.Settings) > 0 && string(in.Settings) != "null" {
		settings, err := models.DecodeSettings(in.Settings)
		if err != nil {
			return models.State{}, &errors.MalformedBackupError{Err: err}
		}
		st.Settings = settings
	}
	if err := validation.Settings(st.Settings); err != nil {
		return models.State{}, &errors.MalformedBackupError{Err: err}
	}
	if err := checkLogs(st.Logs); err != nil {
		return models.State{}, &errors.MalformedBackupError{Err: err}
	}
	return st, nil
}

func checkLogs(logs []models.LogEntry) error {
	seen := make(map[int64]struct{}, len(logs))
	for i, entry := range logs {
		if _, dup := seen[entry.ID]; dup {
			return fmt.Errorf("logs[%d]: duplicate id %d", i, entry.ID)
		}
		seen[entry.ID] = struct{}{}
		if _, err := validation.LogText(entry.Text); err != nil {
			return fmt.Errorf("logs[%d]: %w", i, err)
		}
	}
	return nil
}

// JSONFilename is the suggested name for a snapshot exported on now's date.
func JSONFilename(now time.Time) string {
	return constants.JSONBackupFilePrefix + now.Format(constants.DateFormat) + constants.JSONBackupFileSuffix
}
