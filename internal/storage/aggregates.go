package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/hourlog/internal/models"
)

// Aggregates is the typed view over a Provider. Reads substitute the
// built-in defaults for aggregates that were never written.
type Aggregates struct {
	p Provider
}

func NewAggregates(p Provider) *Aggregates {
	return &Aggregates{p: p}
}

// Provider returns the underlying store.
func (a *Aggregates) Provider() Provider {
	return a.p
}

func (a *Aggregates) Logs(ctx context.Context) ([]models.LogEntry, error) {
	raw, err := a.get(ctx, KeyLogs)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []models.LogEntry{}, nil
	}
	logs := []models.LogEntry{}
	if err := json.Unmarshal(raw, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode logs: %w", err)
	}
	if logs == nil {
		logs = []models.LogEntry{}
	}
	return logs, nil
}

func (a *Aggregates) SaveLogs(ctx context.Context, logs []models.LogEntry) error {
	if logs == nil {
		logs = []models.LogEntry{}
	}
	return a.set(ctx, KeyLogs, logs)
}

func (a *Aggregates) Settings(ctx context.Context) (models.Settings, error) {
	raw, err := a.get(ctx, KeySettings)
	if err != nil {
		return models.Settings{}, err
	}
	if raw == nil {
		return models.DefaultSettings(), nil
	}
	settings, err := models.DecodeSettings(raw)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

func (a *Aggregates) SaveSettings(ctx context.Context, settings models.Settings) error {
	return a.set(ctx, KeySettings, settings)
}

func (a *Aggregates) Categories(ctx context.Context) ([]models.Category, error) {
	raw, err := a.get(ctx, KeyCategories)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return models.DefaultCategories(), nil
	}
	var categories []models.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (a *Aggregates) SaveCategories(ctx context.Context, categories []models.Category) error {
	if categories == nil {
		categories = []models.Category{}
	}
	return a.set(ctx, KeyCategories, categories)
}

func (a *Aggregates) Templates(ctx context.Context) ([]models.Template, error) {
	raw, err := a.get(ctx, KeyTemplates)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return models.DefaultTemplates(), nil
	}
	var templates []models.Template
	if err := json.Unmarshal(raw, &templates); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}
	if templates == nil {
		templates = []models.Template{}
	}
	return templates, nil
}

func (a *Aggregates) SaveTemplates(ctx context.Context, templates []models.Template) error {
	if templates == nil {
		templates = []models.Template{}
	}
	return a.set(ctx, KeyTemplates, templates)
}

// State reads all four aggregates.
func (a *Aggregates) State(ctx context.Context) (models.State, error) {
	var (
		st  models.State
		err error
	)
	if st.Logs, err = a.Logs(ctx); err != nil {
		return models.State{}, err
	}
	if st.Categories, err = a.Categories(ctx); err != nil {
		return models.State{}, err
	}
	if st.Templates, err = a.Templates(ctx); err != nil {
		return models.State{}, err
	}
	if st.Settings, err = a.Settings(ctx); err != nil {
		return models.State{}, err
	}
	return st, nil
}

// Replace overwrites all four aggregates in a single write.
func (a *Aggregates) Replace(ctx context.Context, st models.State) error {
	if st.Logs == nil {
		st.Logs = []models.LogEntry{}
	}
	if st.Categories == nil {
		st.Categories = []models.Category{}
	}
	if st.Templates == nil {
		st.Templates = []models.Template{}
	}
	values := make(map[Key][]byte, 4)
	for key, v := range map[Key]interface{}{
		KeyLogs:       st.Logs,
		KeyCategories: st.Categories,
		KeyTemplates:  st.Templates,
		KeySettings:   st.Settings,
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		values[key] = data
	}
	return a.p.Set(ctx, values)
}

// EnsureDefaults writes the default value of every aggregate that is
// missing from the store.
func (a *Aggregates) EnsureDefaults(ctx context.Context) error {
	existing, err := a.p.Get(ctx, AllKeys...)
	if err != nil {
		return err
	}
	defaults := map[Key]interface{}{
		KeyLogs:       []models.LogEntry{},
		KeyCategories: models.DefaultCategories(),
		KeyTemplates:  models.DefaultTemplates(),
		KeySettings:   models.DefaultSettings(),
	}
	values := map[Key][]byte{}
	for _, key := range AllKeys {
		if _, ok := existing[key]; ok {
			continue
		}
		data, err := json.Marshal(defaults[key])
		if err != nil {
			return fmt.Errorf("failed to encode default %s: %w", key, err)
		}
		values[key] = data
	}
	if len(values) == 0 {
		return nil
	}
	return a.p.Set(ctx, values)
}

// ResetDefaults restores the built-in categories, templates and settings
// in one write. Logs are left alone.
func (a *Aggregates) ResetDefaults(ctx context.Context) error {
	values := make(map[Key][]byte, 3)
	for key, v := range map[Key]interface{}{
		KeyCategories: models.DefaultCategories(),
		KeyTemplates:  models.DefaultTemplates(),
		KeySettings:   models.DefaultSettings(),
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode default %s: %w", key, err)
		}
		values[key] = data
	}
	return a.p.Set(ctx, values)
}

func (a *Aggregates) get(ctx context.Context, key Key) ([]byte, error) {
	values, err := a.p.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return values[key], nil
}

func (a *Aggregates) set(ctx context.Context, key Key, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := a.p.Set(ctx, map[Key][]byte{key: data}); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
