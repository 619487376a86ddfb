package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/errors"
	"github.com/julianstephens/hourlog/internal/forms"
	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/storage"
	"github.com/julianstephens/hourlog/internal/summary"
	"github.com/julianstephens/hourlog/internal/tui/components/loglist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case storeChangedMsg:
		ev := storage.Event{Keys: msg.keys}
		if ev.Touches(storage.KeyCategories) {
			m.loadCategories()
		}
		if ev.Touches(storage.KeyLogs) || ev.Touches(storage.KeyCategories) {
			m.reload()
		}
		return m, waitForChange(m.events)
	}

	switch m.state {
	case StateAdd, StateEdit, StateSettings:
		return m.updateForm(msg)
	case StateSearch:
		return m.updateSearch(msg)
	}

	switch msg := msg.(type) {
	case loglist.AddLogMsg:
		return m.startAdd()
	case loglist.EditLogMsg:
		return m.startEdit(msg.Entry)
	case loglist.DeleteLogMsg:
		removed, err := m.rec.Delete(context.Background(), msg.ID)
		switch {
		case errors.IsNotFound(err):
			m.reload()
		case err != nil:
			m.setError(err)
		default:
			m.applyView(m.rec.View())
			m.setStatus("Deleted %q, press u to undo", summary.Truncate(removed.Text, 30))
		}
		return m, nil

	case tea.KeyMsg:
		criteria := m.view.Criteria
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Undo):
			restored, ok, err := m.rec.Undo(context.Background())
			switch {
			case err != nil:
				m.setError(err)
			case !ok:
				m.setStatus("Nothing to undo")
			default:
				m.applyView(m.rec.View())
				m.setStatus("Restored %q", summary.Truncate(restored.Text, 30))
			}
			return m, nil
		case key.Matches(msg, m.keys.Search):
			m.state = StateSearch
			m.search.SetValue(criteria.Search)
			return m, m.search.Focus()
		case key.Matches(msg, m.keys.Category):
			criteria.Category = m.nextCategory()
			m.setCriteria(criteria)
			return m, nil
		case key.Matches(msg, m.keys.Range):
			criteria.Range = nextRange(criteria.Range)
			m.setCriteria(criteria)
			return m, nil
		case key.Matches(msg, m.keys.Reset):
			m.search.SetValue("")
			m.setCriteria(summary.Criteria{})
			return m, nil
		case key.Matches(msg, m.keys.Settings):
			return m.startSettings()
		}
	}

	var cmd tea.Cmd
	if m.state == StateInsights {
		m.insights, cmd = m.insights.Update(msg)
	} else {
		m.logList, cmd = m.logList.Update(msg)
	}
	return m, cmd
}

// updateSearch filters as the user types. Enter keeps the query, esc drops it.
func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.search.Blur()
			m.state = StateLogs
			return m, nil
		case tea.KeyEsc:
			m.search.Blur()
			m.search.SetValue("")
			criteria := m.view.Criteria
			criteria.Search = ""
			m.setCriteria(criteria)
			m.state = StateLogs
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if criteria := m.view.Criteria; criteria.Search != m.search.Value() {
		criteria.Search = m.search.Value()
		m.setCriteria(criteria)
	}
	return m, cmd
}

func (m Model) startAdd() (tea.Model, tea.Cmd) {
	category := constants.FallbackCategory
	if len(m.categories) > 0 {
		category = m.categories[0].Name
	}
	m.entryForm = &forms.EntryFormModel{Category: category}
	m.form = forms.NewEntryForm(m.entryForm, m.categories)
	m.state = StateAdd
	return m, m.form.Init()
}

func (m Model) startEdit(entry models.LogEntry) (tea.Model, tea.Cmd) {
	m.editingID = entry.ID
	m.entryForm = &forms.EntryFormModel{Text: entry.Text, Category: entry.Category}
	m.form = forms.NewEntryForm(m.entryForm, m.categories)
	m.state = StateEdit
	return m, m.form.Init()
}

func (m Model) startSettings() (tea.Model, tea.Cmd) {
	settings, err := m.store.Settings(context.Background())
	if err != nil {
		m.setError(err)
		return m, nil
	}
	m.settingsForm = forms.NewSettingsFormModel(settings)
	m.form = forms.NewSettingsForm(m.settingsForm)
	m.state = StateSettings
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.form = nil
		m.state = StateLogs
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.submitForm()
		m.form = nil
		m.state = StateLogs
	case huh.StateAborted:
		m.form = nil
		m.state = StateLogs
	}
	return m, cmd
}

// submitForm applies the completed form for the current state.
func (m *Model) submitForm() {
	ctx := context.Background()
	switch m.state {
	case StateAdd:
		if _, err := m.rec.Append(ctx, m.entryForm.Text, m.entryForm.Category); err != nil {
			m.setError(err)
			return
		}
		m.applyView(m.rec.View())
		m.setStatus("Logged")
	case StateEdit:
		if _, err := m.rec.Update(ctx, m.editingID, m.entryForm.Text, m.entryForm.Category); err != nil {
			if errors.IsNotFound(err) {
				m.reload()
				m.setStatus("That entry no longer exists")
				return
			}
			m.setError(err)
			return
		}
		m.applyView(m.rec.View())
		m.setStatus("Updated")
	case StateSettings:
		settings, err := m.settingsForm.Settings()
		if err != nil {
			m.setError(err)
			return
		}
		if err := m.store.SaveSettings(ctx, settings); err != nil {
			m.setError(err)
			return
		}
		m.setStatus("Settings saved")
	}
}
