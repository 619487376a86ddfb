package loglist

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/summary"
)

const titleLength = 80

type AddLogMsg struct{}

type DeleteLogMsg struct {
	ID int64
}

type EditLogMsg struct {
	Entry models.LogEntry
}

type Item struct {
	Entry models.LogEntry
	Emoji string
	Ago   string
}

func (i Item) Title() string { return summary.Truncate(i.Entry.Text, titleLength) }
func (i Item) Description() string {
	return fmt.Sprintf("%s %s | %s", i.Emoji, i.Entry.CategoryOrDefault(), i.Ago)
}
func (i Item) FilterValue() string { return i.Entry.Text }

type KeyMap struct {
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "log"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Logs"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	// Filtering goes through summary.Filter so the stats agree with the list.
	l.SetFilteringEnabled(false)

	return Model{list: l, keys: DefaultKeyMap()}
}

// SetLogs replaces the listed entries. Emojis come from categories; unknown
// categories get the default emoji.
func (m *Model) SetLogs(logs []models.LogEntry, categories []models.Category, now time.Time) {
	emoji := make(map[string]string, len(categories))
	for _, c := range categories {
		emoji[c.Name] = c.Emoji
	}
	items := make([]list.Item, len(logs))
	for i, l := range logs {
		e, ok := emoji[l.CategoryOrDefault()]
		if !ok {
			e = constants.DefaultEmoji
		}
		items[i] = Item{Entry: l, Emoji: e, Ago: summary.FormatTimeAgo(l, now)}
	}
	m.list.SetItems(items)
}

// Selected returns the highlighted entry.
func (m Model) Selected() (models.LogEntry, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Entry, ok
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddLogMsg{} }
		case key.Matches(msg, m.keys.Edit):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return EditLogMsg{Entry: i.Entry} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteLogMsg{ID: i.Entry.ID} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No logs match.\n  Press 'a' to write one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Add, m.keys.Edit, m.keys.Delete}
}
