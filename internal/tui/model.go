package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/hourlog/internal/forms"
	"github.com/julianstephens/hourlog/internal/logstore"
	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/storage"
	"github.com/julianstephens/hourlog/internal/summary"
	"github.com/julianstephens/hourlog/internal/tui/components/insights"
	"github.com/julianstephens/hourlog/internal/tui/components/loglist"
)

type SessionState int

const (
	StateLogs SessionState = iota
	StateInsights
	StateSearch
	StateAdd
	StateEdit
	StateSettings
)

// tabCount is the number of states reachable with tab.
const tabCount = 2

// headerHeight covers tabs, stats line, filter line, status and help.
const headerHeight = 8

// storeChangedMsg reports a write by another process or the daemon.
type storeChangedMsg struct {
	keys []storage.Key
}

type Model struct {
	store    *storage.Aggregates
	rec      *logstore.Reconciler
	events   <-chan storage.Event
	now      func() time.Time
	state    SessionState
	keys     KeyMap
	help     help.Model
	logList  loglist.Model
	insights insights.Model
	search   textinput.Model

	form         *huh.Form
	entryForm    *forms.EntryFormModel
	settingsForm *forms.SettingsFormModel
	editingID    int64

	categories []models.Category
	view       logstore.View
	status     string
	statusErr  bool
	quitting   bool
	width      int
	height     int
}

// NewModel loads the logs and categories. events may be nil; otherwise each
// event reloads the affected aggregates.
func NewModel(store *storage.Aggregates, events <-chan storage.Event) Model {
	search := textinput.New()
	search.Placeholder = "search logs"
	search.Prompt = "/ "

	m := Model{
		store:    store,
		rec:      logstore.New(store),
		events:   events,
		now:      time.Now,
		state:    StateLogs,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		logList:  loglist.New(0, 0),
		insights: insights.New(0, 0),
		search:   search,
	}
	m.loadCategories()
	m.reload()
	return m
}

func (m Model) Init() tea.Cmd {
	return waitForChange(m.events)
}

// waitForChange blocks on the next storage event. A closed or nil channel
// stops watching.
func waitForChange(events <-chan storage.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return storeChangedMsg{keys: ev.Keys}
	}
}

func (m *Model) reload() {
	view, err := m.rec.Refresh(context.Background())
	if err != nil {
		m.setError(fmt.Errorf("failed to load logs: %w", err))
		return
	}
	m.applyView(view)
}

func (m *Model) loadCategories() {
	categories, err := m.store.Categories(context.Background())
	if err != nil {
		m.setError(fmt.Errorf("failed to load categories: %w", err))
		return
	}
	m.categories = categories
}

func (m *Model) applyView(view logstore.View) {
	m.view = view
	now := m.now()
	m.logList.SetLogs(view.Filtered, m.categories, now)
	since, _ := summary.TimeSinceLast(view.Logs, now)
	m.insights.SetData(view.Stats, view.Categories, since)
}

func (m *Model) setCriteria(c summary.Criteria) {
	m.applyView(m.rec.SetCriteria(c))
}

func (m *Model) setStatus(format string, args ...interface{}) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

// nextCategory cycles the category filter through "all" and every category.
func (m Model) nextCategory() string {
	current := m.view.Criteria.Category
	if current == "" {
		if len(m.categories) == 0 {
			return ""
		}
		return m.categories[0].Name
	}
	i := models.FindCategory(m.categories, current)
	if i < 0 || i+1 >= len(m.categories) {
		return ""
	}
	return m.categories[i+1].Name
}

func nextRange(r summary.DateRange) summary.DateRange {
	for i, candidate := range summary.Ranges {
		if candidate == r {
			return summary.Ranges[(i+1)%len(summary.Ranges)]
		}
	}
	return summary.RangeNone
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateLogs {
		keys = append(keys, m.keys.Add, m.keys.Edit, m.keys.Delete, m.keys.Undo, m.keys.Search)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Settings}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	if m.state == StateLogs {
		actions = []key.Binding{m.keys.Add, m.keys.Edit, m.keys.Delete, m.keys.Undo}
	}
	filters := []key.Binding{m.keys.Search, m.keys.Category, m.keys.Range, m.keys.Reset}

	return [][]key.Binding{global, navigation, actions, filters}
}

func (m *Model) resize() {
	h, v := docStyle.GetFrameSize()
	height := m.height - headerHeight - v
	if height < 1 {
		height = 1
	}
	m.logList.SetSize(m.width-h, height)
	m.insights.SetSize(m.width-h, height)
	m.search.Width = m.width - 6
}
