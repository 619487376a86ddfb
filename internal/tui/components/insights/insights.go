package insights

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/hourlog/internal/summary"
)

const barWidth = 20

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(16)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model shows the stats and the category breakdown of the whole collection.
type Model struct {
	viewport   viewport.Model
	stats      summary.Stats
	categories []summary.CategoryCount
	since      string
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetData replaces the figures. since is the time since the last log, empty
// when there is none.
func (m *Model) SetData(stats summary.Stats, categories []summary.CategoryCount, since string) {
	m.stats = stats
	m.categories = categories
	m.since = since
	m.Render()
}

func (m *Model) Render() {
	m.viewport.SetContent(m.Content())
}

// Content is the rendered panel without scrolling.
func (m Model) Content() string {
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Total logs", fmt.Sprint(m.stats.Total))
	row("Today", fmt.Sprint(m.stats.Today))
	row("Last 7 days", fmt.Sprint(m.stats.Week))
	row("Avg per day", fmt.Sprintf("%.1f", m.stats.AvgPerDay))
	if m.since != "" {
		row("Last log", m.since)
	}

	b.WriteString("\n")
	if len(m.categories) == 0 {
		b.WriteString(mutedStyle.Render("No logs yet."))
		return b.String()
	}
	for _, c := range m.categories {
		filled := int(c.Percentage / 100 * barWidth)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		b.WriteString(fmt.Sprintf("%s %s %d (%.1f%%)\n", labelStyle.Render(c.Category), barStyle.Render(bar), c.Count, c.Percentage))
	}
	return b.String()
}
