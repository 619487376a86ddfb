package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateAdd, StateEdit, StateSettings:
		if m.form != nil {
			content = docStyle.Render(m.form.View())
		}
	case StateInsights:
		content = docStyle.Render(m.insights.View())
	default:
		content = docStyle.Render(m.logList.View())
	}

	sections := []string{m.viewTabs(), m.viewHeader(), m.viewFilters()}
	if m.state == StateSearch {
		sections = append(sections, filterStyle.Render(m.search.View()))
	}
	sections = append(sections, content, m.viewStatus(), m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Logs", "Insights"} {
		if m.state == SessionState(i) || (i == 0 && m.state > StateInsights) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewHeader() string {
	s := m.view.Stats
	return headerStyle.Render(fmt.Sprintf("Today %d | Week %d | Total %d | Avg/day %.1f", s.Today, s.Week, s.Total, s.AvgPerDay))
}

func (m Model) viewFilters() string {
	c := m.view.Criteria
	category := c.Category
	if category == "" {
		category = "all"
	}
	line := fmt.Sprintf("Showing %d of %d | category: %s | range: %s", len(m.view.Filtered), len(m.view.Logs), category, c.Range)
	if c.Search != "" {
		line += fmt.Sprintf(" | search: %q", c.Search)
	}
	return filterStyle.Render(line)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}
