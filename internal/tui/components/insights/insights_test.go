package insights

import (
	"strings"
	"testing"

	"github.com/julianstephens/hourlog/internal/summary"
)

func TestContent(t *testing.T) {
	m := New(80, 20)
	if !strings.Contains(m.Content(), "No logs yet.") {
		t.Errorf("empty panel should say so, got %q", m.Content())
	}

	m.SetData(
		summary.Stats{Total: 4, Today: 1, Week: 3, AvgPerDay: 2},
		[]summary.CategoryCount{{Category: "BugFixes", Count: 3, Percentage: 75}, {Category: "Other", Count: 1, Percentage: 25}},
		"12 min ago",
	)
	content := m.Content()
	for _, want := range []string{"Total logs", "2.0", "12 min ago", "BugFixes", "3 (75.0%)", "1 (25.0%)"} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}
}
