package backup

import (
	"strings"
	"time"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/models"
)

// ExportText renders logs as plain text blocks separated by blank lines:
//
//	[2024-05-15 09:00] [BugFixes]
//	Fixed login bug
//	--------------------------------------------------
func ExportText(logs []models.LogEntry, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	separator := strings.Repeat("-", constants.TextExportSeparatorWidth)

	blocks := make([]string, 0, len(logs))
	for _, l := range logs {
		when := l.Time
		if t, ok := l.CreatedAt(); ok {
			when = t.In(loc).Format(constants.DisplayTimeFormat)
		}
		var b strings.Builder
		b.WriteString("[" + when + "] [" + l.CategoryOrDefault() + "]\n")
		b.WriteString(l.Text + "\n")
		b.WriteString(separator)
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// TextFilename is the suggested name for a text export made on now's date.
func TextFilename(now time.Time) string {
	return constants.TextExportFilePrefix + now.Format(constants.DateFormat) + constants.TextExportFileSuffix
}
