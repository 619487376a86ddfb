package logs

import (
	"context"
	"fmt"
	"time"

	"github.com/gosuri/uitable"

	"github.com/julianstephens/hourlog/internal/cli"
	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/summary"
)

// FilterFlags are the search, category and date range shared by list,
// stats and export.
type FilterFlags struct {
	Search   string `short:"s" help:"Case-insensitive text search."`
	Category string `short:"c" help:"Only logs in this category."`
	Range    string `short:"r" help:"Date range (all|today|week|month)." default:"all" enum:"all,today,week,month"`
}

func (f FilterFlags) Criteria() (summary.Criteria, error) {
	r, err := summary.ParseDateRange(f.Range)
	if err != nil {
		return summary.Criteria{}, err
	}
	return summary.Criteria{Search: f.Search, Category: f.Category, Range: r}, nil
}

type ListCmd struct {
	FilterFlags `embed:""`
	Limit int `short:"n" help:"Show at most this many logs (0 = all)." default:"0"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	criteria, err := c.Criteria()
	if err != nil {
		return err
	}
	r := ctx.Reconciler()
	if _, err := r.Refresh(context.Background()); err != nil {
		return fmt.Errorf("failed to get logs: %w", err)
	}
	view := r.SetCriteria(criteria)

	logs := view.Filtered
	if len(logs) == 0 {
		fmt.Println("No logs found")
		return nil
	}
	if c.Limit > 0 && len(logs) > c.Limit {
		logs = logs[:c.Limit]
	}

	fmt.Println(LogTable(logs, time.Local))
	if len(logs) < len(view.Filtered) {
		fmt.Printf("\n%d of %d logs shown\n", len(logs), len(view.Filtered))
	}
	return nil
}

// LogTable renders logs with their id, local time, category and text.
func LogTable(logs []models.LogEntry, loc *time.Location) *uitable.Table {
	tbl := uitable.New()
	tbl.MaxColWidth = 80
	tbl.Wrap = true
	tbl.AddRow("ID", "TIME", "CATEGORY", "TEXT")
	for _, l := range logs {
		when := l.Time
		if t, ok := l.CreatedAt(); ok {
			when = t.In(loc).Format(constants.DisplayTimeFormat)
		}
		tbl.AddRow(l.ID, when, l.CategoryOrDefault(), l.Text)
	}
	return tbl
}
