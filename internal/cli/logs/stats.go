package logs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosuri/uitable"

	"github.com/julianstephens/hourlog/internal/cli"
	"github.com/julianstephens/hourlog/internal/summary"
)

type StatsCmd struct {
	FilterFlags `embed:""`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	criteria, err := c.Criteria()
	if err != nil {
		return err
	}
	logs, err := ctx.Aggregates.Logs(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get logs: %w", err)
	}
	now := time.Now()

	stats := summary.ComputeStats(logs, now)
	fmt.Println("Statistics:")
	fmt.Printf("  Total logs:   %d\n", stats.Total)
	fmt.Printf("  Today:        %d\n", stats.Today)
	fmt.Printf("  This week:    %d\n", stats.Week)
	fmt.Printf("  Avg per day:  %.1f\n", stats.AvgPerDay)
	fmt.Println()

	breakdown := summary.AggregateByCategory(summary.Filter(logs, criteria, now))
	if len(breakdown) == 0 {
		fmt.Println("No data to display")
		return nil
	}
	fmt.Printf("Categories (%s):\n", criteria.Range)
	fmt.Println(CategoryTable(breakdown))
	return nil
}

// CategoryTable renders a category breakdown with a bar per row.
func CategoryTable(breakdown []summary.CategoryCount) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("CATEGORY", "COUNT", "SHARE", "")
	for _, cc := range breakdown {
		tbl.AddRow(cc.Category, cc.Count, fmt.Sprintf("%.1f%%", cc.Percentage), bar(cc.Percentage, 20))
	}
	tbl.RightAlign(1)
	tbl.RightAlign(2)
	return tbl
}

func bar(percentage float64, width int) string {
	n := int(percentage/100*float64(width) + 0.5)
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}
