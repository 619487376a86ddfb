package logs

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/hourlog/internal/cli"
	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/summary"
)

// StatusCmd shows the last few logs and how long ago the newest one was.
type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	logs, err := ctx.Aggregates.Logs(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get logs: %w", err)
	}
	now := time.Now()

	if since, ok := summary.TimeSinceLast(logs, now); ok {
		fmt.Printf("Last log: %s\n\n", since)
	}

	recent := summary.Recent(logs, constants.RecentLogCount)
	if len(recent) == 0 {
		fmt.Println("No recent logs")
		return nil
	}
	fmt.Println("Recent logs:")
	for _, l := range recent {
		fmt.Printf("  [%s] %s\n", l.CategoryOrDefault(), summary.FormatTimeAgo(l, now))
		fmt.Printf("      %s\n", summary.Truncate(l.Text, 60))
	}
	return nil
}
