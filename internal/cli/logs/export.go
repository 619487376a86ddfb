package logs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/hourlog/internal/backup"
	"github.com/julianstephens/hourlog/internal/cli"
)

type ExportCmd struct {
	FilterFlags `embed:""`
	Format string `arg:"" optional:"" help:"Export format (text|json)." enum:"text,json" default:"text"`
	Output string `short:"o" help:"Output file or directory. Defaults to a dated file in the current directory. Use - for stdout." default:"."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	now := time.Now()

	var (
		data []byte
		name string
	)
	switch c.Format {
	case "json":
		st, err := ctx.Aggregates.State(bg)
		if err != nil {
			return fmt.Errorf("failed to read store: %w", err)
		}
		if data, err = backup.Export(st, now); err != nil {
			return err
		}
		name = backup.JSONFilename(now)
	default:
		criteria, err := c.Criteria()
		if err != nil {
			return err
		}
		r := ctx.Reconciler()
		if _, err := r.Refresh(bg); err != nil {
			return fmt.Errorf("failed to get logs: %w", err)
		}
		view := r.SetCriteria(criteria)
		if len(view.Filtered) == 0 {
			fmt.Println("No logs to export")
			return nil
		}
		data = []byte(backup.ExportText(view.Filtered, time.Local))
		name = backup.TextFilename(now)
	}

	if c.Output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	path := c.Output
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, name)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Printf("✓ Exported to %s\n", path)
	return nil
}
