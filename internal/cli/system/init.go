package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/hourlog/internal/cli"
)

type InitCmd struct {
	Force         bool   `help:"Delete the existing sqlite or diskv store before initialization."`
	Source        string `help:"Store to copy data from (path or PostgreSQL connection string)."`
	SourceBackend string `help:"Backend of the source store (auto|sqlite|postgres|diskv)." default:"auto" enum:"auto,sqlite,postgres,diskv"`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	if c.Force {
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	if err := ctx.Aggregates.EnsureDefaults(bg); err != nil {
		return fmt.Errorf("failed to write defaults: %w", err)
	}
	fmt.Printf("Initialized hourlog storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(bg, ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}
	return nil
}

func (c *InitCmd) removeExisting(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if cli.IsPostgresConnString(path) {
		return fmt.Errorf("--force only applies to file stores")
	}
	if c.Source != "" {
		absPath, _ := filepath.Abs(path)
		absSource, _ := filepath.Abs(c.Source)
		if absPath == absSource {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", path)
		}
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing store: %w", err)
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing store: %w", err)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to delete existing store: %w", err)
	}
	fmt.Printf("Deleted existing store at: %s\n", path)
	return nil
}

// copyFrom replaces the new store's aggregates with the source's.
func (c *InitCmd) copyFrom(bg context.Context, ctx *cli.Context) error {
	cfg, err := cli.ResolveStore(c.Source, c.SourceBackend)
	if err != nil {
		return err
	}
	source := cli.NewProvider(cfg)
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source store: %w", err)
	}
	defer source.Close()

	st, err := cli.NewContext(source, cfg.ConfigDir).Aggregates.State(bg)
	if err != nil {
		return fmt.Errorf("failed to read source store: %w", err)
	}
	if err := ctx.Aggregates.Replace(bg, st); err != nil {
		return fmt.Errorf("failed to write destination store: %w", err)
	}
	fmt.Printf("  Copied %d logs, %d categories, %d templates and settings\n", len(st.Logs), len(st.Categories), len(st.Templates))
	return nil
}
