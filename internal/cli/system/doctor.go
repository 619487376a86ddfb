package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/hourlog/internal/cli"
	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/notifier"
	"github.com/julianstephens/hourlog/internal/storage"
	"github.com/julianstephens/hourlog/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name    string
	warning bool
	run     func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	checks := []check{
		{name: "Store readable", run: checkStoreReadable},
		{name: "Aggregates decode", run: checkAggregates},
		{name: "Settings valid", run: checkSettings},
		{name: "Clock/timezone", run: func(*cli.Context) error { return checkClockTimezone(time.Now()) }},
		{name: "Backups present", warning: true, run: checkBackupsPresent},
		{name: "Daemon running", warning: true, run: checkDaemonRunning},
	}

	failed := false
	for _, c := range checks {
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warning:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			failed = true
		}
	}

	fmt.Println()
	if failed {
		return errors.New("some checks failed")
	}
	fmt.Println("All checks passed.")
	return nil
}

func checkStoreReadable(ctx *cli.Context) error {
	_, err := ctx.Store.Get(context.Background(), storage.AllKeys...)
	return err
}

func checkAggregates(ctx *cli.Context) error {
	_, err := ctx.Aggregates.State(context.Background())
	return err
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Aggregates.Settings(context.Background())
	if err != nil {
		return err
	}
	return validation.Settings(settings)
}

func checkClockTimezone(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	backups, err := ctx.BackupManager().ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkDaemonRunning(ctx *cli.Context) error {
	if _, err := notifier.FindEndpoint(ctx.DaemonLockfilePath(), constants.DaemonExecutablePrefix); err != nil {
		return fmt.Errorf("no reminders will be shown: %w", err)
	}
	return nil
}
