package main

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/hourlog/internal/cli"
	"github.com/julianstephens/hourlog/internal/cli/backups"
	"github.com/julianstephens/hourlog/internal/cli/logs"
	"github.com/julianstephens/hourlog/internal/cli/settings"
	"github.com/julianstephens/hourlog/internal/cli/system"
	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/errors"
	"github.com/julianstephens/hourlog/internal/logger"
	"github.com/julianstephens/hourlog/internal/storage/postgres"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Store path, PostgreSQL connection string, or 'keyring' to read the connection string from the OS keyring." type:"string" default:"${default_config}" env:"HOURLOG_CONFIG"`
	Backend string `help:"Storage backend." default:"auto" enum:"auto,sqlite,postgres,diskv" env:"HOURLOG_BACKEND"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init   system.InitCmd   `cmd:"" help:"Initialize hourlog storage."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Tui    system.TuiCmd    `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Daemon system.DaemonCmd `cmd:"" help:"Run the reminder daemon."`

	Log     logs.LogCmd         `cmd:"" help:"Write a log entry."`
	List    logs.ListCmd        `cmd:"" help:"List log entries."`
	Status  logs.StatusCmd      `cmd:"" help:"Show the time since the last log and the latest entries."`
	Edit    logs.EditCmd        `cmd:"" help:"Edit a log entry."`
	Delete  logs.DeleteCmd      `cmd:"" help:"Delete a log entry."`
	Clear   logs.ClearCmd       `cmd:"" help:"Delete every log entry."`
	Stats   logs.StatsCmd       `cmd:"" help:"Show statistics and the category breakdown."`
	Export  logs.ExportCmd      `cmd:"" help:"Export logs as text or a JSON backup."`
	Restore backups.RestoreCmd `cmd:"" help:"Replace all data with a JSON backup."`
	Backup  struct {
		Create  backups.BackupCreateCmd `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd   `cmd:"" help:"List available backups."`
		Restore backups.RestoreCmd      `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage automatic backups."`

	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Category struct {
		Add    settings.CategoryAddCmd    `cmd:"" help:"Add a category."`
		Remove settings.CategoryRemoveCmd `cmd:"" help:"Remove a category."`
		List   settings.CategoryListCmd   `cmd:"" help:"List categories." default:"1"`
	} `cmd:"" help:"Manage categories."`
	Template struct {
		Add    settings.TemplateAddCmd    `cmd:"" help:"Add a template."`
		Remove settings.TemplateRemoveCmd `cmd:"" help:"Remove a template."`
		List   settings.TemplateListCmd   `cmd:"" help:"List templates." default:"1"`
	} `cmd:"" help:"Manage log templates."`

	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`

	NotifyAction system.NotifyActionCmd `cmd:"" hidden:"" help:"Forward a notification interaction to the daemon (used by the tray app)."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Hourly work logger with reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)

	command := ctx.Command()
	if strings.HasPrefix(command, "keyring") {
		errors.Fatal(ctx.Run(&cli.Context{}))
		return
	}

	cfg, err := cli.ResolveStore(CLI.Config, CLI.Backend)
	if err != nil {
		if stderrors.Is(err, postgres.ErrEmbeddedCredentials) {
			errors.Fatalf("%s", cli.EmbeddedCredentialsHelp())
		}
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: cfg.ConfigDir,
		Daemon:    command == "daemon",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	store := cli.NewProvider(cfg)
	if command != "init" && !strings.HasPrefix(command, "notify-action") {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}
	defer store.Close()

	if err := ctx.Run(cli.NewContext(store, cfg.ConfigDir)); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}
