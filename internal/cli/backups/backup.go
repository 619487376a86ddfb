package backups

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gosuri/uitable"

	"github.com/julianstephens/hourlog/internal/cli"
	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/errors"
	"github.com/julianstephens/hourlog/internal/forms"
)

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	backupPath, err := ctx.BackupManager().CreateBackup(context.Background())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Printf("✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr := ctx.BackupManager()
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Println("No backups found.")
		fmt.Printf("Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	fmt.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("CREATED", "FILE", "SIZE")
	for _, b := range backups {
		tbl.AddRow(b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), fmt.Sprintf("%.1f KB", float64(b.Size)/1024.0))
	}
	tbl.RightAlign(2)
	fmt.Println(tbl)
	fmt.Printf("\nBackup directory: %s\n", mgr.GetBackupDir())
	return nil
}

// RestoreCmd replaces all logs, categories, templates and settings with
// the contents of a JSON backup. It is not a merge.
type RestoreCmd struct {
	BackupFile string `arg:"" help:"Path of a JSON backup, or a filename in the backup directory."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *RestoreCmd) Run(ctx *cli.Context) error {
	mgr := ctx.BackupManager()
	backupPath, err := resolveBackupPath(c.BackupFile, mgr.GetBackupDir())
	if err != nil {
		return err
	}

	if !c.Yes {
		fmt.Println("⚠️  WARNING: This will replace ALL logs, categories, templates and settings.")
		fmt.Println("A backup of the current data will be created before restoring.")
		fmt.Printf("\nRestore from: %s\n", backupPath)
		confirmed := false
		if err := forms.NewConfirmForm("Continue?", &confirmed).Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Restore cancelled.")
			return nil
		}
	}

	previous, err := mgr.RestoreBackup(context.Background(), backupPath)
	if err != nil {
		if errors.IsMalformedBackup(err) {
			return fmt.Errorf("invalid backup file, nothing was changed: %w", err)
		}
		return fmt.Errorf("restore failed: %w", err)
	}

	fmt.Println("✓ Data restored successfully!")
	if previous != "" {
		fmt.Printf("  Previous data saved to %s\n", filepath.Base(previous))
	}
	return nil
}

// resolveBackupPath accepts an absolute path, a path relative to the
// working directory, or a bare filename inside backupDir.
func resolveBackupPath(name, backupDir string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("backup file not found: %s", name)
		}
		return name, nil
	}
	if _, err := os.Stat(name); err == nil {
		absPath, err := filepath.Abs(name)
		if err != nil {
			return "", fmt.Errorf("failed to resolve backup path: %w", err)
		}
		return absPath, nil
	}
	possiblePath := filepath.Join(backupDir, name)
	if _, err := os.Stat(possiblePath); err == nil {
		return possiblePath, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", backupDir)
}

