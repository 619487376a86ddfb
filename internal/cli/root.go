package cli

import (
	"context"
	"path/filepath"

	"github.com/julianstephens/hourlog/internal/backup"
	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/logger"
	"github.com/julianstephens/hourlog/internal/logstore"
	"github.com/julianstephens/hourlog/internal/storage"
)

// Context is passed to every command's Run method.
type Context struct {
	Store      storage.Provider
	Aggregates *storage.Aggregates
	// ConfigDir holds backups, logs and the daemon lockfile.
	ConfigDir string
}

func NewContext(store storage.Provider, configDir string) *Context {
	return &Context{
		Store:      store,
		Aggregates: storage.NewAggregates(store),
		ConfigDir:  configDir,
	}
}

// Reconciler returns a log reconciler over the context's store.
func (c *Context) Reconciler() *logstore.Reconciler {
	return logstore.New(c.Aggregates)
}

// BackupManager returns the rotating backup manager for the store.
func (c *Context) BackupManager() *backup.Manager {
	return backup.NewManager(c.Aggregates, c.ConfigDir)
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup(ctx context.Context) {
	if _, err := c.BackupManager().CreateBackup(ctx); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// DaemonLockfilePath is where the running daemon advertises its callback
// endpoint.
func (c *Context) DaemonLockfilePath() string {
	return filepath.Join(c.ConfigDir, constants.DaemonLockfileName)
}
