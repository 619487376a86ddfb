// Package migration brings a store's database up to the schema shipped in
// the migrations directory. Files are named NNN_name.sql and the applied
// version is the single row of the schema_version table.
package migration

import (
	"cmp"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/julianstephens/hourlog/internal/logger"
	"github.com/julianstephens/hourlog/migrations"
)

type step struct {
	version int
	name    string
	sql     string
}

// Runner applies one dialect's migration files to a database.
type Runner struct {
	db    *sql.DB
	files fs.FS
}

// New returns a Runner over the embedded migrations for dialect
// ("sqlite" or "postgres").
func New(db *sql.DB, dialect string) (*Runner, error) {
	if _, err := fs.ReadDir(migrations.FS, dialect); err != nil {
		return nil, fmt.Errorf("no %s migrations: %w", dialect, err)
	}
	files, err := fs.Sub(migrations.FS, dialect)
	if err != nil {
		return nil, fmt.Errorf("no %s migrations: %w", dialect, err)
	}
	return NewRunner(db, files), nil
}

func NewRunner(db *sql.DB, files fs.FS) *Runner {
	return &Runner{db: db, files: files}
}

// ApplyMigrations runs every step newer than the recorded version, each in
// its own transaction with the version bump, and returns how many ran.
func (r *Runner) ApplyMigrations() (int, error) {
	current, steps, err := r.plan()
	if err != nil {
		return 0, err
	}
	latest := latestVersion(steps)
	if current > latest {
		return 0, newerSchemaError(current, latest)
	}
	if current == latest {
		logger.Debug("Schema up to date", "version", current)
		return 0, nil
	}

	logger.Info("Migrating schema", "from", current, "to", latest)
	applied := 0
	for _, s := range steps {
		if s.version <= current {
			continue
		}
		if err := r.apply(s); err != nil {
			return applied, err
		}
		applied++
		logger.Debug("Migration applied", "version", s.version, "name", s.name)
	}
	return applied, nil
}

// ValidateVersion fails when the database was migrated by a newer build.
func (r *Runner) ValidateVersion() error {
	current, steps, err := r.plan()
	if err != nil {
		return err
	}
	if latest := latestVersion(steps); current > latest {
		return newerSchemaError(current, latest)
	}
	return nil
}

func (r *Runner) plan() (int, []step, error) {
	steps, err := loadSteps(r.files)
	if err != nil {
		return 0, nil, err
	}
	current, err := r.currentVersion()
	if err != nil {
		return 0, nil, err
	}
	return current, steps, nil
}

func (r *Runner) apply(s step) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", s.version, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if _, err := tx.Exec(s.sql); err != nil {
		return fmt.Errorf("migration %d (%s): %w", s.version, s.name, err)
	}
	if err := recordVersion(tx, s.version); err != nil {
		return fmt.Errorf("migration %d: %w", s.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %d: commit: %w", s.version, err)
	}
	return nil
}

func (r *Runner) currentVersion() (int, error) {
	if _, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return 0, fmt.Errorf("create schema_version: %w", err)
	}
	var version int
	err := r.db.QueryRow("SELECT version FROM schema_version").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func recordVersion(db execer, version int) error {
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("clear schema version: %w", err)
	}
	// Inlined: sqlite and postgres disagree on placeholder syntax.
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (" + strconv.Itoa(version) + ")"); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

func loadSteps(files fs.FS) ([]step, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	steps := make([]step, 0, len(names))
	for _, name := range names {
		version, label, err := parseName(name)
		if err != nil {
			return nil, err
		}
		body, err := fs.ReadFile(files, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		steps = append(steps, step{version: version, name: label, sql: string(body)})
	}

	slices.SortFunc(steps, func(a, b step) int { return cmp.Compare(a.version, b.version) })
	for i := 1; i < len(steps); i++ {
		if steps[i].version == steps[i-1].version {
			return nil, fmt.Errorf("migration version %d used twice", steps[i].version)
		}
	}
	return steps, nil
}

// parseName splits "007_add_index.sql" into 7 and "add_index".
func parseName(filename string) (int, string, error) {
	num, label, ok := strings.Cut(strings.TrimSuffix(path.Base(filename), ".sql"), "_")
	if !ok || label == "" {
		return 0, "", fmt.Errorf("migration %s: want NNN_name.sql", filename)
	}
	version, err := strconv.Atoi(num)
	if err != nil || version < 1 {
		return 0, "", fmt.Errorf("migration %s: version must be a positive number", filename)
	}
	return version, label, nil
}

func latestVersion(steps []step) int {
	if len(steps) == 0 {
		return 0
	}
	return steps[len(steps)-1].version
}

func newerSchemaError(current, latest int) error {
	return fmt.Errorf("database schema version %d is newer than this build supports (%d); upgrade hourlog", current, latest)
}
