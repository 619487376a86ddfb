package migration

import (
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func migrationFS(files map[string]string) fs.FS {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return m
}

func TestCurrentVersion(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_test.sql": "CREATE TABLE test (id INTEGER);",
	}))

	version, err := runner.currentVersion()
	if err != nil {
		t.Fatalf("currentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}

	if err := recordVersion(db, 5); err != nil {
		t.Fatalf("recordVersion failed: %v", err)
	}
	version, err = runner.currentVersion()
	if err != nil {
		t.Fatalf("currentVersion failed: %v", err)
	}
	if version != 5 {
		t.Errorf("expected version 5, got %d", version)
	}
}

func TestLoadStepsSorted(t *testing.T) {
	got, err := loadSteps(migrationFS(map[string]string{
		"002_second.sql":    "SELECT 2;",
		"001_first.sql":     "SELECT 1;",
		"README.md":         "ignored",
		"010_add_index.sql": "SELECT 10;",
	}))
	if err != nil {
		t.Fatalf("loadSteps failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(got))
	}
	wantVersions := []int{1, 2, 10}
	for i, s := range got {
		if s.version != wantVersions[i] {
			t.Errorf("step %d: version = %d, want %d", i, s.version, wantVersions[i])
		}
	}
	if got[0].name != "first" || got[2].name != "add_index" {
		t.Errorf("unexpected names %q, %q", got[0].name, got[2].name)
	}
}

func TestApplyMigrationsFromScratch(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_a.sql": "CREATE TABLE a (id INTEGER);",
		"002_b.sql": "CREATE TABLE b (id INTEGER);",
	}))

	applied, err := runner.ApplyMigrations()
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if applied != 2 {
		t.Errorf("expected 2 applied, got %d", applied)
	}

	version, _ := runner.currentVersion()
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}
	if _, err := db.Exec("INSERT INTO b (id) VALUES (1)"); err != nil {
		t.Errorf("table b should exist: %v", err)
	}
}

func TestApplyMigrationsIncrementalAndNoOp(t *testing.T) {
	db := setupTestDB(t)
	first := NewRunner(db, migrationFS(map[string]string{
		"001_a.sql": "CREATE TABLE a (id INTEGER);",
	}))
	if _, err := first.ApplyMigrations(); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}

	second := NewRunner(db, migrationFS(map[string]string{
		"001_a.sql": "CREATE TABLE a (id INTEGER);",
		"002_b.sql": "CREATE TABLE b (id INTEGER);",
	}))
	applied, err := second.ApplyMigrations()
	if err != nil {
		t.Fatalf("incremental apply failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 applied, got %d", applied)
	}

	applied, err = second.ApplyMigrations()
	if err != nil {
		t.Fatalf("no-op apply failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("expected 0 applied, got %d", applied)
	}
}

func TestMigrationRollbackOnError(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_good.sql": "CREATE TABLE good (id INTEGER);",
		"002_bad.sql":  "CREATE TABLE broken (id INTEGER",
	}))

	applied, err := runner.ApplyMigrations()
	if err == nil {
		t.Fatal("expected error from malformed migration")
	}
	if applied != 1 {
		t.Errorf("expected 1 applied before failure, got %d", applied)
	}
	version, _ := runner.currentVersion()
	if version != 1 {
		t.Errorf("expected version to stay at 1, got %d", version)
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_a.sql": "CREATE TABLE a (id INTEGER);",
	}))
	if _, err := runner.currentVersion(); err != nil {
		t.Fatal(err)
	}
	if err := recordVersion(db, 3); err != nil {
		t.Fatalf("recordVersion failed: %v", err)
	}

	err := runner.ValidateVersion()
	if err == nil || !strings.Contains(err.Error(), "newer than this build") {
		t.Errorf("expected newer-version error, got %v", err)
	}
	if _, err := runner.ApplyMigrations(); err == nil {
		t.Error("ApplyMigrations should refuse a newer database")
	}
}

func TestFilenameValidation(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{name: "missing underscore", files: map[string]string{"001.sql": "SELECT 1;"}},
		{name: "missing name", files: map[string]string{"001_.sql": "SELECT 1;"}},
		{name: "non-numeric version", files: map[string]string{"abc_init.sql": "SELECT 1;"}},
		{name: "zero version", files: map[string]string{"000_init.sql": "SELECT 1;"}},
		{name: "duplicate version", files: map[string]string{"001_a.sql": "SELECT 1;", "001_b.sql": "SELECT 1;"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadSteps(migrationFS(tt.files)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewUnknownDialect(t *testing.T) {
	if _, err := New(setupTestDB(t), "oracle"); err == nil {
		t.Error("expected error for an unknown dialect")
	}
}

func TestEmbeddedSQLiteMigrations(t *testing.T) {
	db := setupTestDB(t)
	runner, err := New(db, "sqlite")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := runner.ApplyMigrations(); err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO aggregates (key, value, updated_at) VALUES ('logs', '[]', 'now')"); err != nil {
		t.Errorf("aggregates table should exist: %v", err)
	}
}
