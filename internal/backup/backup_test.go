package backup

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/errors"
	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/storage"
)

var exportTime = time.Date(2024, 5, 15, 17, 45, 0, 0, time.UTC)

func populatedState() models.State {
	return models.State{
		Logs: []models.LogEntry{
			{ID: 1715763600000, Text: "Fixed login bug", Time: "2024-05-15T09:00:00.000Z", Category: "BugFixes"},
			{ID: 1715760000000, Text: "Standup", Time: "2024-05-15T08:00:00.000Z", Category: ""},
		},
		Categories: []models.Category{{Name: "BugFixes", Emoji: "🪲"}},
		Templates:  []models.Template{{Name: "Dev", Text: "Development work on "}},
		Settings: models.Settings{
			ReminderInterval:  45,
			QuietHoursEnabled: true,
			QuietHoursStart:   "21:00",
			QuietHoursEnd:     "07:30",
			NotificationSound: false,
		},
	}
}

func TestExportAlwaysIncludesEveryKey(t *testing.T) {
	data, err := Export(models.State{}, exportTime)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	for _, key := range []string{"logs", "categories", "templates", "settings", "exportDate"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("export missing %q", key)
		}
	}
	if string(raw["logs"]) != "[]" {
		t.Errorf("empty logs should export as [], got %s", raw["logs"])
	}
	if !strings.Contains(string(data), "\n  \"logs\"") {
		t.Error("export should be pretty-printed")
	}
	if string(raw["exportDate"]) != `"2024-05-15T17:45:00.000Z"` {
		t.Errorf("unexpected exportDate %s", raw["exportDate"])
	}
}

func TestRoundTripPopulated(t *testing.T) {
	ctx := context.Background()
	source := storage.NewAggregates(storage.NewMemoryStore())
	if err := source.Replace(ctx, populatedState()); err != nil {
		t.Fatal(err)
	}
	before, _ := source.Provider().Get(ctx, storage.AllKeys...)

	st, _ := source.State(ctx)
	data, err := Export(st, exportTime)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	target := storage.NewAggregates(storage.NewMemoryStore())
	if _, err := Restore(ctx, target, data); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	after, _ := target.Provider().Get(ctx, storage.AllKeys...)

	for _, key := range storage.AllKeys {
		if string(before[key]) != string(after[key]) {
			t.Errorf("%s not byte-equivalent:\nbefore %s\nafter  %s", key, before[key], after[key])
		}
	}
}

func TestRoundTripEmptyStore(t *testing.T) {
	ctx := context.Background()
	source := storage.NewAggregates(storage.NewMemoryStore())
	st, err := source.State(ctx)
	if err != nil {
		t.Fatal(err)
	}
	data, err := Export(st, exportTime)
	if err != nil {
		t.Fatal(err)
	}

	target := storage.NewAggregates(storage.NewMemoryStore())
	if _, err := Restore(ctx, target, data); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	got, _ := target.State(ctx)
	if diff := cmp.Diff(st, got); diff != "" {
		t.Errorf("empty store did not round-trip (-want +got):\n%s", diff)
	}
	if len(got.Logs) != 0 {
		t.Errorf("expected no logs, got %d", len(got.Logs))
	}
}

func TestImportLenientOnMissingFields(t *testing.T) {
	st, err := Import([]byte(`{"logs":[{"id":1,"text":"x","time":"2024-01-01T00:00:00Z","category":"QA"}],"settings":{"reminderInterval":30}}`))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(st.Logs) != 1 {
		t.Errorf("expected 1 log, got %d", len(st.Logs))
	}
	if diff := cmp.Diff(models.DefaultCategories(), st.Categories); diff != "" {
		t.Errorf("missing categories should default (-want +got):\n%s", diff)
	}
	if len(st.Templates) != 3 {
		t.Errorf("missing templates should default, got %d", len(st.Templates))
	}
	if st.Settings.ReminderInterval != 30 || st.Settings.QuietHoursStart != "22:00" || !st.Settings.NotificationSound {
		t.Errorf("partial settings should merge over defaults: %+v", st.Settings)
	}

	st, err = Import([]byte(`{}`))
	if err != nil {
		t.Fatalf("Import({}) failed: %v", err)
	}
	if st.Logs == nil || len(st.Logs) != 0 {
		t.Errorf("missing logs should be empty, got %#v", st.Logs)
	}
}

func TestImportKeepsExplicitlyEmptyCollections(t *testing.T) {
	st, err := Import([]byte(`{"categories":[],"templates":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Categories) != 0 || len(st.Templates) != 0 {
		t.Errorf("explicit empty collections must stay empty: %+v", st)
	}
}

func TestRestoreMalformedLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	agg := storage.NewAggregates(storage.NewMemoryStore())
	if err := agg.Replace(ctx, populatedState()); err != nil {
		t.Fatal(err)
	}
	before, _ := agg.State(ctx)

	for _, input := range []string{`{"logs": [`, `not json`, `[1,2,3]`, `{"logs": "nope"}`, `{"settings": 5}`, `null`} {
		_, err := Restore(ctx, agg, []byte(input))
		if !errors.IsMalformedBackup(err) {
			t.Errorf("Restore(%q) error = %v, want malformed backup", input, err)
		}
	}

	after, _ := agg.State(ctx)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("state changed (-before +after):\n%s", diff)
	}
}

func TestImportRejectsInvalidContent(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"top-level null", `null`},
		{"empty input", `   `},
		{"bad quiet hours start", `{"settings":{"quietHoursStart":"25:99"}}`},
		{"bad quiet hours end", `{"settings":{"quietHoursEnd":"7pm"}}`},
		{"zero interval", `{"settings":{"reminderInterval":0}}`},
		{"negative interval", `{"settings":{"reminderInterval":-5}}`},
		{"duplicate ids", `{"logs":[{"id":1,"text":"a","time":"2024-01-01T00:00:00Z"},{"id":1,"text":"b","time":"2024-01-01T01:00:00Z"}]}`},
		{"empty text", `{"logs":[{"id":1,"text":"","time":"2024-01-01T00:00:00Z"}]}`},
		{"blank text", `{"logs":[{"id":1,"text":"   ","time":"2024-01-01T00:00:00Z"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import([]byte(tt.input))
			if !errors.IsMalformedBackup(err) {
				t.Errorf("Import(%s) error = %v, want malformed backup", tt.input, err)
			}
		})
	}
}

func TestRestoreInvalidContentLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	agg := storage.NewAggregates(storage.NewMemoryStore())
	if err := agg.Replace(ctx, populatedState()); err != nil {
		t.Fatal(err)
	}
	before, _ := agg.State(ctx)

	inputs := []string{
		`{"logs":[],"settings":{"quietHoursStart":"25:99"}}`,
		`{"logs":[{"id":7,"text":"a","time":"2024-01-01T00:00:00Z"},{"id":7,"text":"b","time":"2024-01-01T00:00:00Z"}]}`,
		`{"logs":[{"id":7,"text":"","time":"2024-01-01T00:00:00Z"}]}`,
	}
	for _, input := range inputs {
		if _, err := Restore(ctx, agg, []byte(input)); !errors.IsMalformedBackup(err) {
			t.Errorf("Restore(%s) error = %v, want malformed backup", input, err)
		}
	}

	after, _ := agg.State(ctx)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("state changed (-before +after):\n%s", diff)
	}
}

func TestExportText(t *testing.T) {
	logs := []models.LogEntry{
		{ID: 2, Text: "Fixed login bug", Time: "2024-05-15T09:00:00.000Z", Category: "BugFixes"},
		{ID: 1, Text: "Standup", Time: "2024-05-15T08:05:00.000Z"},
	}
	sep := strings.Repeat("-", 50)
	want := "[2024-05-15 09:00] [BugFixes]\nFixed login bug\n" + sep +
		"\n\n" +
		"[2024-05-15 08:05] [Other]\nStandup\n" + sep
	if got := ExportText(logs, time.UTC); got != want {
		t.Errorf("ExportText() =\n%s\nwant\n%s", got, want)
	}
	if got := ExportText(nil, time.UTC); got != "" {
		t.Errorf("empty export should be empty, got %q", got)
	}
}

func TestFilenames(t *testing.T) {
	if got := TextFilename(exportTime); got != "hourly-logs-2024-05-15.txt" {
		t.Errorf("TextFilename() = %s", got)
	}
	if got := JSONFilename(exportTime); got != "hourly-logger-backup-2024-05-15.json" {
		t.Errorf("JSONFilename() = %s", got)
	}
}

func newTestManager(t *testing.T) (*Manager, *storage.Aggregates, *time.Time) {
	t.Helper()
	agg := storage.NewAggregates(storage.NewMemoryStore())
	if err := agg.Replace(context.Background(), populatedState()); err != nil {
		t.Fatal(err)
	}
	clock := time.Date(2024, 5, 15, 9, 0, 0, 0, time.Local)
	mgr := NewManager(agg, t.TempDir())
	mgr.now = func() time.Time { return clock }
	return mgr, agg, &clock
}

func TestCreateBackup(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	path, err := mgr.CreateBackup(context.Background())
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Base(path) != "hourlog-20240515-0900.json" {
		t.Errorf("unexpected backup name %s", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	st, err := Import(data)
	if err != nil {
		t.Fatalf("backup is not a valid snapshot: %v", err)
	}
	if len(st.Logs) != 2 {
		t.Errorf("expected 2 logs in backup, got %d", len(st.Logs))
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		path, err := mgr.CreateBackup(ctx)
		if err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		if seen[path] {
			t.Fatalf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 4 {
		t.Errorf("expected 4 backups, got %d", len(backups))
	}
}

func TestBackupRotation(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < constants.MaxBackups+5; i++ {
		if _, err := mgr.CreateBackup(ctx); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		*clock = clock.Add(time.Minute)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Errorf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups are not sorted newest first at %d", i)
		}
	}
	oldest := time.Date(2024, 5, 15, 9, 5, 0, 0, time.Local)
	if !backups[len(backups)-1].Timestamp.Equal(oldest) {
		t.Errorf("oldest kept backup = %v, want %v", backups[len(backups)-1].Timestamp, oldest)
	}
}

func TestListBackupsIgnoresForeignFiles(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	if err := os.MkdirAll(mgr.GetBackupDir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "hourlog-garbage.json", "other-20240101-1200.json"} {
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), "hourlog-20240101-120000-3.json"), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 recognised backup, got %d", len(backups))
	}
	want := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	if !backups[0].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", backups[0].Timestamp, want)
	}
}

func TestRestoreBackup(t *testing.T) {
	mgr, agg, clock := newTestManager(t)
	ctx := context.Background()

	path, err := mgr.CreateBackup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := agg.State(ctx)

	if err := agg.SaveLogs(ctx, nil); err != nil {
		t.Fatal(err)
	}
	*clock = clock.Add(time.Minute)

	previous, err := mgr.RestoreBackup(ctx, path)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	got, _ := agg.State(ctx)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("restored state mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(previous)
	if err != nil {
		t.Fatalf("pre-restore backup missing: %v", err)
	}
	pre, _ := Import(data)
	if len(pre.Logs) != 0 {
		t.Errorf("pre-restore backup should hold the emptied logs, got %d", len(pre.Logs))
	}
}

func TestRestoreBackupCorrupted(t *testing.T) {
	mgr, agg, _ := newTestManager(t)
	ctx := context.Background()

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{broken"), 0600); err != nil {
		t.Fatal(err)
	}
	before, _ := agg.State(ctx)

	if _, err := mgr.RestoreBackup(ctx, bad); !errors.IsMalformedBackup(err) {
		t.Errorf("expected malformed backup error, got %v", err)
	}
	after, _ := agg.State(ctx)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("state changed (-before +after):\n%s", diff)
	}
	if backups, _ := mgr.ListBackups(); len(backups) != 0 {
		t.Error("a rejected restore must not create a pre-restore backup")
	}
}
