package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/hourlog/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int {
	return m.pid
}

func (m *mockProcess) PPid() int {
	return 0
}

func (m *mockProcess) Executable() string {
	return m.executable
}

func stubProcess(t *testing.T, executable string) {
	t.Helper()
	old := findProcessFunc
	t.Cleanup(func() { findProcessFunc = old })
	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: executable}, nil
	}
}

func TestGetTrayAppConfigDir(t *testing.T) {
	tempDir := t.TempDir()

	oldUserConfigDirFunc := userConfigDirFunc
	defer func() { userConfigDirFunc = oldUserConfigDirFunc }()
	userConfigDirFunc = func() (string, error) {
		return tempDir, nil
	}

	expectedDefault := filepath.Join(tempDir, constants.TrayAppIdentifier)
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if dir != expectedDefault {
		t.Errorf("expected %s, got %s", expectedDefault, dir)
	}

	if err := os.MkdirAll(expectedDefault, 0755); err != nil {
		t.Fatal(err)
	}
	customDir := "/custom/hourlog/dir"
	settingsJSON := fmt.Sprintf(`{"settings": {"lockfile_dir": "%s"}}`, customDir)
	if err := os.WriteFile(filepath.Join(expectedDefault, "settings.json"), []byte(settingsJSON), 0644); err != nil {
		t.Fatal(err)
	}

	dir, err = GetTrayAppConfigDir()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if dir != customDir {
		t.Errorf("expected %s, got %s", customDir, dir)
	}
}

func TestFindEndpoint(t *testing.T) {
	oldFindProcessFunc := findProcessFunc
	defer func() { findProcessFunc = oldFindProcessFunc }()

	lockfilePath := filepath.Join(t.TempDir(), constants.NotifierLockfileName)

	if _, err := FindEndpoint(lockfilePath, "hourlog-tray"); err == nil {
		t.Error("expected error for missing lockfile")
	}

	malformed := []struct {
		name    string
		content string
		want    string
	}{
		{name: "two parts", content: "8080|12345", want: "malformed"},
		{name: "garbage", content: "invalid", want: "malformed"},
		{name: "empty secret", content: "8080|12345|", want: "secret"},
		{name: "empty port", content: "|12345|testsecret123", want: "port"},
		{name: "port out of range", content: "99999|12345|testsecret123", want: "range"},
		{name: "bad pid", content: "8080|abc|testsecret123", want: "process ID"},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(lockfilePath, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := FindEndpoint(lockfilePath, "hourlog-tray")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if err := WriteLockfile(lockfilePath, Endpoint{Port: "8080", PID: 12345, Secret: "testsecret123"}); err != nil {
		t.Fatal(err)
	}

	findProcessFunc = func(pid int) (ps.Process, error) {
		return nil, nil
	}
	if _, err := FindEndpoint(lockfilePath, "hourlog-tray"); err == nil {
		t.Error("expected error for missing process")
	}

	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: "other-app"}, nil
	}
	if _, err := FindEndpoint(lockfilePath, "hourlog-tray"); err == nil {
		t.Error("expected error for wrong executable")
	}

	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: "hourlog-tray"}, nil
	}
	ep, err := FindEndpoint(lockfilePath, "hourlog-tray")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ep.Port != "8080" || ep.PID != 12345 || ep.Secret != "testsecret123" {
		t.Errorf("unexpected endpoint %+v", ep)
	}
	if ep.URL() != "http://127.0.0.1:8080" {
		t.Errorf("unexpected URL %s", ep.URL())
	}
}

func TestReadLockfileSkipsProcessCheck(t *testing.T) {
	oldFindProcessFunc := findProcessFunc
	defer func() { findProcessFunc = oldFindProcessFunc }()
	findProcessFunc = func(pid int) (ps.Process, error) {
		t.Fatal("ReadLockfile must not look up the process")
		return nil, nil
	}

	path := filepath.Join(t.TempDir(), constants.DaemonLockfileName)
	want := Endpoint{Port: "4242", PID: 7, Secret: "s3cret"}
	if err := WriteLockfile(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := ReadLockfile(path)
	if err != nil {
		t.Fatalf("ReadLockfile failed: %v", err)
	}
	if got != want {
		t.Errorf("ReadLockfile = %+v, want %+v", got, want)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o600 {
		t.Errorf("lockfile mode = %v, want 0600", info.Mode().Perm())
	}
}

func newTestTray(t *testing.T, handler http.HandlerFunc) *TrayNotifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	parts := strings.Split(server.URL, ":")
	port := parts[len(parts)-1]

	lockfilePath := filepath.Join(t.TempDir(), constants.NotifierLockfileName)
	if err := WriteLockfile(lockfilePath, Endpoint{Port: port, PID: 4242, Secret: "test-secret"}); err != nil {
		t.Fatal(err)
	}
	stubProcess(t, "hourlog-tray")

	n := NewTrayNotifier()
	n.lockfilePath = func() (string, error) { return lockfilePath, nil }
	return n
}

func TestTrayNotifierNotify(t *testing.T) {
	var got WebhookPayload
	n := newTestTray(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get(constants.SecretHeader) != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorized"))
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got.Text == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	n.SetCallback("http://127.0.0.1:9999/interaction", "cb-secret")

	err := n.Notify(context.Background(), Notification{
		ID:       constants.ReminderNotificationID,
		Title:    constants.ReminderTitle,
		Message:  constants.ReminderMessage,
		Buttons:  []string{constants.ButtonLogNow, constants.ButtonSnooze},
		Priority: constants.NotificationPriority,
		Silent:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != constants.ReminderNotificationID || len(got.Buttons) != 2 || !got.Silent {
		t.Errorf("unexpected payload %+v", got)
	}
	if got.CallbackURL != "http://127.0.0.1:9999/interaction" || got.CallbackSecret != "cb-secret" {
		t.Errorf("callback not forwarded: %+v", got)
	}
	if got.DurationMs != constants.NotificationDurationMs {
		t.Errorf("expected duration %d, got %d", constants.NotificationDurationMs, got.DurationMs)
	}

	if err := n.Notify(context.Background(), Notification{Message: "fail"}); err == nil {
		t.Error("expected error for server failure")
	}
}

func TestTrayNotifierClear(t *testing.T) {
	var clearedID string
	n := newTestTray(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clear" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body clearPayload
		_ = json.NewDecoder(r.Body).Decode(&body)
		clearedID = body.ID
		w.WriteHeader(http.StatusOK)
	})

	if err := n.Clear(context.Background(), "hourlog-reminder"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clearedID != "hourlog-reminder" {
		t.Errorf("expected cleared id hourlog-reminder, got %q", clearedID)
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := &LogNotifier{Out: &buf}
	err := n.Notify(context.Background(), Notification{
		Title:   "Hourly Logger",
		Message: "Time to log your work!",
		Buttons: []string{"Log Now", "Snooze 15min"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "🔔 Hourly Logger: Time to log your work! [Log Now] [Snooze 15min]\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
	if err := n.Clear(context.Background(), "x"); err != nil {
		t.Errorf("Clear returned %v", err)
	}
}
