package notifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/hourlog/internal/constants"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// Endpoint is a loopback HTTP listener advertised through a lockfile of the
// form "port|pid|secret".
type Endpoint struct {
	Port   string
	PID    int
	Secret string
}

// URL returns the endpoint's base URL.
func (e Endpoint) URL() string {
	return fmt.Sprintf("http://127.0.0.1:%s", e.Port)
}

// GetTrayAppConfigDir returns the configuration directory used by the tray application.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	// The tray may relocate its lockfile through settings.json.
	settingsPath := filepath.Join(trayConfigDir, "settings.json")
	if data, err := os.ReadFile(settingsPath); err == nil {
		var store struct {
			Settings struct {
				LockfileDir *string `json:"lockfile_dir"`
			} `json:"settings"`
		}
		if err := json.Unmarshal(data, &store); err == nil {
			if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
				return *store.Settings.LockfileDir, nil
			}
		}
	}

	return trayConfigDir, nil
}

// ReadLockfile parses a "port|pid|secret" lockfile without checking that
// the process is still alive.
func ReadLockfile(lockfilePath string) (Endpoint, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return Endpoint{}, err
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return Endpoint{}, errors.New("lockfile is malformed")
	}

	port := strings.TrimSpace(parts[0])
	if port == "" {
		return Endpoint{}, errors.New("port in lockfile is empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return Endpoint{}, errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return Endpoint{}, fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return Endpoint{}, errors.New("invalid process ID in lockfile")
	}
	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return Endpoint{}, errors.New("secret in lockfile is empty")
	}

	return Endpoint{Port: port, PID: pid, Secret: secret}, nil
}

// FindEndpoint reads a lockfile and checks that the advertised PID belongs
// to a live process whose executable starts with executablePrefix.
func FindEndpoint(lockfilePath, executablePrefix string) (Endpoint, error) {
	if _, err := os.Stat(lockfilePath); err != nil {
		return Endpoint{}, fmt.Errorf("%s is not running", executablePrefix)
	}
	ep, err := ReadLockfile(lockfilePath)
	if err != nil {
		return Endpoint{}, err
	}

	process, err := findProcessFunc(ep.PID)
	if err != nil || process == nil {
		return Endpoint{}, fmt.Errorf("%s process not running", executablePrefix)
	}
	if !strings.HasPrefix(process.Executable(), executablePrefix) {
		return Endpoint{}, fmt.Errorf("process with PID %d is not %s (is %s)", ep.PID, executablePrefix, process.Executable())
	}

	return ep, nil
}

// WriteLockfile advertises an endpoint owned by the current process. The
// file is readable by the owner only since it carries the secret.
func WriteLockfile(path string, e Endpoint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create lockfile directory: %w", err)
	}
	content := fmt.Sprintf("%s|%d|%s", e.Port, e.PID, e.Secret)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	return nil
}
