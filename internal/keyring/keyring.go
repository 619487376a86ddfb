// Package keyring keeps the PostgreSQL connection string out of config
// files by storing it in the OS keyring.
package keyring

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/hourlog/internal/constants"
)

// ConfigValue is the --config value that selects the keyring entry.
const ConfigValue = "keyring"

// ConnectionEnvVar overrides the keyring entry when set.
const ConnectionEnvVar = "HOURLOG_DB_CONNECTION"

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Entry is one secret in the keyring, addressed by service and user.
type Entry struct {
	Service string
	User    string
}

// ConnectionEntry holds the database connection string.
var ConnectionEntry = Entry{Service: constants.AppName, User: constants.DefaultKeyringUser}

func (e Entry) Get() (string, error) {
	secret, err := keyring.Get(e.Service, e.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func (e Entry) Set(secret string) error {
	if strings.TrimSpace(secret) == "" {
		return errors.New("secret cannot be empty")
	}
	if err := keyring.Set(e.Service, e.User, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func (e Entry) Delete() error {
	if err := keyring.Delete(e.Service, e.User); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// GetConnectionString retrieves the database connection string.
func GetConnectionString() (string, error) {
	return ConnectionEntry.Get()
}

// SetConnectionString stores the database connection string.
func SetConnectionString(connStr string) error {
	return ConnectionEntry.Set(connStr)
}

// DeleteConnectionString removes the stored connection string.
func DeleteConnectionString() error {
	return ConnectionEntry.Delete()
}

// ResolveConfig turns a --config value into a concrete path or connection
// string. "keyring" reads HOURLOG_DB_CONNECTION first and the keyring entry
// second; any other value is returned as is.
func ResolveConfig(config string) (string, error) {
	if config != ConfigValue {
		return config, nil
	}
	if env := strings.TrimSpace(os.Getenv(ConnectionEnvVar)); env != "" {
		return env, nil
	}
	connStr, err := GetConnectionString()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("no connection string stored; run '%s keyring set' or set %s", constants.AppName, ConnectionEnvVar)
		}
		return "", err
	}
	return connStr, nil
}

// IsAvailable reports whether the OS keyring answers a lookup.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
