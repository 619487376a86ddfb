package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/hourlog/internal/logger"
)

var (
	// ErrValidation marks input that was rejected before any state change.
	ErrValidation = stderrors.New("validation failed")
	// ErrNotFound marks an edit or delete that referenced an unknown id.
	ErrNotFound = stderrors.New("not found")
	// ErrMalformedBackup marks a restore input that cannot be decoded or holds
	// data the store would reject.
	ErrMalformedBackup = stderrors.New("malformed backup")
)

// ValidationError reports user input that cannot be accepted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidation builds a ValidationError for field.
func NewValidation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown id. Callers treat it as already satisfied.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound builds a NotFoundError.
func NewNotFound(kind string, id interface{}) error {
	return &NotFoundError{Kind: kind, ID: fmt.Sprint(id)}
}

// MalformedBackupError wraps the decode or content failure of a restore input.
type MalformedBackupError struct {
	Err error
}

func (e *MalformedBackupError) Error() string {
	return fmt.Sprintf("invalid backup: %v", e.Err)
}

func (e *MalformedBackupError) Unwrap() error { return e.Err }

func (e *MalformedBackupError) Is(target error) bool { return target == ErrMalformedBackup }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return stderrors.Is(err, ErrValidation) }

// IsNotFound reports whether err is an unknown-id failure.
func IsNotFound(err error) bool { return stderrors.Is(err, ErrNotFound) }

// IsMalformedBackup reports whether err is a restore decode failure.
func IsMalformedBackup(err error) bool { return stderrors.Is(err, ErrMalformedBackup) }

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
