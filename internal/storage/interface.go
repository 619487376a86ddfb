package storage

import (
	"context"

	"github.com/julianstephens/hourlog/internal/constants"
)

// Key names one persisted aggregate.
type Key string

const (
	KeyLogs       Key = constants.KeyLogs
	KeySettings   Key = constants.KeySettings
	KeyCategories Key = constants.KeyCategories
	KeyTemplates  Key = constants.KeyTemplates
)

// AllKeys lists every aggregate in a stable order.
var AllKeys = []Key{KeyLogs, KeyCategories, KeyTemplates, KeySettings}

// Event reports that one or more aggregates changed. An empty Keys slice
// means the backend could not tell which ones, and subscribers should
// re-read everything.
type Event struct {
	Keys []Key
}

// Touches reports whether the event may affect key.
func (e Event) Touches(key Key) bool {
	if len(e.Keys) == 0 {
		return true
	}
	for _, k := range e.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Provider is a key/value store of whole aggregates. Values are opaque JSON
// documents; a Set replaces every named key in one atomic step and no
// partial-aggregate updates exist.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string

	// Get returns the stored value for each requested key that exists.
	// Absent keys are omitted from the result.
	Get(ctx context.Context, keys ...Key) (map[Key][]byte, error)
	// Set writes all values atomically.
	Set(ctx context.Context, values map[Key][]byte) error
	// Watch streams change events until ctx is cancelled. The channel is
	// closed when the watch ends.
	Watch(ctx context.Context) (<-chan Event, error)
}
