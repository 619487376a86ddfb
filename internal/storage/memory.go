package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Provider. Watchers are notified of every Set
// with the exact keys written. A watcher that falls behind gets its backlog
// collapsed into one full-refresh event.
type MemoryStore struct {
	mu       sync.RWMutex
	values   map[Key][]byte
	watchers map[chan Event]struct{}
	closed   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:   make(map[Key][]byte),
		watchers: make(map[chan Event]struct{}),
	}
}

func (m *MemoryStore) Init() error { return nil }

func (m *MemoryStore) Load() error { return nil }

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MemoryStore) GetConfigPath() string { return "memory" }

func (m *MemoryStore) Get(ctx context.Context, keys ...Key) (map[Key][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[Key][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			cp := make([]byte, len(v))
			copy(cp, v)
			out[k] = cp
		}
	}
	return out, nil
}

func (m *MemoryStore) Set(ctx context.Context, values map[Key][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]Key, 0, len(values))
	for k, v := range values {
		cp := make([]byte, len(v))
		copy(cp, v)
		m.values[k] = cp
		keys = append(keys, k)
	}
	for ch := range m.watchers {
		notify(ch, Event{Keys: keys})
	}
	return nil
}

func notify(ch chan Event, ev Event) {
	select {
	case ch <- ev:
		return
	default:
	}
drain:
	for {
		select {
		case <-ch:
		default:
			break drain
		}
	}
	select {
	case ch <- Event{}:
	default:
	}
}

func (m *MemoryStore) Watch(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 16)
	m.mu.Lock()
	m.watchers[ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, ch)
		m.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}
