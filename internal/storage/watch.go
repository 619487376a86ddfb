package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/logger"
)

// WatchFiles streams a full-refresh Event whenever a file in dir accepted by
// match is written, created, renamed or removed. Bursts of filesystem
// activity are coalesced into one event.
func WatchFiles(ctx context.Context, dir string, match func(name string) bool) (<-chan Event, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: watch directory unknown")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: ensure watch directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("storage: create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("storage: watch %s: %w", dir, err)
	}

	events := make(chan Event, 16)

	go func() {
		defer close(events)
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warn("Watcher close failed", "error", err)
			}
		}()

		var sendMu sync.Mutex
		done := false
		send := func(ev Event) {
			sendMu.Lock()
			defer sendMu.Unlock()
			if done {
				return
			}
			select {
			case events <- ev:
			default:
			}
		}
		defer func() {
			sendMu.Lock()
			done = true
			sendMu.Unlock()
		}()

		throttle := newEventThrottle(constants.WatchThrottle)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Storage watcher error", "error", err)
				throttle.Enqueue(Event{}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op == fsnotify.Chmod {
					continue
				}
				if match != nil && !match(filepath.Base(evt.Name)) {
					continue
				}
				throttle.Enqueue(Event{}, send)
			}
		}
	}()

	return events, nil
}

// eventThrottle coalesces rapid change notifications into one event per
// burst. A burst that includes a full-refresh event flushes as a full refresh.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	all     bool
	pending map[Key]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[Key]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(ev.Keys) == 0 {
		t.all = true
	}
	for _, k := range ev.Keys {
		t.pending[k] = struct{}{}
	}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	all := t.all
	pending := t.pending
	t.all = false
	t.pending = make(map[Key]struct{})
	t.timer = nil
	t.mu.Unlock()

	if all {
		send(Event{})
		return
	}
	if len(pending) == 0 {
		return
	}
	keys := make([]Key, 0, len(pending))
	for _, k := range AllKeys {
		if _, ok := pending[k]; ok {
			keys = append(keys, k)
		}
	}
	send(Event{Keys: keys})
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
