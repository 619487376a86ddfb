// Package diskv stores the aggregates as a single JSON document on disk.
package diskv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/peterbourgon/diskv/v3"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/storage"
)

// snapshotKey is the diskv key holding every aggregate. Keeping them in one
// file lets a multi-key Set land with a single atomic rename.
const snapshotKey = "aggregates.json"

type Store struct {
	basePath string
	d        *diskv.Diskv
	mu       sync.Mutex
}

func NewStore(basePath string) *Store {
	return &Store{basePath: basePath}
}

func (s *Store) open() {
	s.d = diskv.New(diskv.Options{
		BasePath:     s.basePath,
		TempDir:      filepath.Join(s.basePath, ".tmp"),
		// Other processes replace the file; reads always go to disk.
		CacheSizeMax: 0,
		Transform:    func(string) []string { return []string{} },
	})
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.basePath, 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	s.open()
	if !s.d.Has(snapshotKey) {
		if err := s.d.Write(snapshotKey, []byte("{}")); err != nil {
			return fmt.Errorf("failed to create snapshot: %w", err)
		}
	}
	return nil
}

func (s *Store) Load() error {
	if s.d != nil {
		return nil
	}
	if _, err := os.Stat(filepath.Join(s.basePath, snapshotKey)); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}
	s.open()
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.basePath
}

func (s *Store) readSnapshot() (map[storage.Key]json.RawMessage, error) {
	snapshot := map[storage.Key]json.RawMessage{}
	if !s.d.Has(snapshotKey) {
		return snapshot, nil
	}
	raw, err := s.d.Read(snapshotKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snapshot, nil
}

func (s *Store) Get(ctx context.Context, keys ...storage.Key) (map[storage.Key][]byte, error) {
	if s.d == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.readSnapshot()
	if err != nil {
		return nil, err
	}
	out := make(map[storage.Key][]byte, len(keys))
	for _, k := range keys {
		if v, ok := snapshot[k]; ok {
			out[k] = []byte(v)
		}
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, values map[storage.Key][]byte) error {
	if s.d == nil {
		return fmt.Errorf("storage not loaded")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.readSnapshot()
	if err != nil {
		return err
	}
	for k, v := range values {
		if !json.Valid(v) {
			return fmt.Errorf("value for %s is not valid JSON", k)
		}
		snapshot[k] = json.RawMessage(v)
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return s.d.Write(snapshotKey, data)
}

func (s *Store) Watch(ctx context.Context) (<-chan storage.Event, error) {
	return storage.WatchFiles(ctx, s.basePath, func(name string) bool {
		return name == snapshotKey
	})
}
