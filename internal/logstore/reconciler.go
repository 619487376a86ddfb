// Package logstore applies edits to the persisted log collection. Every
// mutation reads the full collection, changes it in memory and writes the
// whole collection back; concurrent writers elsewhere are last-writer-wins.
package logstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/hourlog/internal/constants"
	"github.com/julianstephens/hourlog/internal/errors"
	"github.com/julianstephens/hourlog/internal/logger"
	"github.com/julianstephens/hourlog/internal/models"
	"github.com/julianstephens/hourlog/internal/summary"
	"github.com/julianstephens/hourlog/internal/validation"
)

// Store persists the log aggregate. storage.Aggregates satisfies it.
type Store interface {
	Logs(ctx context.Context) ([]models.LogEntry, error)
	SaveLogs(ctx context.Context, logs []models.LogEntry) error
}

// View is the derived state shown after each operation.
type View struct {
	Logs       []models.LogEntry // full collection, newest first
	Filtered   []models.LogEntry
	Categories []summary.CategoryCount
	Stats      summary.Stats
	Criteria   summary.Criteria
}

type deletion struct {
	entry models.LogEntry
	index int
}

// Reconciler performs log mutations and keeps the derived view current.
type Reconciler struct {
	store Store
	now   func() time.Time

	mu       sync.Mutex
	undo     []deletion
	criteria summary.Criteria
	view     View
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

func New(store Store, opts ...Option) *Reconciler {
	r := &Reconciler{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Append validates text and stores a new entry at the front of the
// collection.
func (r *Reconciler) Append(ctx context.Context, text, category string) (models.LogEntry, error) {
	text, err := validation.LogText(text)
	if err != nil {
		return models.LogEntry{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	logs, err := r.store.Logs(ctx)
	if err != nil {
		return models.LogEntry{}, err
	}

	now := r.now()
	entry := models.LogEntry{
		ID:       nextID(logs, now),
		Text:     text,
		Time:     now.UTC().Format(constants.EntryTimeFormat),
		Category: strings.TrimSpace(category),
	}

	logs = append([]models.LogEntry{entry}, logs...)
	if err := r.commit(ctx, logs); err != nil {
		return models.LogEntry{}, err
	}
	logger.Debug("Log appended", "id", entry.ID, "category", entry.Category)
	return entry, nil
}

// Update replaces the text and category of an existing entry. The id and
// creation time never change.
func (r *Reconciler) Update(ctx context.Context, id int64, text, category string) (models.LogEntry, error) {
	text, err := validation.LogText(text)
	if err != nil {
		return models.LogEntry{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	logs, err := r.store.Logs(ctx)
	if err != nil {
		return models.LogEntry{}, err
	}
	i := indexOf(logs, id)
	if i < 0 {
		return models.LogEntry{}, errors.NewNotFound("log", id)
	}

	logs[i].Text = text
	logs[i].Category = strings.TrimSpace(category)
	updated := logs[i]
	if err := r.commit(ctx, logs); err != nil {
		return models.LogEntry{}, err
	}
	return updated, nil
}

// Delete removes an entry and remembers it, with its position, for Undo.
func (r *Reconciler) Delete(ctx context.Context, id int64) (models.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logs, err := r.store.Logs(ctx)
	if err != nil {
		return models.LogEntry{}, err
	}
	i := indexOf(logs, id)
	if i < 0 {
		return models.LogEntry{}, errors.NewNotFound("log", id)
	}

	removed := logs[i]
	logs = append(logs[:i], logs[i+1:]...)
	if err := r.commit(ctx, logs); err != nil {
		return models.LogEntry{}, err
	}
	r.undo = append(r.undo, deletion{entry: removed, index: i})
	return removed, nil
}

// Undo re-inserts the most recently deleted entry at the index it was
// removed from, clamped to the current collection length. It reports false
// when there is nothing to undo.
func (r *Reconciler) Undo(ctx context.Context) (models.LogEntry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.undo) == 0 {
		return models.LogEntry{}, false, nil
	}
	last := r.undo[len(r.undo)-1]

	logs, err := r.store.Logs(ctx)
	if err != nil {
		return models.LogEntry{}, false, err
	}

	index := last.index
	if index > len(logs) {
		index = len(logs)
	}
	restored := make([]models.LogEntry, 0, len(logs)+1)
	restored = append(restored, logs[:index]...)
	restored = append(restored, last.entry)
	restored = append(restored, logs[index:]...)

	if err := r.commit(ctx, restored); err != nil {
		return models.LogEntry{}, false, err
	}
	r.undo = r.undo[:len(r.undo)-1]
	return last.entry, true, nil
}

// CanUndo reports whether a deletion is waiting to be undone.
func (r *Reconciler) CanUndo() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.undo) > 0
}

// Clear deletes every log. It is not undoable.
func (r *Reconciler) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.undo = nil
	return r.commit(ctx, []models.LogEntry{})
}

// Refresh reloads the collection, e.g. after another process wrote it.
func (r *Reconciler) Refresh(ctx context.Context) (View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logs, err := r.store.Logs(ctx)
	if err != nil {
		return View{}, err
	}
	r.recompute(logs)
	return r.view, nil
}

// SetCriteria changes the filter and recomputes the view from the last
// loaded collection.
func (r *Reconciler) SetCriteria(c summary.Criteria) View {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.criteria = c
	r.recompute(r.view.Logs)
	return r.view
}

// View returns the view computed after the last operation.
func (r *Reconciler) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

func (r *Reconciler) commit(ctx context.Context, logs []models.LogEntry) error {
	if err := r.store.SaveLogs(ctx, logs); err != nil {
		return err
	}
	r.recompute(logs)
	return nil
}

func (r *Reconciler) recompute(logs []models.LogEntry) {
	if logs == nil {
		logs = []models.LogEntry{}
	}
	now := r.now()
	r.view = View{
		Logs:       logs,
		Filtered:   summary.Filter(logs, r.criteria, now),
		Categories: summary.AggregateByCategory(logs),
		Stats:      summary.ComputeStats(logs, now),
		Criteria:   r.criteria,
	}
}

func indexOf(logs []models.LogEntry, id int64) int {
	for i, l := range logs {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// nextID returns the creation time in milliseconds, bumped past any id
// already in use.
func nextID(logs []models.LogEntry, now time.Time) int64 {
	id := now.UnixMilli()
	used := make(map[int64]struct{}, len(logs))
	for _, l := range logs {
		used[l.ID] = struct{}{}
	}
	for {
		if _, taken := used[id]; !taken {
			return id
		}
		id++
	}
}
