// Package store owns the in-memory dataset and coordinates every mutation
// with history snapshots, metrics recalculation and persistence.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/queuetrace/queuetrace/internal/domain/history"
	"github.com/queuetrace/queuetrace/internal/domain/metrics"
	"github.com/queuetrace/queuetrace/internal/domain/record"
	"github.com/queuetrace/queuetrace/pkg/persistence"
)

// ErrUnknownImport is returned when a batch removal names an import id that
// is not in the log.
var ErrUnknownImport = errors.New("unknown import batch")

// Provider loads and saves the persisted dataset.
type Provider interface {
	Load(ctx context.Context) (*persistence.LoadResult, error)
	Save(ctx context.Context, ds *record.Dataset) error
}

// Store holds the current dataset. All mutating operations snapshot the
// pre-mutation state, recalculate derived metrics and persist before
// returning, under one mutex: user actions are strictly sequential.
type Store struct {
	mu      sync.Mutex
	current *record.Dataset
	hist    *history.Manager
	persist Provider
	logger  *slog.Logger
}

// New creates a store over an empty dataset.
func New(persist Provider, hist *history.Manager, logger *slog.Logger) *Store {
	return &Store{
		current: record.NewDataset(),
		hist:    hist,
		persist: persist,
		logger:  logger,
	}
}

// Open loads the persisted dataset. A migrated or recovered payload is
// re-saved immediately so the on-disk form catches up with the current
// schema.
func (s *Store) Open(ctx context.Context) error {
	res, err := s.persist.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if res.Corrupted {
		s.logger.Warn("stored dataset was unreadable, starting from defaults")
	}
	if res.Recovered {
		s.logger.Warn("stored dataset restored from backup")
	}

	if res.Migrated || res.Recovered {
		if err := s.persist.Save(ctx, res.Dataset); err != nil {
			return fmt.Errorf("failed to re-save dataset after migration: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = res.Dataset
	s.recalculate()
	s.logger.Info("dataset loaded",
		slog.Int("tests", len(s.current.Tests)),
		slog.Int("imports", len(s.current.Imports)),
	)
	return nil
}

// Dataset returns a deep copy of the current dataset for readers.
func (s *Store) Dataset() *record.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// CanUndo reports whether undo history is available.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

// CanRedo reports whether redo history is available.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// ApplyImport appends an accepted batch and its log entry. The pre-import
// state is snapshotted first, so undo removes the batch exactly.
func (s *Store) ApplyImport(ctx context.Context, batch []record.Test, ib record.ImportBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hist.Snapshot(s.current)
	s.current.Tests = append(s.current.Tests, batch...)
	s.current.Imports = append(s.current.Imports, ib)
	s.recalculate()
	return s.save(ctx)
}

// RemoveImport deletes an import batch and cascades to every test created by
// it. Returns how many tests were removed.
func (s *Store) RemoveImport(ctx context.Context, importID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, ib := range s.current.Imports {
		if ib.ID == importID {
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrUnknownImport, importID)
	}

	s.hist.Snapshot(s.current)

	kept := s.current.Tests[:0:0]
	removed := 0
	for _, t := range s.current.Tests {
		if t.ImportID == importID {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.current.Tests = kept

	batches := s.current.Imports[:0:0]
	for _, ib := range s.current.Imports {
		if ib.ID != importID {
			batches = append(batches, ib)
		}
	}
	s.current.Imports = batches

	s.recalculate()
	return removed, s.save(ctx)
}

// Clear wipes all tests and import batches. The wiped state is still
// reachable through undo.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hist.Snapshot(s.current)
	s.current = record.NewDataset()
	s.recalculate()
	return s.save(ctx)
}

// Undo restores the most recent snapshot. history.ErrNothingToUndo is an
// informational signal, not a failure.
func (s *Store) Undo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored, err := s.hist.Undo(s.current)
	if err != nil {
		return err
	}
	s.current = restored
	s.recalculate()
	return s.save(ctx)
}

// Redo replays the most recently undone mutation.
func (s *Store) Redo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored, err := s.hist.Redo(s.current)
	if err != nil {
		return err
	}
	s.current = restored
	s.recalculate()
	return s.save(ctx)
}

// SaveNow persists the current dataset without mutating it. Used by the
// autosave scheduler.
func (s *Store) SaveNow(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

// Reset returns the store to an empty dataset and drops all history.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = record.NewDataset()
	s.hist.Reset()
}

// recalculate runs the total metrics recomputation. Callers hold the mutex.
func (s *Store) recalculate() {
	start := time.Now()
	metrics.Recalculate(s.current)
	s.logger.Debug("derived metrics recalculated",
		slog.Int("tests", len(s.current.Tests)),
		slog.Duration("took", time.Since(start)),
	)
}

// save persists the current dataset. Callers hold the mutex.
func (s *Store) save(ctx context.Context) error {
	if err := s.persist.Save(ctx, s.current); err != nil {
		return fmt.Errorf("failed to persist dataset: %w", err)
	}
	return nil
}
