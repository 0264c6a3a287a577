package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuetrace/queuetrace/internal/domain/history"
	"github.com/queuetrace/queuetrace/internal/domain/record"
	"github.com/queuetrace/queuetrace/pkg/persistence"
)

// fakeProvider keeps the persisted dataset in memory and records calls.
type fakeProvider struct {
	loadResult *persistence.LoadResult
	saved      []*record.Dataset
}

func (p *fakeProvider) Load(ctx context.Context) (*persistence.LoadResult, error) {
	if p.loadResult == nil {
		return &persistence.LoadResult{Dataset: record.NewDataset()}, nil
	}
	return p.loadResult, nil
}

func (p *fakeProvider) Save(ctx context.Context, ds *record.Dataset) error {
	p.saved = append(p.saved, ds.Clone())
	return nil
}

func newTestStore(t *testing.T) (*Store, *fakeProvider) {
	t.Helper()
	p := &fakeProvider{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(p, history.NewManager(history.DefaultLimit), logger)
	require.NoError(t, s.Open(context.Background()))
	return s, p
}

func batchOf(importID string, emails ...string) ([]record.Test, record.ImportBatch) {
	anchor := 1000
	tests := make([]record.Test, 0, len(emails))
	for _, e := range emails {
		tests = append(tests, record.Test{
			Email:       e,
			TestingDate: "2026-01-15",
			EventName:   "Show",
			QueueNumber: 500,
			QueueAnchor: &anchor,
			ImportID:    importID,
		})
	}
	return tests, record.ImportBatch{
		ID: importID, Filename: importID + ".csv", Date: "2026-01-16", TestCount: len(tests),
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("import recalculates and persists", func(t *testing.T) {
		s, p := newTestStore(t)
		tests, ib := batchOf("b1", "a@b.com")

		require.NoError(t, s.ApplyImport(ctx, tests, ib))

		ds := s.Dataset()
		require.Len(t, ds.Tests, 1)
		assert.Equal(t, 1, ds.Tests[0].TestingNum)
		assert.InDelta(t, 50.0, ds.Tests[0].QueuePercent, 1e-9)
		require.Len(t, ds.Imports, 1)
		require.Len(t, p.saved, 1)
	})

	t.Run("undo restores the pre-import dataset and redo replays it", func(t *testing.T) {
		s, _ := newTestStore(t)

		tests1, ib1 := batchOf("b1", "a@b.com")
		require.NoError(t, s.ApplyImport(ctx, tests1, ib1))
		afterFirst := s.Dataset()

		tests2, ib2 := batchOf("b2", "b@c.com")
		require.NoError(t, s.ApplyImport(ctx, tests2, ib2))
		afterSecond := s.Dataset()

		require.NoError(t, s.Undo(ctx))
		assert.Empty(t, cmp.Diff(afterFirst, s.Dataset()))

		require.NoError(t, s.Redo(ctx))
		assert.Empty(t, cmp.Diff(afterSecond, s.Dataset()))
	})

	t.Run("undo on an empty history signals without mutating", func(t *testing.T) {
		s, p := newTestStore(t)

		err := s.Undo(ctx)
		assert.ErrorIs(t, err, history.ErrNothingToUndo)
		assert.Empty(t, p.saved)
	})

	t.Run("removing an import cascades to its tests", func(t *testing.T) {
		s, _ := newTestStore(t)

		tests1, ib1 := batchOf("b1", "a@b.com", "b@c.com")
		require.NoError(t, s.ApplyImport(ctx, tests1, ib1))
		tests2, ib2 := batchOf("b2", "c@d.com")
		require.NoError(t, s.ApplyImport(ctx, tests2, ib2))

		removed, err := s.RemoveImport(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		ds := s.Dataset()
		require.Len(t, ds.Tests, 1)
		assert.Equal(t, "c@d.com", ds.Tests[0].Email)
		require.Len(t, ds.Imports, 1)
		assert.Equal(t, "b2", ds.Imports[0].ID)

		// Undo brings the batch and its tests back.
		require.NoError(t, s.Undo(ctx))
		assert.Len(t, s.Dataset().Tests, 3)
	})

	t.Run("removing an unknown import leaves everything untouched", func(t *testing.T) {
		s, p := newTestStore(t)
		tests, ib := batchOf("b1", "a@b.com")
		require.NoError(t, s.ApplyImport(ctx, tests, ib))
		savedBefore := len(p.saved)

		_, err := s.RemoveImport(ctx, "missing")
		assert.ErrorIs(t, err, ErrUnknownImport)
		assert.Len(t, s.Dataset().Tests, 1)
		assert.Len(t, p.saved, savedBefore)
	})

	t.Run("clear empties the dataset but stays undoable", func(t *testing.T) {
		s, _ := newTestStore(t)
		tests, ib := batchOf("b1", "a@b.com")
		require.NoError(t, s.ApplyImport(ctx, tests, ib))

		require.NoError(t, s.Clear(ctx))
		assert.Empty(t, s.Dataset().Tests)
		assert.Empty(t, s.Dataset().Imports)

		require.NoError(t, s.Undo(ctx))
		assert.Len(t, s.Dataset().Tests, 1)
	})

	t.Run("open re-saves migrated and recovered payloads", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		migrated := record.NewDataset()
		migrated.Tests = []record.Test{{Email: "a@b.com", TestingDate: "2026-01-15", EventName: "Show", QueueNumber: 1}}
		p := &fakeProvider{loadResult: &persistence.LoadResult{Dataset: migrated, Migrated: true}}

		s := New(p, history.NewManager(history.DefaultLimit), logger)
		require.NoError(t, s.Open(context.Background()))
		require.Len(t, p.saved, 1)

		// The loaded dataset is recalculated before use.
		assert.Equal(t, 1, s.Dataset().Tests[0].TestingNum)
	})

	t.Run("dataset returns copies", func(t *testing.T) {
		s, _ := newTestStore(t)
		tests, ib := batchOf("b1", "a@b.com")
		require.NoError(t, s.ApplyImport(ctx, tests, ib))

		leaked := s.Dataset()
		leaked.Tests[0].Email = "tampered@example.com"
		assert.Equal(t, "a@b.com", s.Dataset().Tests[0].Email)
	})
}
