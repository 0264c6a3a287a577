package history

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuetrace/queuetrace/internal/domain/record"
)

func datasetWith(emails ...string) *record.Dataset {
	ds := record.NewDataset()
	for _, e := range emails {
		ds.Tests = append(ds.Tests, record.Test{
			Email:       e,
			TestingDate: "2026-01-15",
			EventName:   "Show",
			QueueNumber: 10,
		})
	}
	return ds
}

func TestManager(t *testing.T) {
	t.Run("undo restores the exact pre-mutation dataset", func(t *testing.T) {
		m := NewManager(DefaultLimit)
		current := datasetWith("a@b.com")
		before := current.Clone()

		m.Snapshot(current)
		current.Tests = append(current.Tests, record.Test{Email: "b@c.com"})

		restored, err := m.Undo(current)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(before, restored))
	})

	t.Run("redo restores the undone mutation", func(t *testing.T) {
		m := NewManager(DefaultLimit)
		current := datasetWith("a@b.com")

		m.Snapshot(current)
		mutated := current.Clone()
		mutated.Tests = append(mutated.Tests, record.Test{Email: "b@c.com"})

		restored, err := m.Undo(mutated)
		require.NoError(t, err)

		replayed, err := m.Redo(restored)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(mutated, replayed))
	})

	t.Run("snapshots are isolated from later mutation", func(t *testing.T) {
		m := NewManager(DefaultLimit)
		current := datasetWith("a@b.com")
		anchor := 500
		current.Tests[0].QueueAnchor = &anchor

		m.Snapshot(current)
		current.Tests[0].Email = "changed@example.com"
		*current.Tests[0].QueueAnchor = 9999

		restored, err := m.Undo(current)
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", restored.Tests[0].Email)
		assert.Equal(t, 500, *restored.Tests[0].QueueAnchor)
	})

	t.Run("empty stacks signal instead of failing", func(t *testing.T) {
		m := NewManager(DefaultLimit)
		current := datasetWith()

		_, err := m.Undo(current)
		assert.ErrorIs(t, err, ErrNothingToUndo)

		_, err = m.Redo(current)
		assert.ErrorIs(t, err, ErrNothingToRedo)
	})

	t.Run("a new snapshot invalidates redo history", func(t *testing.T) {
		m := NewManager(DefaultLimit)
		current := datasetWith("a@b.com")

		m.Snapshot(current)
		restored, err := m.Undo(current)
		require.NoError(t, err)
		require.True(t, m.CanRedo())

		m.Snapshot(restored)
		assert.False(t, m.CanRedo())
	})

	t.Run("the stack never exceeds its bound and evicts oldest first", func(t *testing.T) {
		m := NewManager(DefaultLimit)

		for i := 0; i <= DefaultLimit; i++ {
			m.Snapshot(datasetWith(fmt.Sprintf("user%d@example.com", i)))
		}
		assert.Equal(t, DefaultLimit, m.Depth())

		// Unwind everything: the oldest surviving snapshot is #1, because
		// snapshot #0 was evicted by the 21st push.
		var last *record.Dataset
		for m.CanUndo() {
			var err error
			last, err = m.Undo(datasetWith())
			require.NoError(t, err)
		}
		require.NotNil(t, last)
		require.Len(t, last.Tests, 1)
		assert.Equal(t, "user1@example.com", last.Tests[0].Email)
	})
}
