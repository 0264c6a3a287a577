// Package history provides bounded undo/redo over full dataset snapshots.
package history

import (
	"errors"

	"github.com/queuetrace/queuetrace/internal/domain/record"
)

// DefaultLimit is how many undo snapshots are retained before the oldest is
// evicted.
const DefaultLimit = 20

// Non-fatal signals for an empty stack. Callers report these to the user
// instead of failing.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Manager keeps bounded undo and redo stacks of deep-copied datasets. Every
// snapshot is a full copy with no structural sharing, which bounds memory to
// limit x dataset size. Calls must be strictly sequential; the manager does
// no locking of its own.
type Manager struct {
	limit int
	undo  []*record.Dataset
	redo  []*record.Dataset
}

// NewManager creates a manager retaining at most limit undo snapshots.
// Non-positive limits fall back to DefaultLimit.
func NewManager(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit}
}

// Snapshot records a deep copy of the given pre-mutation state. The oldest
// snapshot is evicted once the stack is full, and any redo history is
// invalidated: after a new edit there is nothing to redo.
func (m *Manager) Snapshot(current *record.Dataset) {
	m.undo = append(m.undo, current.Clone())
	if len(m.undo) > m.limit {
		m.undo = m.undo[1:]
	}
	m.redo = nil
}

// Undo exchanges the current state for the most recent snapshot. The current
// state is deep-copied onto the redo stack. Returns ErrNothingToUndo when no
// snapshot exists; the caller must recalculate derived metrics and persist
// the returned dataset.
func (m *Manager) Undo(current *record.Dataset) (*record.Dataset, error) {
	if len(m.undo) == 0 {
		return nil, ErrNothingToUndo
	}
	m.redo = append(m.redo, current.Clone())
	restored := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	return restored, nil
}

// Redo is the mirror of Undo, replaying the most recently undone state.
func (m *Manager) Redo(current *record.Dataset) (*record.Dataset, error) {
	if len(m.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	m.undo = append(m.undo, current.Clone())
	restored := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	return restored, nil
}

// CanUndo reports whether an undo snapshot is available.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether a redo snapshot is available.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Depth returns the current undo stack size.
func (m *Manager) Depth() int { return len(m.undo) }

// Reset drops all history.
func (m *Manager) Reset() {
	m.undo = nil
	m.redo = nil
}
