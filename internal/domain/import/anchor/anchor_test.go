package anchor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuetrace/queuetrace/internal/domain/record"
)

func intPtr(n int) *int { return &n }

func TestResolve(t *testing.T) {
	t.Run("rounds the highest anchor-less position up to the next thousand", func(t *testing.T) {
		batch := []record.Test{
			{Email: "a@b.com", EventName: "Show", QueueNumber: 500},
		}

		warnings := Resolve(batch)

		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], `"Show"`)
		assert.Contains(t, warnings[0], "1000")
		require.NotNil(t, batch[0].QueueAnchor)
		assert.Equal(t, 1000, *batch[0].QueueAnchor)
	})

	t.Run("applies one inferred anchor to every anchor-less record of the event", func(t *testing.T) {
		batch := []record.Test{
			{EventName: "Show", QueueNumber: 1200},
			{EventName: "Show", QueueNumber: 2500},
			{EventName: "Show", QueueNumber: 900, QueueAnchor: intPtr(4000)},
			{EventName: "Festival", QueueNumber: 100},
		}

		warnings := Resolve(batch)

		require.Len(t, warnings, 2)
		assert.Equal(t, 3000, *batch[0].QueueAnchor)
		assert.Equal(t, 3000, *batch[1].QueueAnchor)
		// Explicit anchors are untouched.
		assert.Equal(t, 4000, *batch[2].QueueAnchor)
		assert.Equal(t, 1000, *batch[3].QueueAnchor)
	})

	t.Run("exact multiples are not rounded further", func(t *testing.T) {
		batch := []record.Test{{EventName: "Show", QueueNumber: 2000}}
		Resolve(batch)
		assert.Equal(t, 2000, *batch[0].QueueAnchor)
	})

	t.Run("emits no warnings when every record carries an anchor", func(t *testing.T) {
		batch := []record.Test{
			{EventName: "Show", QueueNumber: 10, QueueAnchor: intPtr(100)},
		}
		assert.Empty(t, Resolve(batch))
	})

	t.Run("records do not share the inferred anchor pointer", func(t *testing.T) {
		batch := []record.Test{
			{EventName: "Show", QueueNumber: 10},
			{EventName: "Show", QueueNumber: 20},
		}
		Resolve(batch)
		*batch[0].QueueAnchor = 99
		assert.Equal(t, 1000, *batch[1].QueueAnchor)
	})
}
