// Package anchor fills in missing total-queue-size values for a freshly
// imported batch.
package anchor

import (
	"fmt"

	"github.com/queuetrace/queuetrace/internal/domain/record"
)

// roundingStep is the granularity inferred anchors are rounded up to.
const roundingStep = 1000

// Resolve infers an anchor for every event in the batch that has anchor-less
// records: the highest observed queue number among those records, rounded up
// to the next thousand. The inferred value is written onto each anchor-less
// record in place. One advisory warning is returned per affected event; the
// heuristic never touches previously stored records.
func Resolve(batch []record.Test) []string {
	// Highest anchor-less queue number per event, in first-seen order.
	maxNumber := make(map[string]int)
	var events []string
	for _, t := range batch {
		if t.QueueAnchor != nil {
			continue
		}
		if _, seen := maxNumber[t.EventName]; !seen {
			events = append(events, t.EventName)
		}
		if t.QueueNumber > maxNumber[t.EventName] {
			maxNumber[t.EventName] = t.QueueNumber
		}
	}

	inferred := make(map[string]int, len(events))
	warnings := make([]string, 0, len(events))
	for _, event := range events {
		v := roundUp(maxNumber[event])
		inferred[event] = v
		warnings = append(warnings, fmt.Sprintf(
			"event %q has rows without a total queue size; assuming %d based on the highest observed position %d",
			event, v, maxNumber[event]))
	}

	for i := range batch {
		if batch[i].QueueAnchor != nil {
			continue
		}
		v := inferred[batch[i].EventName]
		batch[i].QueueAnchor = &v
	}

	return warnings
}

func roundUp(n int) int {
	return (n + roundingStep - 1) / roundingStep * roundingStep
}
