// Package metrics derives the per-account ordinal, percentile and trend
// fields from the raw test records.
package metrics

import (
	"sort"

	"github.com/queuetrace/queuetrace/internal/domain/record"
)

// Recalculate recomputes every derived field across the whole dataset. It
// partitions records by account, orders each partition by ascending testing
// date (ties keep input order), then assigns the 1-based chronological index,
// the percentile position and the change against the preceding record.
//
// The recomputation is total and idempotent. It must run after every
// structural change before the dataset is considered consistent.
func Recalculate(ds *record.Dataset) {
	byEmail := make(map[string][]int)
	for i, t := range ds.Tests {
		byEmail[t.Email] = append(byEmail[t.Email], i)
	}

	for _, indices := range byEmail {
		sort.SliceStable(indices, func(a, b int) bool {
			return ds.Tests[indices[a]].TestingDate < ds.Tests[indices[b]].TestingDate
		})

		prev := 0.0
		for n, idx := range indices {
			t := &ds.Tests[idx]
			t.TestingNum = n + 1
			t.QueuePercent = percent(*t)
			if n == 0 {
				t.QueueChangePercent = 0
			} else {
				t.QueueChangePercent = t.QueuePercent - prev
			}
			prev = t.QueuePercent
		}
	}
}

// percent computes the percentile position, falling back to 0 when the
// anchor is absent or zero.
func percent(t record.Test) float64 {
	anchor := t.Anchor()
	if anchor <= 0 {
		return 0
	}
	return float64(t.QueueNumber) / float64(anchor) * 100
}

// OverallChange compares an account's two most recent records and returns
// how much its percentile position improved: positive means the queue
// position got better over time (the percent went down). It returns nil when
// the account has fewer than two records; callers must treat nil as
// incomparable, not as zero.
func OverallChange(tests []record.Test) *float64 {
	if len(tests) < 2 {
		return nil
	}

	ordered := make([]record.Test, len(tests))
	copy(ordered, tests)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].TestingDate < ordered[b].TestingDate
	})

	n := len(ordered)
	change := percent(ordered[n-2]) - percent(ordered[n-1])
	return &change
}
