// Package accounts groups recalculated test records by account and applies
// the active filter and sort for listing.
package accounts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/queuetrace/queuetrace/internal/domain/metrics"
	"github.com/queuetrace/queuetrace/internal/domain/record"
)

// FilterKind selects which predicate a Filter applies.
type FilterKind string

const (
	FilterAll       FilterKind = "all"
	FilterInstants  FilterKind = "instants"  // latest percent at most 1
	FilterJuice     FilterKind = "juice"     // favorable percent on a large queue
	FilterExcellent FilterKind = "excellent" // latest percent in (10, 20]
	FilterImproving FilterKind = "improving"
	FilterDeclining FilterKind = "declining"
	FilterSearch    FilterKind = "search" // case-insensitive substring on email
	FilterFuzzy     FilterKind = "fuzzy"  // fuzzy match on email
	FilterGroup     FilterKind = "group"  // configured group membership
)

// Filter is the tagged selection of a predicate. Query carries the payload
// for search, fuzzy and group filters.
type Filter struct {
	Kind  FilterKind
	Query string
}

// ParseFilter converts the wire form ("all", "search:bob", "group:vip", ...)
// into a Filter.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Filter{Kind: FilterAll}, nil
	}

	kind, query, hasQuery := strings.Cut(s, ":")
	f := Filter{Kind: FilterKind(kind), Query: strings.TrimSpace(query)}
	switch f.Kind {
	case FilterAll, FilterInstants, FilterJuice, FilterExcellent, FilterImproving, FilterDeclining:
		if hasQuery {
			return Filter{}, fmt.Errorf("filter %q takes no argument", kind)
		}
		return f, nil
	case FilterSearch, FilterFuzzy, FilterGroup:
		if f.Query == "" {
			return Filter{}, fmt.Errorf("filter %q requires an argument", kind)
		}
		return f, nil
	default:
		return Filter{}, fmt.Errorf("unknown filter %q", s)
	}
}

// SortKey selects the ordering of listed accounts.
type SortKey string

const (
	SortByEmail  SortKey = "email"
	SortByChange SortKey = "change"
)

// Sort describes the requested ordering.
type Sort struct {
	Key  SortKey
	Desc bool
}

// Config carries the external thresholds and group assignments the filters
// depend on.
type Config struct {
	JuicePercentMax float64
	JuiceAnchorMin  int
	Groups          map[string]string // email -> group name, one group per email
}

// View is one account prepared for listing: its records newest-first plus
// the overall change metric (nil when the account has fewer than two
// records).
type View struct {
	Email  string        `json:"email"`
	Tests  []record.Test `json:"tests"`
	Change *float64      `json:"overallChange"`
}

// List groups the recalculated records by account, drops accounts rejected
// by the filter and orders the rest. Change stays nil for single-record
// accounts; it is treated as 0 for ordering only, never for filter
// membership.
func List(tests []record.Test, f Filter, s Sort, cfg Config) []View {
	grouped := make(map[string][]record.Test)
	var emails []string
	for _, t := range tests {
		if _, seen := grouped[t.Email]; !seen {
			emails = append(emails, t.Email)
		}
		grouped[t.Email] = append(grouped[t.Email], t.Clone())
	}

	views := make([]View, 0, len(emails))
	for _, email := range emails {
		v := View{
			Email:  email,
			Tests:  grouped[email],
			Change: metrics.OverallChange(grouped[email]),
		}
		if !matches(v, f, cfg) {
			continue
		}
		sort.SliceStable(v.Tests, func(a, b int) bool {
			return v.Tests[a].TestingDate > v.Tests[b].TestingDate
		})
		views = append(views, v)
	}

	orderViews(views, s)
	return views
}

// matches applies the filter predicate to one account view. Predicates that
// look at "the latest record" use the chronologically last one, ties broken
// by input order.
func matches(v View, f Filter, cfg Config) bool {
	switch f.Kind {
	case FilterAll, "":
		return true
	case FilterInstants:
		return latest(v.Tests).QueuePercent <= 1
	case FilterJuice:
		t := latest(v.Tests)
		return t.QueuePercent <= cfg.JuicePercentMax && t.Anchor() >= cfg.JuiceAnchorMin
	case FilterExcellent:
		p := latest(v.Tests).QueuePercent
		return p > 10 && p <= 20
	case FilterImproving:
		return v.Change != nil && *v.Change > 0
	case FilterDeclining:
		return v.Change != nil && *v.Change < 0
	case FilterSearch:
		return strings.Contains(strings.ToLower(v.Email), strings.ToLower(f.Query))
	case FilterFuzzy:
		return fuzzy.MatchNormalizedFold(f.Query, v.Email)
	case FilterGroup:
		return cfg.Groups[v.Email] == f.Query
	default:
		return false
	}
}

// latest returns the chronologically last record of a non-empty account.
func latest(tests []record.Test) record.Test {
	last := tests[0]
	for _, t := range tests[1:] {
		if t.TestingDate >= last.TestingDate {
			last = t
		}
	}
	return last
}

func orderViews(views []View, s Sort) {
	changeOf := func(v View) float64 {
		if v.Change == nil {
			return 0
		}
		return *v.Change
	}

	var less func(a, b int) bool
	switch s.Key {
	case SortByChange:
		less = func(a, b int) bool { return changeOf(views[a]) < changeOf(views[b]) }
	default:
		less = func(a, b int) bool { return views[a].Email < views[b].Email }
	}

	if s.Desc {
		inner := less
		less = func(a, b int) bool { return inner(b, a) }
	}

	sort.SliceStable(views, less)
}
