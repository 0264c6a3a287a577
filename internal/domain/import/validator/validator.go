// Package validator enforces field-level constraints on a single imported
// row before it becomes a test record.
package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/queuetrace/queuetrace/internal/domain/import/dates"
)

// Field limits shared with the importer.
const (
	MaxEventNameLength = 200
	MaxQueueValue      = 10_000_000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Candidate is one imported row with cells trimmed but not yet converted.
// TestingDate holds the canonical date when normalization succeeded, or the
// raw trimmed value when it did not. QueueAnchor is empty when the cell was
// blank.
type Candidate struct {
	Email       string
	TestingDate string
	EventName   string
	QueueNumber string
	QueueAnchor string
}

// ErrorDescriptor describes one failed check on one source row.
type ErrorDescriptor struct {
	Row     int    `json:"row"` // 1-based source row index
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ErrorDescriptor) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// Validate runs every check on the candidate and returns all failures. An
// empty result means the row is valid. Checks are not short-circuited, so a
// single row can report several errors at once.
func Validate(c Candidate, row int) []ErrorDescriptor {
	var errs []ErrorDescriptor
	fail := func(field, format string, args ...any) {
		errs = append(errs, ErrorDescriptor{
			Row:     row,
			Field:   field,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if !emailPattern.MatchString(c.Email) {
		fail("email", "invalid email address %q", c.Email)
	}

	if _, ok := dates.Normalize(c.TestingDate); !ok {
		fail("testingDate", "unrecognized testing date %q", c.TestingDate)
	}

	if n := utf8.RuneCountInString(c.EventName); n < 1 || n > MaxEventNameLength {
		fail("eventName", "event name must be 1-%d characters, got %d", MaxEventNameLength, n)
	}

	qn, qnOK := parseQueueValue(c.QueueNumber)
	if !qnOK {
		fail("queueNumber", "queue number %q must be an integer between 0 and %d", c.QueueNumber, MaxQueueValue)
	}

	if c.QueueAnchor != "" {
		qa, qaOK := parseQueueValue(c.QueueAnchor)
		switch {
		case !qaOK:
			fail("queueAnchor", "queue anchor %q must be an integer between 0 and %d", c.QueueAnchor, MaxQueueValue)
		case qnOK && qa < qn:
			fail("queueAnchor", "queue anchor %d is smaller than queue number %d", qa, qn)
		}
	}

	return errs
}

// parseQueueValue parses a non-negative integer within the accepted queue
// range.
func parseQueueValue(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > MaxQueueValue {
		return 0, false
	}
	return n, true
}
