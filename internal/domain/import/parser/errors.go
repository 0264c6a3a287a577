package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/queuetrace/queuetrace/internal/domain/import/validator"
)

// maxReportedErrors caps how many descriptors a ValidationError carries;
// the rest are summarized as an omitted count.
const maxReportedErrors = 10

// ErrNoUsableRows is returned when no rows survive after incomplete ones are
// skipped. The import applies nothing in that case.
var ErrNoUsableRows = errors.New("file contains no usable rows")

// FormatError reports a required column missing from the file header. The
// import is rejected without reading any rows.
type FormatError struct {
	Column string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

// ValidationError reports rows that failed field validation. It carries at
// most maxReportedErrors descriptors plus a count of the omitted remainder.
type ValidationError struct {
	Descriptors []validator.ErrorDescriptor
	Omitted     int
}

// NewValidationError builds a ValidationError from the full descriptor list,
// truncating it to the reporting cap.
func NewValidationError(descriptors []validator.ErrorDescriptor) *ValidationError {
	e := &ValidationError{Descriptors: descriptors}
	if len(descriptors) > maxReportedErrors {
		e.Descriptors = descriptors[:maxReportedErrors]
		e.Omitted = len(descriptors) - maxReportedErrors
	}
	return e
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation error(s)", len(e.Descriptors)+e.Omitted)
	for _, d := range e.Descriptors {
		b.WriteString("; ")
		b.WriteString(d.String())
	}
	if e.Omitted > 0 {
		fmt.Fprintf(&b, "; and %d more", e.Omitted)
	}
	return b.String()
}
