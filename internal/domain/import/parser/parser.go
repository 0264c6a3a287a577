// Package parser turns tabular import files (CSV, XLSX) into validated test
// records. Imports are all-or-nothing: any validation failure rejects the
// whole batch.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/queuetrace/queuetrace/internal/domain/import/dates"
	"github.com/queuetrace/queuetrace/internal/domain/import/validator"
	"github.com/queuetrace/queuetrace/internal/domain/record"
)

// Required and optional header columns. Names are exact and case-sensitive;
// surrounding whitespace is trimmed before matching.
const (
	ColEmail       = "Email"
	ColTestingDate = "Testing Date"
	ColEventName   = "Event Name"
	ColQueueNumber = "Queue Number"
	ColQueueAnchor = "Queue Anchor"
)

var requiredColumns = []string{ColEmail, ColTestingDate, ColEventName, ColQueueNumber}

func init() {
	gocsv.SetHeaderNormalizer(strings.TrimSpace)
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.LazyQuotes = true
		r.TrimLeadingSpace = true
		return r
	})
}

// testRow is one raw CSV row unmarshaled by header name.
type testRow struct {
	Email       string `csv:"Email"`
	TestingDate string `csv:"Testing Date"`
	EventName   string `csv:"Event Name"`
	QueueNumber string `csv:"Queue Number"`
	QueueAnchor string `csv:"Queue Anchor"`
}

// row is the format-independent shape shared by the CSV and XLSX paths.
// sourceRow is the 1-based data row index in the original file.
type row struct {
	sourceRow int
	email     string
	date      string
	event     string
	number    string
	anchor    string
}

// ParseCSV parses CSV text into a batch of validated test records. ImportID
// is left blank; the import service assigns it when the batch is accepted.
func ParseCSV(text string) ([]record.Test, error) {
	if err := checkCSVHeader(text); err != nil {
		return nil, err
	}

	var raw []testRow
	if err := gocsv.UnmarshalString(text, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	rows := make([]row, 0, len(raw))
	for i, r := range raw {
		rows = append(rows, row{
			sourceRow: i + 1,
			email:     strings.TrimSpace(r.Email),
			date:      strings.TrimSpace(r.TestingDate),
			event:     strings.TrimSpace(r.EventName),
			number:    strings.TrimSpace(r.QueueNumber),
			anchor:    strings.TrimSpace(r.QueueAnchor),
		})
	}

	return buildRecords(rows)
}

// checkCSVHeader verifies the required columns are present before any row
// parsing happens.
func checkCSVHeader(text string) error {
	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		header = nil
	} else if err != nil {
		return fmt.Errorf("failed to read header row: %w", err)
	}

	return checkHeader(header)
}

// checkHeader reports the first required column missing from the trimmed
// header, if any.
func checkHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	for _, col := range requiredColumns {
		if !present[col] {
			return &FormatError{Column: col}
		}
	}
	return nil
}

// buildRecords runs the shared ingest pipeline: skip incomplete rows,
// normalize dates, validate every survivor, then convert. The whole batch is
// rejected when any surviving row fails validation.
func buildRecords(rows []row) ([]record.Test, error) {
	type candidateRow struct {
		sourceRow int
		candidate validator.Candidate
	}

	var survivors []candidateRow
	for _, r := range rows {
		// Rows missing any required cell are skipped, not reported.
		if r.email == "" || r.date == "" || r.event == "" || r.number == "" {
			continue
		}

		// Keep the raw value when normalization fails so the validator can
		// report it with a clear message.
		date := r.date
		if normalized, ok := dates.Normalize(r.date); ok {
			date = normalized
		}

		survivors = append(survivors, candidateRow{
			sourceRow: r.sourceRow,
			candidate: validator.Candidate{
				Email:       r.email,
				TestingDate: date,
				EventName:   r.event,
				QueueNumber: r.number,
				QueueAnchor: r.anchor,
			},
		})
	}

	var descriptors []validator.ErrorDescriptor
	for _, s := range survivors {
		descriptors = append(descriptors, validator.Validate(s.candidate, s.sourceRow)...)
	}
	if len(descriptors) > 0 {
		return nil, NewValidationError(descriptors)
	}

	if len(survivors) == 0 {
		return nil, ErrNoUsableRows
	}

	records := make([]record.Test, 0, len(survivors))
	for _, s := range survivors {
		c := s.candidate
		number, _ := strconv.Atoi(c.QueueNumber)

		var anchor *int
		if c.QueueAnchor != "" {
			v, _ := strconv.Atoi(c.QueueAnchor)
			anchor = &v
		}

		records = append(records, record.Test{
			Email:       c.Email,
			TestingDate: c.TestingDate,
			EventName:   c.EventName,
			QueueNumber: number,
			QueueAnchor: anchor,
		})
	}

	return records, nil
}
