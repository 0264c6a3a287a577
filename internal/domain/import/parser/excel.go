package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/queuetrace/queuetrace/internal/domain/record"
)

// ParseXLSX parses the first sheet of a spreadsheet using the same header
// contract and row pipeline as ParseCSV.
func ParseXLSX(r io.Reader) ([]record.Test, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, checkHeader(nil)
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return nil, checkHeader(nil)
	}

	header := cells[0]
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}

	cell := func(r []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(r) {
			return ""
		}
		return strings.TrimSpace(r[i])
	}

	rows := make([]row, 0, len(cells)-1)
	for i, c := range cells[1:] {
		rows = append(rows, row{
			sourceRow: i + 1,
			email:     cell(c, ColEmail),
			date:      cell(c, ColTestingDate),
			event:     cell(c, ColEventName),
			number:    cell(c, ColQueueNumber),
			anchor:    cell(c, ColQueueAnchor),
		})
	}

	return buildRecords(rows)
}
