// Package record defines the core data model: queue-position test records,
// import batches, and the dataset that groups them.
package record

// Test is a single queue-position measurement for an account.
//
// TestingNum, QueuePercent and QueueChangePercent are derived fields. They
// are computed by the metrics recalculator after every structural change and
// are never set by imports.
type Test struct {
	Email       string `json:"email"`
	TestingDate string `json:"testingDate"` // canonical YYYY-MM-DD
	EventName   string `json:"eventName"`
	QueueNumber int    `json:"queueNumber"`
	QueueAnchor *int   `json:"queueAnchor"` // total queue size, nil when unknown
	ImportID    string `json:"importId"`

	TestingNum         int     `json:"testingNum"`
	QueuePercent       float64 `json:"queuePercent"`
	QueueChangePercent float64 `json:"queueChangePercent"`
}

// Clone returns a deep copy of the test, including the anchor pointer.
func (t Test) Clone() Test {
	c := t
	if t.QueueAnchor != nil {
		anchor := *t.QueueAnchor
		c.QueueAnchor = &anchor
	}
	return c
}

// Anchor returns the queue anchor value, or 0 when none is set.
func (t Test) Anchor() int {
	if t.QueueAnchor == nil {
		return 0
	}
	return *t.QueueAnchor
}

// ImportBatch is the append-only log entry created once per successful
// import. Deleting a batch cascades to every Test carrying its ID.
type ImportBatch struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Date      string `json:"date"`
	TestCount int    `json:"testCount"`
}

// SchemaVersion is the current persisted dataset schema version.
const SchemaVersion = 1

// Dataset is the full ordered collection of tests plus the import batch log.
// It is the unit snapshotted by the history manager and persisted to disk.
type Dataset struct {
	Version int           `json:"version"`
	Tests   []Test        `json:"tests"`
	Imports []ImportBatch `json:"imports"`
}

// NewDataset returns an empty dataset at the current schema version.
func NewDataset() *Dataset {
	return &Dataset{
		Version: SchemaVersion,
		Tests:   []Test{},
		Imports: []ImportBatch{},
	}
}

// Clone returns a deep copy of the dataset with no shared structure.
func (d *Dataset) Clone() *Dataset {
	c := &Dataset{
		Version: d.Version,
		Tests:   make([]Test, len(d.Tests)),
		Imports: make([]ImportBatch, len(d.Imports)),
	}
	for i, t := range d.Tests {
		c.Tests[i] = t.Clone()
	}
	copy(c.Imports, d.Imports)
	return c
}
