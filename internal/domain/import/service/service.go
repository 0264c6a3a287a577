// Package service orchestrates imports: parse, resolve anchors, and commit
// the batch to the store as one snapshot-wrapped mutation.
package service

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/queuetrace/queuetrace/internal/domain/import/anchor"
	"github.com/queuetrace/queuetrace/internal/domain/import/parser"
	"github.com/queuetrace/queuetrace/internal/domain/record"
	"github.com/queuetrace/queuetrace/internal/store"
	"github.com/queuetrace/queuetrace/pkg/files"
)

// Result summarizes one successful import.
type Result struct {
	BatchID  string   `json:"batchId"`
	Filename string   `json:"filename"`
	Imported int      `json:"imported"`
	Warnings []string `json:"warnings"`
}

// Service runs the import pipeline against the dataset store.
type Service struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// New creates an import service.
func New(st *store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger, now: time.Now}
}

// ImportFile reads a file from disk and imports it. Read failures (missing,
// empty, oversized) surface verbatim.
func (s *Service) ImportFile(ctx context.Context, path string) (*Result, error) {
	data, err := files.Read(path)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, filepath.Base(path), data)
}

// Import parses the payload by extension (.xlsx spreadsheets, CSV
// otherwise), resolves missing anchors over the new batch, and appends the
// batch plus its log entry. Parse and validation failures reject the import
// with the dataset untouched.
func (s *Service) Import(ctx context.Context, filename string, data []byte) (*Result, error) {
	var (
		batch []record.Test
		err   error
	)
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		batch, err = parser.ParseXLSX(bytes.NewReader(data))
	} else {
		batch, err = parser.ParseCSV(string(data))
	}
	if err != nil {
		return nil, err
	}

	warnings := anchor.Resolve(batch)

	id := uuid.New().String()
	for i := range batch {
		batch[i].ImportID = id
	}

	ib := record.ImportBatch{
		ID:        id,
		Filename:  filename,
		Date:      s.now().Format("2006-01-02"),
		TestCount: len(batch),
	}

	if err := s.store.ApplyImport(ctx, batch, ib); err != nil {
		return nil, err
	}

	s.logger.Info("import completed",
		slog.String("batch_id", id),
		slog.String("filename", filename),
		slog.Int("tests", len(batch)),
		slog.Int("warnings", len(warnings)),
	)

	return &Result{
		BatchID:  id,
		Filename: filename,
		Imported: len(batch),
		Warnings: warnings,
	}, nil
}
