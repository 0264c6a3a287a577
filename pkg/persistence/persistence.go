// Package persistence stores the dataset as a single JSON document on disk,
// with a backup kept from before every overwrite and best-effort recovery
// from corrupt files.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/queuetrace/queuetrace/internal/domain/record"
)

// LoadResult is the outcome of reading the stored dataset. Migrated means a
// legacy schema was upgraded in memory and must be re-saved by the caller.
// Recovered means the primary file was unreadable and the backup was used.
// Corrupted means neither was readable and defaults were returned.
type LoadResult struct {
	Dataset   *record.Dataset
	Migrated  bool
	Recovered bool
	Corrupted bool
}

// Store reads and writes the dataset document.
type Store struct {
	path   string
	logger *slog.Logger
}

// New creates a store for the given file path.
func New(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// BackupPath returns where the pre-overwrite copy is kept.
func (s *Store) BackupPath() string {
	return s.path + ".bak"
}

// Load reads the dataset. A missing file yields empty defaults. An
// unreadable file falls back to the backup, and to empty defaults when the
// backup is unreadable too; the flags on the result say which happened.
func (s *Store) Load(ctx context.Context) (*LoadResult, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &LoadResult{Dataset: record.NewDataset()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	ds, migrated, err := decode(data)
	if err == nil {
		return &LoadResult{Dataset: ds, Migrated: migrated}, nil
	}
	s.logger.Warn("stored dataset is unreadable, trying backup",
		slog.String("path", s.path),
		slog.Any("error", err),
	)

	backup, backupErr := os.ReadFile(s.BackupPath())
	if backupErr == nil {
		if ds, migrated, err := decode(backup); err == nil {
			return &LoadResult{Dataset: ds, Migrated: migrated, Recovered: true}, nil
		}
	}

	return &LoadResult{Dataset: record.NewDataset(), Corrupted: true}, nil
}

// Save writes the dataset atomically: the previous file is copied to the
// backup path, then a temp file is renamed over the original.
func (s *Store) Save(ctx context.Context, ds *record.Dataset) error {
	payload := *ds
	payload.Version = record.SchemaVersion

	data, err := json.MarshalIndent(&payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if existing, err := os.ReadFile(s.path); err == nil {
		if err := os.WriteFile(s.BackupPath(), existing, 0o644); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace dataset file: %w", err)
	}
	return nil
}

// decode parses a stored payload, migrating legacy shapes: a bare array is
// treated as the tests list, and a document without a version field gets the
// current version and an empty imports list where missing.
func decode(data []byte) (*record.Dataset, bool, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, false, fmt.Errorf("invalid JSON: %w", err)
	}

	switch probe.(type) {
	case []any:
		var tests []record.Test
		if err := json.Unmarshal(data, &tests); err != nil {
			return nil, false, fmt.Errorf("invalid legacy tests array: %w", err)
		}
		ds := record.NewDataset()
		ds.Tests = tests
		return ds, true, nil
	case map[string]any:
		var payload struct {
			Version *int                  `json:"version"`
			Tests   []record.Test         `json:"tests"`
			Imports *[]record.ImportBatch `json:"imports"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, false, fmt.Errorf("invalid dataset document: %w", err)
		}

		ds := record.NewDataset()
		if payload.Tests != nil {
			ds.Tests = payload.Tests
		}
		if payload.Imports != nil {
			ds.Imports = *payload.Imports
		}

		migrated := payload.Version == nil || payload.Imports == nil
		return ds, migrated, nil
	default:
		return nil, false, errors.New("dataset document has an unexpected shape")
	}
}
