// Package files reads user-selected import files with the size and
// emptiness checks the importer relies on.
package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// MaxImportSize caps how large an import file may be.
const MaxImportSize = 50 << 20 // 50MB

var (
	ErrEmptyFile = errors.New("file is empty")
	ErrTooLarge  = fmt.Errorf("file exceeds the %dMB import limit", MaxImportSize>>20)
)

// Read returns the file contents, failing with a descriptive error when the
// file is missing, empty or over the size cap.
func Read(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", path, err)
	}

	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	if info.Size() > MaxImportSize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
