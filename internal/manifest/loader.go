// Package manifest loads the URL list consumed by the download-and-match
// flow from a CSV or Parquet manifest file.
package manifest

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// URLColumnIndex is the fixed CSV column the image URL lives in. The first
// row is always a header and always skipped.
const URLColumnIndex = 1

// Entry is one manifest row.
type Entry struct {
	Identifier string `parquet:"identifier"`
	URL        string `parquet:"url"`
}

// Loader reads manifest entries from a CSV or Parquet file.
type Loader struct {
	manifestPath string
}

// NewLoader creates a loader for the given manifest file.
func NewLoader(manifestPath string) *Loader {
	return &Loader{manifestPath: manifestPath}
}

// Load reads all entries, dispatching on the file extension.
func (l *Loader) Load() ([]Entry, error) {
	ext := strings.ToLower(filepath.Ext(l.manifestPath))
	switch ext {
	case ".csv":
		return l.loadCSV()
	case ".parquet":
		return l.loadParquet()
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s (supported: .csv, .parquet)", ext)
	}
}

// loadCSV reads entries from a CSV manifest. Column 0 is an identifier,
// column URLColumnIndex the URL; rows too short to carry a URL are skipped.
func (l *Loader) loadCSV() ([]Entry, error) {
	slog.Debug("Opening CSV manifest", "path", l.manifestPath)

	file, err := os.Open(l.manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // rows may carry trailing columns

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV manifest: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var entries []Entry
	for i, row := range rows {
		if i == 0 {
			continue // header row, always present
		}
		if len(row) <= URLColumnIndex {
			slog.Warn("Skipping manifest row with no URL column", "row", i+1)
			continue
		}
		url := strings.TrimSpace(row[URLColumnIndex])
		if url == "" {
			continue
		}
		entries = append(entries, Entry{Identifier: strings.TrimSpace(row[0]), URL: url})
	}

	slog.Debug("Finished reading CSV manifest", "entries", len(entries))
	return entries, nil
}

// loadParquet reads entries from a Parquet manifest.
func (l *Loader) loadParquet() ([]Entry, error) {
	slog.Debug("Opening Parquet manifest", "path", l.manifestPath)

	file, err := os.Open(l.manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat manifest file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Entry](pf)
	defer reader.Close()

	var entries []Entry
	rows := make([]Entry, 128)
	for {
		n, err := reader.Read(rows)
		if n > 0 {
			for _, row := range rows[:n] {
				if strings.TrimSpace(row.URL) != "" {
					entries = append(entries, row)
				}
			}
		}
		if err != nil {
			break
		}
	}

	slog.Debug("Finished reading Parquet manifest", "entries", len(entries))
	return entries, nil
}
