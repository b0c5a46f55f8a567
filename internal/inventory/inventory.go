// Package inventory holds the in-memory batch of image records and enforces
// naming constraints across it.
package inventory

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/retailops/imagecheck/internal/models"
)

// AllowedExtensions is the image-extension set accepted on import and
// required for a proposed name to be valid.
var AllowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"tiff": true,
	"tif":  true,
	"bmp":  true,
	"webp": true,
	"heic": true,
}

// HasAllowedExtension reports whether the name carries an extension from the
// allowed set.
func HasAllowedExtension(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return AllowedExtensions[ext]
}

// ValidateRename checks a proposed name against the batch's naming rules:
// non-empty, allowed image extension, and no case-insensitive collision with
// another record's proposed name. existingLower holds the other records'
// proposed names already lowercased.
func ValidateRename(proposed string, existingLower []string) error {
	if strings.TrimSpace(proposed) == "" {
		return fmt.Errorf("proposed name is empty")
	}
	if !HasAllowedExtension(proposed) {
		return fmt.Errorf("%q is not a valid image file extension", filepath.Ext(proposed))
	}
	lower := strings.ToLower(proposed)
	for _, existing := range existingLower {
		if existing == lower {
			return fmt.Errorf("name %q collides with another record in the batch", proposed)
		}
	}
	return nil
}

// Batch is the mutable record collection the presentation layer renders.
// Records are kept in import order; all access is serialized through the
// mutex so concurrent passes never race on the slice.
type Batch struct {
	mu      sync.RWMutex
	records []*models.ImageRecord
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Add appends a record to the batch.
func (b *Batch) Add(record *models.ImageRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, record)
}

// Records returns a snapshot of the batch in import order. The slice is a
// copy; the pointed-to records are shared.
func (b *Batch) Records() []*models.ImageRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*models.ImageRecord, len(b.records))
	copy(out, b.records)
	return out
}

// Len returns the number of records in the batch.
func (b *Batch) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

// ConfirmUnique marks a record as operator-confirmed unique. This is the only
// path to StatusUnique; probes never set it.
func (b *Batch) ConfirmUnique(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.records {
		if r.ID == id {
			r.Status = models.StatusUnique
			return true
		}
	}
	return false
}

// Remove deletes the record with the given id. Disk contents are untouched.
func (b *Batch) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.records {
		if r.ID == id {
			b.records = append(b.records[:i], b.records[i+1:]...)
			return true
		}
	}
	return false
}

// ValidateNames refreshes every record's naming diagnostics: convention
// warnings from classification and rename errors for duplicate proposed
// names within the batch.
func (b *Batch) ValidateNames(classify func(string) (warning string)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[string]int, len(b.records))
	for _, r := range b.records {
		seen[strings.ToLower(r.ProposedName)]++
	}

	for _, r := range b.records {
		r.NamingWarning = classify(r.ProposedName)

		r.RenameError = ""
		if seen[strings.ToLower(r.ProposedName)] > 1 {
			r.RenameError = fmt.Sprintf("name %q collides with another record in the batch", r.ProposedName)
		} else if !HasAllowedExtension(r.ProposedName) {
			r.RenameError = fmt.Sprintf("%q is not a valid image file extension", filepath.Ext(r.ProposedName))
		}
	}
}

// Import walks the given files and directories and adds a record for every
// file with an allowed image extension. Directories are scanned recursively;
// unreadable entries are logged and skipped.
func Import(batch *Batch, paths []string) (int, error) {
	added := 0
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return added, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if !info.IsDir() {
			if HasAllowedExtension(path) {
				batch.Add(models.NewImageRecord(path))
				added++
			} else {
				slog.Debug("Skipping non-image file", "path", path)
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				slog.Warn("Skipping unreadable entry", "path", p, "error", err)
				return nil
			}
			if d.IsDir() || !HasAllowedExtension(p) {
				return nil
			}
			batch.Add(models.NewImageRecord(p))
			added++
			return nil
		})
		if err != nil {
			return added, fmt.Errorf("failed to walk %s: %w", path, err)
		}
	}
	return added, nil
}
