// Package remote derives content-store URLs from normalized filenames and
// probes them for genuine (non-placeholder) assets.
package remote

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultBaseURL is the content store's image endpoint. Override with the
// IMAGECHECK_BASE_URL environment variable.
const DefaultBaseURL = "https://images.example-cdn.com/is/image"

// ErrUnmappableName means no remote path can be derived from the filename.
var ErrUnmappableName = errors.New("filename cannot be mapped to a remote path")

var underscoreSlot = regexp.MustCompile(`^(.+)_(\d{3})$`)

// Derive computes the remote fetch URL for a normalized filename.
//
// The store addresses assets as /{first char of item}/{last two chars of
// item}/{name in dot-slot form}, always lowercase and always without a file
// extension. The missing extension is a property of the store's addressing
// scheme, not an omission.
func Derive(baseURL, name string) (string, error) {
	lower := strings.ToLower(name)
	base := strings.TrimSuffix(lower, filepath.Ext(lower))

	// Remote paths use the dot-slot form regardless of local convention.
	if m := underscoreSlot.FindStringSubmatch(base); m != nil {
		base = m[1] + "." + m[2]
	}

	item := base
	if idx := strings.IndexAny(base, "_."); idx >= 0 {
		item = base[:idx]
	}
	if item == "" {
		return "", ErrUnmappableName
	}

	shard := string(item[0])
	tail := item
	if len(item) > 2 {
		tail = item[len(item)-2:]
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + shard + "/" + tail + "/" + base, nil
}
