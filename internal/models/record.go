package models

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Status is the probe outcome for a record's own remote asset.
type Status int

const (
	// StatusNotChecked means no probe has run for this record yet.
	StatusNotChecked Status = iota
	// StatusExists means the remote asset was fetched and its content is genuine.
	StatusExists
	// StatusError covers transport failures, unmappable names, and placeholder
	// content. All three mean the remote asset cannot be trusted.
	StatusError
	// StatusUnique is set by an explicit caller confirmation flow, never by the
	// prober itself.
	StatusUnique
)

func (s Status) String() string {
	switch s {
	case StatusNotChecked:
		return "not_checked"
	case StatusExists:
		return "exists"
	case StatusError:
		return "error"
	case StatusUnique:
		return "unique"
	default:
		return "unknown"
	}
}

// MarshalYAML renders the status by name in report files.
func (s Status) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// IssueSeparator joins accumulated reconciliation findings on a record.
const IssueSeparator = "; "

// ImageRecord tracks one local image file and everything learned about its
// remote counterpart.
type ImageRecord struct {
	ID           string `json:"id" yaml:"id"`
	LocalPath    string `json:"local_path" yaml:"local_path"`
	Filename     string `json:"filename" yaml:"filename"`
	ProposedName string `json:"proposed_name" yaml:"proposed_name"`

	// RemoteURL is derived from the normalized proposed name. Empty means the
	// name could not be mapped to a remote path.
	RemoteURL string `json:"remote_url,omitempty" yaml:"remote_url,omitempty"`

	Status      Status `json:"status" yaml:"status"`
	ContentHash string `json:"content_hash,omitempty" yaml:"content_hash,omitempty"`

	// RemoteVerified is true when the probe fetched genuine (non-placeholder)
	// content at the record's remote URL.
	RemoteVerified bool `json:"remote_verified" yaml:"remote_verified"`

	RenameError   string `json:"rename_error,omitempty" yaml:"rename_error,omitempty"`
	NamingWarning string `json:"naming_warning,omitempty" yaml:"naming_warning,omitempty"`

	UsedDetailSlots      []string `json:"used_detail_slots,omitempty" yaml:"used_detail_slots,omitempty"`
	AvailableDetailSlots []string `json:"available_detail_slots,omitempty" yaml:"available_detail_slots,omitempty"`
	DetailSlotChecked    bool     `json:"detail_slot_checked" yaml:"detail_slot_checked"`

	SwatchValidationIssue string `json:"swatch_validation_issue,omitempty" yaml:"swatch_validation_issue,omitempty"`
	ExpandedCheckIssue    string `json:"expanded_check_issue,omitempty" yaml:"expanded_check_issue,omitempty"`
}

// NewImageRecord creates a record for a discovered local file. The ID is
// assigned once and never reused within a batch.
func NewImageRecord(localPath string) *ImageRecord {
	filename := filepath.Base(localPath)
	return &ImageRecord{
		ID:           uuid.NewString(),
		LocalPath:    localPath,
		Filename:     filename,
		ProposedName: filename,
	}
}

// AppendExpandedIssue accumulates a reconciliation finding. Findings are
// additive within a pass; callers clear them before each full pass.
func (r *ImageRecord) AppendExpandedIssue(issue string) {
	if issue == "" {
		return
	}
	if r.ExpandedCheckIssue == "" {
		r.ExpandedCheckIssue = issue
		return
	}
	r.ExpandedCheckIssue += IssueSeparator + issue
}

// ClearReconcileIssues resets both reconciliation findings. Must run at the
// start of every reconciliation pass so repeated passes stay idempotent.
func (r *ImageRecord) ClearReconcileIssues() {
	r.SwatchValidationIssue = ""
	r.ExpandedCheckIssue = ""
}

// Extension returns the proposed name's extension, lowercased, without the dot.
func (r *ImageRecord) Extension() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(r.ProposedName)), ".")
}
