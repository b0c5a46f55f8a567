package models

import "testing"

func TestNewImageRecord(t *testing.T) {
	r := NewImageRecord("/photos/A123456_101.jpg")

	if r.ID == "" {
		t.Error("Expected a non-empty ID")
	}
	if r.Filename != "A123456_101.jpg" {
		t.Errorf("Expected filename A123456_101.jpg, got %s", r.Filename)
	}
	if r.ProposedName != r.Filename {
		t.Errorf("Expected proposed name to start as the filename, got %s", r.ProposedName)
	}
	if r.Status != StatusNotChecked {
		t.Errorf("Expected initial status not_checked, got %s", r.Status)
	}
}

func TestAppendExpandedIssue(t *testing.T) {
	r := NewImageRecord("/photos/A123456_101.jpg")

	r.AppendExpandedIssue("")
	if r.ExpandedCheckIssue != "" {
		t.Errorf("Empty issue must not be recorded, got %q", r.ExpandedCheckIssue)
	}

	r.AppendExpandedIssue("first finding")
	r.AppendExpandedIssue("second finding")
	expected := "first finding" + IssueSeparator + "second finding"
	if r.ExpandedCheckIssue != expected {
		t.Errorf("Expected %q, got %q", expected, r.ExpandedCheckIssue)
	}
}

func TestClearReconcileIssues(t *testing.T) {
	r := NewImageRecord("/photos/A123456_101.jpg")
	r.SwatchValidationIssue = "legacy finding"
	r.AppendExpandedIssue("current finding")

	r.ClearReconcileIssues()
	if r.SwatchValidationIssue != "" || r.ExpandedCheckIssue != "" {
		t.Error("Expected both issue fields cleared")
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusNotChecked, "not_checked"},
		{StatusExists, "exists"},
		{StatusError, "error"},
		{StatusUnique, "unique"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		proposed string
		expected string
	}{
		{"A123456_101.JPG", "jpg"},
		{"A123456_101.webp", "webp"},
		{"A123456", ""},
	}
	for _, tt := range tests {
		r := NewImageRecord("/x/" + tt.proposed)
		if got := r.Extension(); got != tt.expected {
			t.Errorf("Extension(%q): expected %q, got %q", tt.proposed, tt.expected, got)
		}
	}
}
