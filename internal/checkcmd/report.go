package checkcmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/retailops/imagecheck/internal/models"
)

// printCheckSummary renders the per-record results and the batch counters.
func printCheckSummary(records []*models.ImageRecord) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Status", "Verified", "Open Slots", "Issues"})

	verified := 0
	errored := 0
	withIssues := 0
	for _, r := range records {
		if r.RemoteVerified {
			verified++
		}
		if r.Status == models.StatusError {
			errored++
		}

		issues := recordIssues(r)
		if issues != "" {
			withIssues++
		}

		openSlots := ""
		if r.DetailSlotChecked {
			openSlots = strings.Join(r.AvailableDetailSlots, ",")
			if openSlots == "" {
				openSlots = "none"
			}
		}

		tw.AppendRow(table.Row{
			r.ProposedName,
			r.Status.String(),
			yesNo(r.RemoteVerified),
			openSlots,
			issues,
		})
	}
	tw.Render()

	fmt.Printf("\nChecked: %d  Verified: %d  Errors: %d  With issues: %d\n",
		len(records), verified, errored, withIssues)
}

func recordIssues(r *models.ImageRecord) string {
	var parts []string
	if r.NamingWarning != "" {
		parts = append(parts, r.NamingWarning)
	}
	if r.RenameError != "" {
		parts = append(parts, r.RenameError)
	}
	if r.ExpandedCheckIssue != "" {
		parts = append(parts, r.ExpandedCheckIssue)
	}
	return strings.Join(parts, models.IssueSeparator)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ReportConfig is the configuration section of the YAML report.
type ReportConfig struct {
	BaseURL   string `yaml:"baseurl"`
	Timestamp string `yaml:"timestamp"`
	Records   int    `yaml:"records"`
}

// Report is the full record state written by --report.
type Report struct {
	Config  ReportConfig          `yaml:"config"`
	Records []*models.ImageRecord `yaml:"records"`
}

// saveReport writes the complete batch state to a YAML file.
func saveReport(path, baseURL string, records []*models.ImageRecord) error {
	report := Report{
		Config: ReportConfig{
			BaseURL:   baseURL,
			Timestamp: time.Now().Format("2006-01-02_15-04-05"),
			Records:   len(records),
		},
		Records: records,
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}
