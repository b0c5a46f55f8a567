package checkcmd

import (
	"time"

	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command: import local images, probe the
// remote store for each, scan detail slots, and reconcile swatch families.
func NewCheckCmd() *cobra.Command {
	var concurrency int
	var timeout time.Duration
	var skipSlots bool
	var skipReconcile bool
	var reportPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Verify local images against the remote content store",
		Long: `Check derives the remote URL for every local image, probes it with bounded
concurrency, and classifies the content as genuine or placeholder by MD5
against the store's known placeholder hash.

For each item the eight detail slots (001-008) are scanned for free space,
and swatch families are reconciled: a lone 101 or 102 swatch triggers a probe
for its companion, and items with swatches but no local 001 are checked for a
main image upload.`,
		Example: `  # Check a directory of images
  imagecheck check ./images

  # Higher concurrency, skip the slot scan, write a YAML report
  imagecheck check ./images --concurrency 8 --skip-slots --report report.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)
			return executeCheck(cmd.Context(), args, checkOptions{
				Concurrency:   resolveConcurrency(concurrency),
				Timeout:       resolveTimeout(timeout),
				SkipSlots:     skipSlots,
				SkipReconcile: skipReconcile,
				ReportPath:    reportPath,
			})
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Max probes in flight (default 4, or IMAGECHECK_CONCURRENCY)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-fetch timeout (default 15s, or IMAGECHECK_TIMEOUT)")
	cmd.Flags().BoolVar(&skipSlots, "skip-slots", false, "Skip the detail-slot scan")
	cmd.Flags().BoolVar(&skipReconcile, "skip-reconcile", false, "Skip the swatch reconciliation pass")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write full record state to a YAML report file")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	return cmd
}
