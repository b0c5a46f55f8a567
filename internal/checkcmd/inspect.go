package checkcmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/retailops/imagecheck/internal/naming"
	"github.com/retailops/imagecheck/internal/remote"
)

// NewInspectCmd creates the inspect command: show how each filename
// normalizes, classifies, and derives, without touching the network.
func NewInspectCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:     "inspect [names...]",
		Short:   "Show normalization, classification, and derived URL for filenames",
		Example: `  imagecheck inspect A123456_RED.101.jpg B654321_003.png photo.txt`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)
			return executeInspect(args)
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")
	return cmd
}

func executeInspect(names []string) error {
	baseURL := envOr("IMAGECHECK_BASE_URL", remote.DefaultBaseURL)

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Name", "Normalized", "Item", "Color", "Slot", "Remote URL", "Warning"})

	for _, name := range names {
		normalized := naming.Normalize(name)
		classification, warning := naming.Classify(name)

		item, color, slot := "", "", ""
		if classification != nil {
			item = classification.ItemNumber
			color = classification.ColorCode
			slot = classification.Slot
			if classification.Hero {
				slot += "!"
			}
		}

		url, err := remote.Derive(baseURL, normalized)
		if err != nil {
			url = fmt.Sprintf("(%v)", err)
		}

		tw.AppendRow(table.Row{name, normalized, item, color, slot, url, warning})
	}
	tw.Render()
	return nil
}
