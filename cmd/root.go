package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/retailops/imagecheck/internal/checkcmd"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imagecheck",
		Short: "Verify and reconcile product images against the remote content store",
		Long: `Imagecheck reconciles a local inventory of product image files against the
remote content-delivery store: it derives each file's remote URL, probes it
for genuine (non-placeholder) content, scans the detail slots, and
cross-checks swatch families for missing companion images.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(checkcmd.NewCheckCmd())
	cmd.AddCommand(checkcmd.NewMatchCmd())
	cmd.AddCommand(checkcmd.NewInspectCmd())

	return cmd
}
