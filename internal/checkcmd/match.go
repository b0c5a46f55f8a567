package checkcmd

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/retailops/imagecheck/internal/manifest"
	"github.com/retailops/imagecheck/internal/remote"
	"github.com/retailops/imagecheck/internal/scheduler"
	"github.com/retailops/imagecheck/internal/utils"
	"github.com/retailops/imagecheck/internal/visual"
)

// NewMatchCmd creates the match command: download every URL in a manifest
// and score it against a reference image by thumbnail similarity.
func NewMatchCmd() *cobra.Command {
	var manifestPath string
	var referencePath string
	var threshold float64
	var thumbSize int
	var outDir string
	var concurrency int
	var timeout time.Duration
	var verbose bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Find which manifest URLs serve a known reference image",
		Long: `Match downloads each image URL listed in a CSV or Parquet manifest and
compares it to a local reference image. Both images are reduced to a small
grayscale thumbnail; the score is the fraction of exactly-equal pixels.

This is the fallback signal for verifying a remote asset when no content
hash for the reference exists.`,
		Example: `  # Find the reference among manifest URLs
  imagecheck match --manifest urls.csv --reference swatch.jpg

  # Save matching downloads, stricter threshold
  imagecheck match --manifest urls.parquet --reference swatch.jpg --threshold 0.95 --out ./matched`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)
			return executeMatch(cmd.Context(), matchOptions{
				ManifestPath:  manifestPath,
				ReferencePath: referencePath,
				Threshold:     threshold,
				ThumbSize:     thumbSize,
				OutDir:        outDir,
				Concurrency:   resolveConcurrency(concurrency),
				Timeout:       resolveTimeout(timeout),
			})
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "CSV or Parquet manifest with image URLs")
	cmd.Flags().StringVar(&referencePath, "reference", "", "Reference image to match against")
	cmd.Flags().Float64Var(&threshold, "threshold", visual.DefaultMatchThreshold, "Similarity score required to count as a match")
	cmd.Flags().IntVar(&thumbSize, "thumb-size", visual.DefaultThumbSize, "Thumbnail edge length used for comparison")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to save matched downloads into")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Max downloads in flight (default 4, or IMAGECHECK_CONCURRENCY)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-fetch timeout (default 15s, or IMAGECHECK_TIMEOUT)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("manifest")
	_ = cmd.MarkFlagRequired("reference")

	return cmd
}

type matchOptions struct {
	ManifestPath  string
	ReferencePath string
	Threshold     float64
	ThumbSize     int
	OutDir        string
	Concurrency   int
	Timeout       time.Duration
}

// matchOutcome is the immutable result of downloading and scoring one entry.
type matchOutcome struct {
	entry   manifest.Entry
	score   float64
	matched bool
	hash    string
	data    []byte
	err     error
}

func executeMatch(ctx context.Context, opts matchOptions) error {
	slog.Info("Starting match", "manifest", opts.ManifestPath, "reference", opts.ReferencePath)

	entries, err := manifest.NewLoader(opts.ManifestPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("manifest %s contains no URLs", opts.ManifestPath)
	}
	slog.Info("Manifest loaded", "entries", len(entries))

	refData, err := os.ReadFile(opts.ReferencePath)
	if err != nil {
		return fmt.Errorf("failed to read reference image: %w", err)
	}
	reference, err := visual.DecodeBytes(refData)
	if err != nil {
		return fmt.Errorf("failed to decode reference image: %w", err)
	}
	refHash := utils.CalculateDataMD5(refData)

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	prober := newProber(opts.Timeout)
	tracker := scheduler.NewTracker(len(entries))

	outcomes, err := scheduler.FanOut(ctx, opts.Concurrency, len(entries), func(ctx context.Context, i int) matchOutcome {
		out := matchEntry(ctx, prober, reference, refHash, entries[i], opts)
		done, total := tracker.Increment()
		slog.Info("Scored entry",
			"url", entries[i].URL,
			"score", fmt.Sprintf("%.2f", out.score),
			"progress", fmt.Sprintf("%d/%d", done, total))
		return out
	})
	if err != nil {
		slog.Warn("Match cancelled, partial results discarded")
		return fmt.Errorf("match cancelled: %w", err)
	}

	done, total := tracker.Snapshot()
	slog.Info("Scoring pass complete", "scored", done, "total", total)

	matched := 0
	failed := 0
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Identifier", "URL", "Score", "Match"})

	for _, out := range outcomes {
		if out.err != nil {
			failed++
			tw.AppendRow(table.Row{out.entry.Identifier, out.entry.URL, "-", "error"})
			continue
		}
		if out.matched {
			matched++
			if opts.OutDir != "" {
				name := out.hash + filepath.Ext(opts.ReferencePath)
				path := filepath.Join(opts.OutDir, name)
				if err := os.WriteFile(path, out.data, 0644); err != nil {
					slog.Warn("Failed to save matched download", "path", path, "error", err)
				}
			}
		}
		tw.AppendRow(table.Row{out.entry.Identifier, out.entry.URL, fmt.Sprintf("%.2f", out.score), yesNo(out.matched)})
	}
	tw.Render()

	fmt.Printf("\nEntries: %d  Matched: %d  Failed: %d  Threshold: %.2f\n",
		len(entries), matched, failed, opts.Threshold)
	return nil
}

// matchEntry downloads one manifest entry and scores it against the
// reference. Decode and transport failures fold into the outcome.
func matchEntry(ctx context.Context, prober *remote.Prober, reference image.Image, refHash string, entry manifest.Entry, opts matchOptions) matchOutcome {
	out := matchOutcome{entry: entry}

	data, hash, err := prober.Fetch(ctx, entry.URL)
	if err != nil {
		out.err = err
		return out
	}
	out.hash = hash

	// Byte-identical content needs no thumbnail comparison.
	if hash == refHash {
		out.score = 1.0
		out.matched = true
		out.data = data
		return out
	}

	img, err := visual.DecodeBytes(data)
	if err != nil {
		out.err = err
		return out
	}

	out.score = visual.Similarity(reference, img, opts.ThumbSize)
	out.matched = out.score >= opts.Threshold
	if out.matched {
		out.data = data
	}
	return out
}
