package checkcmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/retailops/imagecheck/internal/inventory"
	"github.com/retailops/imagecheck/internal/models"
	"github.com/retailops/imagecheck/internal/naming"
	"github.com/retailops/imagecheck/internal/reconcile"
	"github.com/retailops/imagecheck/internal/remote"
	"github.com/retailops/imagecheck/internal/scheduler"
)

type checkOptions struct {
	Concurrency   int
	Timeout       time.Duration
	SkipSlots     bool
	SkipReconcile bool
	ReportPath    string
}

// probeOutcome is the immutable result of probing one record. Outcomes are
// applied to records by a single aggregator after the concurrent pass; the
// probes themselves never write to shared state.
type probeOutcome struct {
	url     string
	hash    string
	genuine bool
	err     error
	scanRan bool
	scan    remote.SlotScan
}

func executeCheck(ctx context.Context, paths []string, opts checkOptions) error {
	slog.Info("Starting check", "paths", paths, "concurrency", opts.Concurrency)

	batch := inventory.NewBatch()
	added, err := inventory.Import(batch, paths)
	if err != nil {
		return fmt.Errorf("failed to import inventory: %w", err)
	}
	if added == 0 {
		return fmt.Errorf("no image files found under %v", paths)
	}
	slog.Info("Inventory imported", "records", added)

	batch.ValidateNames(func(name string) string {
		_, warning := naming.Classify(name)
		return warning
	})

	prober := newProber(opts.Timeout)
	records := batch.Records()
	tracker := scheduler.NewTracker(len(records))

	outcomes, err := scheduler.MapBatched(ctx, opts.Concurrency, len(records), func(ctx context.Context, i int) probeOutcome {
		out := probeRecord(ctx, prober, records[i], !opts.SkipSlots)
		done, total := tracker.Increment()
		slog.Info("Probed record",
			"name", records[i].ProposedName,
			"progress", fmt.Sprintf("%d/%d", done, total))
		return out
	})
	if err != nil {
		slog.Warn("Check cancelled, partial results discarded")
		return fmt.Errorf("check cancelled: %w", err)
	}

	done, total := tracker.Snapshot()
	slog.Info("Probe pass complete", "checked", done, "total", total)

	for i, out := range outcomes {
		applyOutcome(records[i], out)
	}

	if !opts.SkipReconcile {
		engine := reconcile.New(prober, opts.Concurrency)
		if err := engine.Run(ctx, records); err != nil {
			slog.Warn("Reconciliation cancelled, partial results discarded")
			return fmt.Errorf("check cancelled: %w", err)
		}
	}

	printCheckSummary(records)

	if opts.ReportPath != "" {
		if err := saveReport(opts.ReportPath, prober.BaseURL(), records); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("\nReport written to: %s\n", opts.ReportPath)
	}
	return nil
}

// probeRecord derives and probes one record's remote URL, then scans the
// item's detail slots when the name classified to an item number.
func probeRecord(ctx context.Context, prober *remote.Prober, r *models.ImageRecord, scanSlots bool) probeOutcome {
	normalized := naming.Normalize(r.ProposedName)
	url, err := remote.Derive(prober.BaseURL(), normalized)
	if err != nil {
		return probeOutcome{err: err}
	}

	out := probeOutcome{url: url}
	result := prober.Probe(ctx, url)
	out.hash = result.Hash
	out.genuine = result.Genuine
	out.err = result.Err

	if !scanSlots {
		return out
	}
	c, _ := naming.Classify(r.ProposedName)
	if c == nil {
		return out
	}

	ext := r.Extension()
	if ext == "" {
		ext = "jpg"
	}
	scan, scanErr := prober.ScanDetailSlots(ctx, strings.ToLower(c.ItemNumber), ext)
	if scanErr != nil {
		// Cancelled mid-scan; the partial scan is not recorded.
		return out
	}
	out.scan = scan
	out.scanRan = true
	return out
}

// applyOutcome folds a probe outcome into the record's state. Transport
// failures, unmappable names, and placeholder content all land on
// StatusError: none of them mean a trustworthy remote asset.
func applyOutcome(r *models.ImageRecord, out probeOutcome) {
	r.RemoteURL = out.url
	r.ContentHash = out.hash

	if out.err == nil && out.genuine {
		r.Status = models.StatusExists
		r.RemoteVerified = true
	} else {
		r.Status = models.StatusError
		r.RemoteVerified = false
	}

	if out.scanRan {
		r.UsedDetailSlots = out.scan.Used
		r.AvailableDetailSlots = out.scan.Available
		r.DetailSlotChecked = true
	}
}
