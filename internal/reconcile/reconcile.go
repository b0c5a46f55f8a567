// Package reconcile cross-validates swatch families against the remote store:
// a 101/102 pair must both exist for each item+color, and every item with
// swatches must have its 001 main image uploaded.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/retailops/imagecheck/internal/models"
	"github.com/retailops/imagecheck/internal/naming"
	"github.com/retailops/imagecheck/internal/remote"
	"github.com/retailops/imagecheck/internal/scheduler"
)

// Engine runs the reconciliation pass. Both checks are re-derived from
// scratch each invocation; there is no incremental update.
type Engine struct {
	prober      *remote.Prober
	concurrency int
}

// New creates an engine probing through the given prober with at most
// concurrency remote calls in flight.
func New(prober *remote.Prober, concurrency int) *Engine {
	if concurrency <= 0 {
		concurrency = scheduler.DefaultConcurrency
	}
	return &Engine{prober: prober, concurrency: concurrency}
}

// swatchGroup is one (item, color) family of locally present swatch records.
// slots maps each locally present swatch slot to one of its classifications.
type swatchGroup struct {
	item    string
	color   string
	records []*models.ImageRecord
	slots   map[string]*naming.Classification
	ext     string
}

// missingProbe is one remote existence question raised by the grouping pass.
type missingProbe struct {
	name  string // normalized filename to derive and probe
	issue string // finding to append when the asset is absent
	apply []*models.ImageRecord
	// swatch findings also populate the legacy per-record field
	swatch bool
}

// Run clears prior findings and rebuilds them. Group iteration order is
// irrelevant: every check is per-group independent, so the pass is
// order-independent and idempotent given the clear step.
func (e *Engine) Run(ctx context.Context, records []*models.ImageRecord) error {
	for _, r := range records {
		r.ClearReconcileIssues()
	}

	groups := groupSwatches(records)
	probes := e.swatchPairProbes(groups)
	probes = append(probes, e.mainImageProbes(records, groups)...)

	if len(probes) == 0 {
		slog.Debug("Reconciliation found nothing to probe", "records", len(records))
		return nil
	}

	slog.Info("Reconciling swatch families", "groups", len(groups), "probes", len(probes))

	type outcome struct {
		idx    int
		exists bool
	}
	results, err := scheduler.FanOut(ctx, e.concurrency, len(probes), func(ctx context.Context, i int) outcome {
		result := e.prober.ProbeName(ctx, probes[i].name)
		if result.Err != nil {
			slog.Debug("Reconciliation probe failed", "name", probes[i].name, "error", result.Err)
		}
		return outcome{idx: i, exists: result.Err == nil && result.Genuine}
	})
	if err != nil {
		return err
	}

	// Apply findings sequentially; probes themselves never touch records.
	for _, out := range results {
		if out.exists {
			continue
		}
		probe := probes[out.idx]
		for _, r := range probe.apply {
			r.AppendExpandedIssue(probe.issue)
			if probe.swatch {
				r.SwatchValidationIssue = probe.issue
			}
		}
	}
	return nil
}

// groupSwatches buckets swatch-classified records by (item, color).
func groupSwatches(records []*models.ImageRecord) map[string]*swatchGroup {
	groups := make(map[string]*swatchGroup)
	for _, r := range records {
		c, _ := naming.Classify(r.ProposedName)
		if c == nil || !c.IsSwatch() {
			continue
		}
		key := strings.ToLower(c.ItemNumber + "\x00" + c.ColorCode)
		g := groups[key]
		if g == nil {
			g = &swatchGroup{
				item:  strings.ToLower(c.ItemNumber),
				color: strings.ToLower(c.ColorCode),
				slots: make(map[string]*naming.Classification),
				ext:   "jpg",
			}
			groups[key] = g
		}
		g.records = append(g.records, r)
		g.slots[c.Slot] = c
		if ext := r.Extension(); ext != "" {
			g.ext = ext
		}
	}
	return groups
}

// swatchPairProbes raises one probe per group that has exactly one half of
// the 101/102 pair locally. Groups with both halves need nothing; groups
// with neither cannot occur by construction.
func (e *Engine) swatchPairProbes(groups map[string]*swatchGroup) []missingProbe {
	var probes []missingProbe
	for _, g := range groups {
		present := g.slots[naming.SlotSwatchColor]
		other := g.slots[naming.SlotSwatchProduct]
		if (present == nil) == (other == nil) {
			continue
		}
		if present == nil {
			present = other
		}

		missing := present.CompanionSwatchSlot()
		kind := "color block"
		if missing == naming.SlotSwatchProduct {
			kind = "product image"
		}

		probes = append(probes, missingProbe{
			name: fmt.Sprintf("%s_%s_%s.%s", g.item, g.color, missing, g.ext),
			issue: fmt.Sprintf("Swatch image missing: companion %s (%s) not found for %s/%s",
				missing, kind, g.item, g.color),
			apply:  g.records,
			swatch: true,
		})
	}
	return probes
}

// mainImageProbes raises one probe per distinct swatch item whose 001 main
// image is absent from the local inventory, applying the finding to every
// record of that item regardless of color.
func (e *Engine) mainImageProbes(records []*models.ImageRecord, groups map[string]*swatchGroup) []missingProbe {
	items := make(map[string]bool)
	for _, g := range groups {
		items[g.item] = true
	}
	if len(items) == 0 {
		return nil
	}

	hasMain := make(map[string]bool)
	byItem := make(map[string][]*models.ImageRecord)
	ext := make(map[string]string)
	for _, r := range records {
		item := recordItem(r)
		if item == "" {
			continue
		}
		byItem[item] = append(byItem[item], r)
		if c, _ := naming.Classify(r.ProposedName); c != nil {
			if c.Slot == naming.SlotMainImage {
				hasMain[item] = true
			}
			if x := r.Extension(); x != "" {
				ext[item] = x
			}
		}
	}

	// Deterministic probe list; the pass itself is order-independent.
	sorted := make([]string, 0, len(items))
	for item := range items {
		sorted = append(sorted, item)
	}
	sort.Strings(sorted)

	var probes []missingProbe
	for _, item := range sorted {
		if hasMain[item] {
			continue
		}
		ex := ext[item]
		if ex == "" {
			ex = "jpg"
		}
		probes = append(probes, missingProbe{
			name:  fmt.Sprintf("%s_%s.%s", item, naming.SlotMainImage, ex),
			issue: fmt.Sprintf("Main image (%s) missing for item %s", naming.SlotMainImage, item),
			apply: byItem[item],
		})
	}
	return probes
}

// recordItem parses the item number a record belongs to, preferring the
// structured classification and falling back to the leading token.
func recordItem(r *models.ImageRecord) string {
	if c, _ := naming.Classify(r.ProposedName); c != nil {
		return strings.ToLower(c.ItemNumber)
	}
	item := naming.ItemNumber(strings.ToLower(r.ProposedName))
	if item == strings.ToLower(r.ProposedName) {
		// No separator at all; strip any extension remnant.
		return ""
	}
	return item
}
