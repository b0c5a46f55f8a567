package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/retailops/imagecheck/internal/utils"
)

// DefaultPlaceholderHash is the MD5 of the generic stand-in image the store
// serves at any address with no real upload. Override with the
// IMAGECHECK_PLACEHOLDER_MD5 environment variable.
const DefaultPlaceholderHash = "ab5b135cbe8f44c1a4bbc1e62dc8ff6a"

// DefaultTimeout bounds each fetch. The store has no SLA; a hung connection
// should surface as a probe error, not stall the batch.
const DefaultTimeout = 15 * time.Second

// DetailSlots are the eight companion slots scanned per item.
var DetailSlots = []string{"001", "002", "003", "004", "005", "006", "007", "008"}

// ProbeResult is the immutable outcome of one remote fetch. A single
// aggregator applies results to records sequentially; probes never mutate
// shared state themselves.
type ProbeResult struct {
	URL     string
	Hash    string
	Genuine bool
	Err     error
}

// Placeholder reports whether the fetch succeeded but returned the store's
// stand-in content.
func (r ProbeResult) Placeholder(placeholderHash string) bool {
	return r.Err == nil && r.Hash == placeholderHash
}

// Prober fetches derived URLs and classifies the content against the known
// placeholder hash. Each fetch is a single attempt; retry policy, if any,
// belongs to the caller.
type Prober struct {
	client          *http.Client
	baseURL         string
	placeholderHash string
}

// NewProber creates a prober against baseURL. Zero timeout falls back to
// DefaultTimeout.
func NewProber(baseURL, placeholderHash string, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		client:          &http.Client{Timeout: timeout},
		baseURL:         baseURL,
		placeholderHash: placeholderHash,
	}
}

// BaseURL returns the store endpoint this prober fetches from.
func (p *Prober) BaseURL() string {
	return p.baseURL
}

// ProbeName derives the remote URL for a normalized filename and probes it.
func (p *Prober) ProbeName(ctx context.Context, name string) ProbeResult {
	url, err := Derive(p.baseURL, name)
	if err != nil {
		return ProbeResult{Err: err}
	}
	return p.Probe(ctx, url)
}

// Probe fetches one URL, hashes the body, and reports whether the content is
// genuine. The hash is recorded even when the content is the placeholder so
// callers can reuse exact hash equality downstream.
func (p *Prober) Probe(ctx context.Context, url string) ProbeResult {
	result := ProbeResult{URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Err = fmt.Errorf("failed to build request: %w", err)
		return result
	}

	resp, err := p.client.Do(req)
	if err != nil {
		result.Err = fmt.Errorf("failed to fetch %s: %w", url, err)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Err = fmt.Errorf("fetch %s returned status %d", url, resp.StatusCode)
		return result
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Err = fmt.Errorf("failed to read body from %s: %w", url, err)
		return result
	}

	result.Hash = utils.CalculateDataMD5(body)
	result.Genuine = result.Hash != p.placeholderHash
	return result
}

// Fetch downloads one URL and returns the body bytes with their hash. Used by
// the download-and-match flow, which needs the content rather than just a
// classification.
func (p *Prober) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetch %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body from %s: %w", url, err)
	}
	return body, utils.CalculateDataMD5(body), nil
}

// SlotScan classifies the eight detail slots of an item as available (the
// store serves placeholder content there) or used (anything else). A fetch
// failure counts as used: an unreachable slot is treated as occupied rather
// than open, a deliberate conservative bias carried over from the original
// behavior.
type SlotScan struct {
	Used      []string
	Available []string
}

// ScanDetailSlots probes {item}_{slot}.{ext} for each detail slot. Returns
// ctx.Err() if the context is cancelled between probes; the partial scan is
// discarded by the caller in that case.
func (p *Prober) ScanDetailSlots(ctx context.Context, itemNumber, ext string) (SlotScan, error) {
	var scan SlotScan
	for _, slot := range DetailSlots {
		if err := ctx.Err(); err != nil {
			return scan, err
		}

		name := fmt.Sprintf("%s_%s.%s", itemNumber, slot, ext)
		result := p.ProbeName(ctx, name)
		if result.Placeholder(p.placeholderHash) {
			scan.Available = append(scan.Available, slot)
		} else {
			scan.Used = append(scan.Used, slot)
		}

		if result.Err != nil {
			slog.Debug("Slot probe failed, counting slot as used",
				"item", itemNumber, "slot", slot, "error", result.Err)
		}
	}
	return scan, nil
}
