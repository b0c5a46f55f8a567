package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/retailops/imagecheck/internal/utils"
)

var (
	placeholderBody = []byte("generic placeholder image bytes")
	genuineBody     = []byte("a real product image")
)

func placeholderHash() string {
	return utils.CalculateDataMD5(placeholderBody)
}

// storeServer fakes the content store: paths listed in genuine get real
// content, everything else gets the placeholder.
func storeServer(t *testing.T, genuine map[string]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if genuine[r.URL.Path] {
			if _, err := w.Write(genuineBody); err != nil {
				t.Errorf("write failed: %v", err)
			}
			return
		}
		if _, err := w.Write(placeholderBody); err != nil {
			t.Errorf("write failed: %v", err)
		}
	}))
}

func TestProbeGenuine(t *testing.T) {
	server := storeServer(t, map[string]bool{"/a/56/a123456.101": true})
	defer server.Close()

	prober := NewProber(server.URL, placeholderHash(), 0)
	result := prober.ProbeName(context.Background(), "A123456_101.jpg")

	if result.Err != nil {
		t.Fatalf("Unexpected error: %v", result.Err)
	}
	if !result.Genuine {
		t.Error("Expected genuine content")
	}
	if result.Hash != utils.CalculateDataMD5(genuineBody) {
		t.Errorf("Expected genuine body hash, got %s", result.Hash)
	}
}

func TestProbePlaceholder(t *testing.T) {
	server := storeServer(t, nil)
	defer server.Close()

	prober := NewProber(server.URL, placeholderHash(), 0)
	result := prober.ProbeName(context.Background(), "A123456_101.jpg")

	if result.Err != nil {
		t.Fatalf("Unexpected error: %v", result.Err)
	}
	if result.Genuine {
		t.Error("Placeholder content must not be genuine")
	}
	// The hash is recorded even on the placeholder path.
	if result.Hash != placeholderHash() {
		t.Errorf("Expected placeholder hash recorded, got %q", result.Hash)
	}
	if !result.Placeholder(placeholderHash()) {
		t.Error("Expected Placeholder() to report true")
	}
}

func TestProbeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	prober := NewProber(server.URL, placeholderHash(), 0)
	result := prober.ProbeName(context.Background(), "A123456_101.jpg")

	if result.Err == nil {
		t.Fatal("Expected error for 404 response")
	}
	if result.Genuine {
		t.Error("Failed probe must not be genuine")
	}
}

func TestProbeTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	prober := NewProber(server.URL, placeholderHash(), time.Second)
	result := prober.ProbeName(context.Background(), "A123456_101.jpg")

	if result.Err == nil {
		t.Fatal("Expected transport error")
	}
	if result.Hash != "" {
		t.Errorf("Expected no hash without a body, got %q", result.Hash)
	}
}

func TestProbeUnmappableName(t *testing.T) {
	prober := NewProber("http://unused.invalid", placeholderHash(), time.Second)
	result := prober.ProbeName(context.Background(), "_101.jpg")
	if result.Err == nil {
		t.Fatal("Expected error for unmappable name")
	}
}

func TestScanDetailSlots(t *testing.T) {
	// Slots 001 and 003 are occupied; the rest serve the placeholder.
	server := storeServer(t, map[string]bool{
		"/a/56/a123456.001": true,
		"/a/56/a123456.003": true,
	})
	defer server.Close()

	prober := NewProber(server.URL, placeholderHash(), 0)
	scan, err := prober.ScanDetailSlots(context.Background(), "a123456", "jpg")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := strings.Join(scan.Used, ","); got != "001,003" {
		t.Errorf("Expected used slots 001,003, got %s", got)
	}
	if got := strings.Join(scan.Available, ","); got != "002,004,005,006,007,008" {
		t.Errorf("Expected six available slots, got %s", got)
	}
}

func TestScanDetailSlotsFetchFailureCountsAsUsed(t *testing.T) {
	// Slot 005 errors out; the failure is classified as occupied, not open.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".005") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if _, err := w.Write(placeholderBody); err != nil {
			t.Errorf("write failed: %v", err)
		}
	}))
	defer server.Close()

	prober := NewProber(server.URL, placeholderHash(), 0)
	scan, err := prober.ScanDetailSlots(context.Background(), "a123456", "jpg")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := strings.Join(scan.Used, ","); got != "005" {
		t.Errorf("Expected only slot 005 used, got %s", got)
	}
	if len(scan.Available) != 7 {
		t.Errorf("Expected 7 available slots, got %d", len(scan.Available))
	}
}

func TestScanDetailSlotsCancelled(t *testing.T) {
	server := storeServer(t, nil)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prober := NewProber(server.URL, placeholderHash(), 0)
	_, err := prober.ScanDetailSlots(ctx, "a123456", "jpg")
	if err == nil {
		t.Fatal("Expected cancellation error")
	}
}
