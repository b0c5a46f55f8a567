package checkcmd

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func encodePNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExecuteMatch(t *testing.T) {
	grayPNG := encodePNG(t, color.RGBA{120, 120, 120, 255})
	whitePNG := encodePNG(t, color.RGBA{255, 255, 255, 255})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := whitePNG
		if r.URL.Path == "/match.png" {
			body = grayPNG
		}
		if _, err := w.Write(body); err != nil {
			t.Errorf("write failed: %v", err)
		}
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	referencePath := filepath.Join(dir, "reference.png")
	if err := os.WriteFile(referencePath, grayPNG, 0644); err != nil {
		t.Fatal(err)
	}

	manifestPath := filepath.Join(dir, "urls.csv")
	csv := fmt.Sprintf("id,url\nm1,%s/match.png\nm2,%s/other.png\n", server.URL, server.URL)
	if err := os.WriteFile(manifestPath, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "matched")
	err := executeMatch(context.Background(), matchOptions{
		ManifestPath:  manifestPath,
		ReferencePath: referencePath,
		Threshold:     0.90,
		ThumbSize:     8,
		OutDir:        outDir,
		Concurrency:   2,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Exactly the matching download is saved, named by its content hash.
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 saved match, got %d", len(entries))
	}
}

func TestExecuteMatchMissingReference(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "urls.csv")
	if err := os.WriteFile(manifestPath, []byte("id,url\na,https://x.invalid/a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := executeMatch(context.Background(), matchOptions{
		ManifestPath:  manifestPath,
		ReferencePath: filepath.Join(dir, "missing.png"),
		Threshold:     0.90,
	})
	if err == nil {
		t.Fatal("Expected error for missing reference image")
	}
}

func TestExecuteMatchEmptyManifest(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "urls.csv")
	if err := os.WriteFile(manifestPath, []byte("id,url\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := executeMatch(context.Background(), matchOptions{
		ManifestPath:  manifestPath,
		ReferencePath: "unused.png",
	})
	if err == nil {
		t.Fatal("Expected error for empty manifest")
	}
}
