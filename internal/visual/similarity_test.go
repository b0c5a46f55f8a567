package visual

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSimilarityIdenticalImages(t *testing.T) {
	gray := color.RGBA{128, 128, 128, 255}
	a := solidImage(64, 64, gray)
	b := solidImage(64, 64, gray)

	score := Similarity(a, b, 8)
	if score != 1.0 {
		t.Errorf("Expected exactly 1.0 for identical solid images, got %f", score)
	}
}

func TestSimilarityIgnoresScale(t *testing.T) {
	gray := color.RGBA{90, 90, 90, 255}
	a := solidImage(64, 64, gray)
	b := solidImage(256, 256, gray)

	score := Similarity(a, b, 8)
	if score != 1.0 {
		t.Errorf("Expected 1.0 across sizes for solid images, got %f", score)
	}
}

func TestSimilarityDifferentImages(t *testing.T) {
	a := solidImage(64, 64, color.RGBA{0, 0, 0, 255})
	b := solidImage(64, 64, color.RGBA{255, 255, 255, 255})

	score := Similarity(a, b, 8)
	if score != 0.0 {
		t.Errorf("Expected 0.0 for black vs white, got %f", score)
	}
}

func TestSimilarityPartialMatch(t *testing.T) {
	// Left half black on both, right half differs: half the thumbnail
	// positions agree.
	a := image.NewRGBA(image.Rect(0, 0, 64, 64))
	b := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			a.Set(x, y, color.RGBA{0, 0, 0, 255})
			if x < 32 {
				b.Set(x, y, color.RGBA{0, 0, 0, 255})
			} else {
				b.Set(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}

	score := Similarity(a, b, 8)
	if score <= 0.0 || score >= 1.0 {
		t.Errorf("Expected a partial score strictly between 0 and 1, got %f", score)
	}
}

func TestSimilarityDeterministic(t *testing.T) {
	a := solidImage(100, 50, color.RGBA{10, 200, 30, 255})
	b := solidImage(33, 77, color.RGBA{10, 200, 31, 255})

	first := Similarity(a, b, 8)
	for i := 0; i < 5; i++ {
		if got := Similarity(a, b, 8); got != first {
			t.Fatalf("Similarity not deterministic: %f then %f", first, got)
		}
	}
}

func TestSimilarityDefaultThumbSize(t *testing.T) {
	gray := color.RGBA{128, 128, 128, 255}
	a := solidImage(16, 16, gray)
	if got := Similarity(a, a, 0); got != 1.0 {
		t.Errorf("Expected 1.0 with default thumb size, got %f", got)
	}
}

func TestDecodeBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(10, 10, color.RGBA{50, 60, 70, 255})); err != nil {
		t.Fatal(err)
	}

	img, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 10 {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}
}

func TestDecodeBytesGarbage(t *testing.T) {
	if _, err := DecodeBytes([]byte("not an image")); err == nil {
		t.Fatal("Expected decode error")
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(4, 4, color.RGBA{0, 0, 0, 255})); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := DecodeFile(path); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := DecodeFile(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}
