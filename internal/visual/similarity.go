// Package visual scores coarse perceptual similarity between two images by
// comparing small grayscale thumbnails. It is the fallback signal for "is
// this the remote asset we are looking for" when no reference content hash
// exists.
package visual

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultThumbSize is the thumbnail edge length used for comparison.
const DefaultThumbSize = 8

// DefaultMatchThreshold is the similarity score at or above which a fetched
// image counts as a match for the reference.
const DefaultMatchThreshold = 0.90

// Similarity downscales both images to a thumbSize x thumbSize grayscale
// raster and returns the fraction of pixel positions whose quantized gray
// value is exactly equal, in [0, 1]. The downscale always uses bilinear
// interpolation so scores are reproducible across runs and platforms.
func Similarity(a, b image.Image, thumbSize int) float64 {
	if thumbSize <= 0 {
		thumbSize = DefaultThumbSize
	}

	ta := thumbprint(a, thumbSize)
	tb := thumbprint(b, thumbSize)

	equal := 0
	for i := range ta {
		if ta[i] == tb[i] {
			equal++
		}
	}
	return float64(equal) / float64(len(ta))
}

// thumbprint renders the image into a thumbSize x thumbSize grayscale raster.
func thumbprint(img image.Image, thumbSize int) []uint8 {
	scaled := image.NewRGBA(image.Rect(0, 0, thumbSize, thumbSize))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	out := make([]uint8, 0, thumbSize*thumbSize)
	for y := 0; y < thumbSize; y++ {
		for x := 0; x < thumbSize; x++ {
			g := color.GrayModel.Convert(scaled.At(x, y)).(color.Gray)
			out = append(out, g.Y)
		}
	}
	return out
}

// DecodeBytes decodes image data in any registered format (jpeg, png, gif,
// bmp, tiff, webp).
func DecodeBytes(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// DecodeFile decodes an image from disk.
func DecodeFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return DecodeBytes(data)
}
