package compress

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels caps the decoded size of an input image. Headers can
// declare dimensions far beyond what the encoded bytes suggest.
const DefaultMaxPixels = 50_000_000

// Raster resizes and re-encodes images in process. MaxPixels bounds the
// width x height accepted for decoding; zero means DefaultMaxPixels.
type Raster struct {
	MaxPixels int
}

// CompressImage decodes data, scales it down to fit inside the box while
// keeping its aspect ratio, and encodes the result as JPEG. Images already
// inside the box are re-encoded at their original size. A non-positive bound
// leaves that axis unconstrained. Output is deterministic for identical input.
func (r Raster) CompressImage(ctx context.Context, data []byte, maxWidth, maxHeight, quality int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageDecodeError{Err: err}
	}
	if limit := r.maxPixels(); int64(cfg.Width)*int64(cfg.Height) > int64(limit) {
		return nil, &ImageDecodeError{Err: fmt.Errorf("image is %dx%d, over the %d pixel limit", cfg.Width, cfg.Height, limit)}
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageDecodeError{Err: err}
	}

	bounds := src.Bounds()
	w, h := FitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	var out image.Image = src
	if w != bounds.Dx() || h != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
		out = dst
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: clampQuality(quality)}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// FitWithin returns the largest size with the same aspect ratio as w x h that
// fits inside maxW x maxH, never larger than the original.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = math.Min(scale, float64(maxW)/float64(w))
	}
	if maxH > 0 && h > maxH {
		scale = math.Min(scale, float64(maxH)/float64(h))
	}
	if scale == 1.0 {
		return w, h
	}
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if maxW > 0 && nw > maxW {
		nw = maxW
	}
	if maxH > 0 && nh > maxH {
		nh = maxH
	}
	return max(nw, 1), max(nh, 1)
}

func (r Raster) maxPixels() int {
	if r.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return r.MaxPixels
}

func clampQuality(q int) int {
	switch {
	case q < 1:
		return 1
	case q > 100:
		return 100
	default:
		return q
	}
}

var _ ImageCompressor = Raster{}
