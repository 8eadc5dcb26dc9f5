// Package imaging prepares rasters for snapshot comparison: decoding,
// letterboxing to a shared viewport, ignore-region masking, and diff
// heatmap rendering.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // register JPEG decoding
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/parityci/dpc/schema"
)

// Load reads and decodes a raster file (PNG or JPEG).
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read image %s: %v", schema.ErrInput, path, err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}
	return img, nil
}

// Decode decodes PNG or JPEG bytes into an image.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode image: %v", schema.ErrInput, err)
	}
	return img, nil
}

// SavePNG writes img to path in PNG format.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Letterbox scales img to fit within width x height preserving aspect
// ratio, centered on a transparent canvas of exactly that size. Scaling
// uses Catmull-Rom interpolation so repeated runs produce identical bytes.
func Letterbox(img image.Image, width, height int) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || width <= 0 || height <= 0 {
		return canvas
	}

	scale := min(float64(width)/float64(w), float64(height)/float64(h))
	sw := max(1, int(float64(w)*scale+0.5))
	sh := max(1, int(float64(h)*scale+0.5))
	x0 := (width - sw) / 2
	y0 := (height - sh) / 2

	dst := image.Rect(x0, y0, x0+sw, y0+sh)
	xdraw.CatmullRom.Scale(canvas, dst, img, b, xdraw.Over, nil)
	return canvas
}

// ApplyIgnoreRegions returns a copy of img with the given pixel rectangles
// cleared to full transparency so downstream metrics skip them.
func ApplyIgnoreRegions(img image.Image, regions []schema.IgnoreRegion) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	for _, region := range regions {
		x0 := max(0, int(region.X))
		y0 := max(0, int(region.Y))
		x1 := min(b.Dx(), int(region.X+region.W+0.5))
		y1 := min(b.Dy(), int(region.Y+region.H+0.5))
		if x1 <= x0 || y1 <= y0 {
			continue
		}
		draw.Draw(out, image.Rect(x0, y0, x1, y1), image.Transparent, image.Point{}, draw.Src)
	}
	return out
}
