package imaging

import (
	"image"
	"image/color"
)

// Heatmap color cuts over block dissimilarity, and blend factors for the
// dimmed backdrop.
const (
	heatGreenMax  = 0.33 // below this a block renders green
	heatYellowMax = 0.66 // ...yellow, above red

	backdropDim  = 0.35 // share of base luminance kept under the overlay
	overlayAlpha = 0.50 // tint opacity
)

// Heatmap renders a traffic-light overlay of per-block dissimilarity on a
// dimmed grayscale copy of base. values is a row-major gw x gh grid in
// [0,1]; block is the block edge in pixels. Pixels outside the grid keep
// the plain backdrop.
func Heatmap(base image.Image, values []float64, gw, gh, block int) *image.NRGBA {
	b := base.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if block <= 0 {
		block = 1
	}

	for y := range h {
		for x := range w {
			r16, g16, b16, _ := base.At(b.Min.X+x, b.Min.Y+y).RGBA()
			luma := 0.299*float64(r16/257) + 0.587*float64(g16/257) + 0.114*float64(b16/257)
			gray := uint8(luma * backdropDim)

			bx, by := x/block, y/block
			if bx >= gw || by >= gh {
				out.SetNRGBA(x, y, color.NRGBA{R: gray, G: gray, B: gray, A: 0xff})
				continue
			}

			tr, tg, tb := heatColor(values[by*gw+bx])
			out.SetNRGBA(x, y, color.NRGBA{
				R: blendChannel(gray, tr),
				G: blendChannel(gray, tg),
				B: blendChannel(gray, tb),
				A: 0xff,
			})
		}
	}
	return out
}

// heatColor maps a block dissimilarity to its overlay tint.
func heatColor(d float64) (uint8, uint8, uint8) {
	switch {
	case d < heatGreenMax:
		return 0x2e, 0xcc, 0x40 // green
	case d < heatYellowMax:
		return 0xff, 0xdc, 0x00 // yellow
	default:
		return 0xff, 0x41, 0x36 // red
	}
}

func blendChannel(base, tint uint8) uint8 {
	return uint8(float64(base)*(1-overlayAlpha) + float64(tint)*overlayAlpha)
}
