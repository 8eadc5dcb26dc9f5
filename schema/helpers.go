package schema

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Clamp01 clamps a score component into the [0, 1] range.
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Area returns the area of the box, never negative.
func (b Box) Area() float64 {
	if b.W <= 0 || b.H <= 0 {
		return 0
	}
	return b.W * b.H
}

// Center returns the center point of the box.
func (b Box) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Intersect returns the overlapping region of two boxes. The zero Box is
// returned when they do not overlap.
func (b Box) Intersect(o Box) Box {
	x1 := math.Max(b.X, o.X)
	y1 := math.Max(b.Y, o.Y)
	x2 := math.Min(b.X+b.W, o.X+o.W)
	y2 := math.Min(b.Y+b.H, o.Y+o.H)
	if x2 <= x1 || y2 <= y1 {
		return Box{}
	}
	return Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// IoU returns intersection area over union area. Two degenerate boxes
// yield 0.
func (b Box) IoU(o Box) float64 {
	inter := b.Intersect(o).Area()
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Contains reports whether o lies entirely inside b, with a small epsilon
// so elements flush against a parent edge still count as contained.
func (b Box) Contains(o Box) bool {
	const eps = 1e-6
	return o.X >= b.X-eps && o.Y >= b.Y-eps &&
		o.X+o.W <= b.X+b.W+eps && o.Y+o.H <= b.Y+b.H+eps
}

// Normalize maps an absolute pixel box into [0, 1] viewport coordinates.
func (b Box) Normalize(vp Viewport) Box {
	if vp.Width <= 0 || vp.Height <= 0 {
		return Box{}
	}
	return Box{
		X: b.X / float64(vp.Width),
		Y: b.Y / float64(vp.Height),
		W: b.W / float64(vp.Width),
		H: b.H / float64(vp.Height),
	}
}

// String formats the viewport in the form accepted by ParseViewport.
func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// ParseViewport parses a "WIDTHxHEIGHT" string like "1280x720".
func ParseViewport(s string) (Viewport, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Viewport{}, fmt.Errorf("%w: viewport must be WIDTHxHEIGHT, got %q", ErrConfig, s)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return Viewport{}, fmt.Errorf("%w: invalid viewport width %q", ErrConfig, w)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return Viewport{}, fmt.Errorf("%w: invalid viewport height %q", ErrConfig, h)
	}
	return Viewport{Width: width, Height: height}, nil
}

// ParseHexColor parses "#rgb" or "#rrggbb" into 8-bit channels.
func ParseHexColor(s string) (r, g, b uint8, err error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return 0, 0, 0, fmt.Errorf("%w: invalid hex color %q", ErrInput, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: invalid hex color %q", ErrInput, s)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// HexColor formats 8-bit channels as "#rrggbb".
func HexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// ParseResource classifies a command line input as an image file, a page
// URL, or a Figma design URL.
func ParseResource(s string) (Resource, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Resource{}, fmt.Errorf("%w: resource is empty", ErrInput)
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		u, err := url.Parse(trimmed)
		if err != nil {
			return Resource{}, fmt.Errorf("%w: invalid resource URL %q", ErrInput, trimmed)
		}
		host := strings.ToLower(u.Hostname())
		if host == "figma.com" || strings.HasSuffix(host, ".figma.com") {
			return Resource{Kind: FigmaResource, Value: trimmed}, nil
		}
		return Resource{Kind: URLResource, Value: trimmed}, nil
	}
	return Resource{Kind: ImageResource, Value: trimmed}, nil
}
