// Package capture resolves raw comparison inputs into normalized snapshots.
// Every resource kind funnels through the same pipeline: obtain a raster,
// letterbox it onto the configured viewport, and attach whatever element
// structure the source offers. Downstream code never needs to know whether
// a snapshot came from a file on disk, a rendered page, or a design tool.
package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/internal/imaging"
	"github.com/parityci/dpc/schema"
)

// Service resolves resources into snapshots using the capture settings of a
// validated configuration. A browser is launched lazily on the first page
// capture and reused until Close.
type Service struct {
	cfg *contract.Config

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	figma   *figmaClient
}

var _ contract.CaptureProvider = &Service{} // Compile-time check

// NewService creates a capture service bound to a configuration.
func NewService(cfg *contract.Config) *Service {
	return &Service{cfg: cfg}
}

// Capture implements the contract.CaptureProvider interface.
func (s *Service) Capture(ctx context.Context, req contract.CaptureRequest) (*schema.Snapshot, error) {
	switch req.Resource.Kind {
	case schema.ImageResource:
		return s.captureImage(req)
	case schema.URLResource:
		return s.capturePage(ctx, req)
	case schema.FigmaResource:
		return s.captureDesign(ctx, req)
	default:
		return nil, fmt.Errorf("%w: unknown resource kind %q", schema.ErrInput, req.Resource.Kind)
	}
}

// Close shuts down the shared browser, if one was launched.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.lnch.Cleanup()
	s.browser = nil
	s.lnch = nil
	return err
}

// captureImage decodes an image file and letterboxes it onto the viewport.
// A sidecar's element boxes are mapped with the same transform, so structure
// stays aligned with the pixels it describes.
func (s *Service) captureImage(req contract.CaptureRequest) (*schema.Snapshot, error) {
	img, err := imaging.Load(req.Resource.Value)
	if err != nil {
		return nil, err
	}

	vp := s.cfg.Viewport
	b := img.Bounds()
	t := letterboxTransform(b.Dx(), b.Dy(), vp)

	snap := &schema.Snapshot{
		Kind:   schema.ImageSnapshot,
		Source: req.Resource.Value,
		Img:    imaging.Letterbox(img, vp.Width, vp.Height),
		Width:  vp.Width,
		Height: vp.Height,
	}
	if req.Sidecar != "" {
		if err := attachSidecar(snap, req.Sidecar, t, s.cfg.IgnoreSelectors); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// frameTransform maps source pixel coordinates onto the letterboxed raster.
type frameTransform struct {
	scale  float64
	dx, dy float64
}

// identityTransform leaves coordinates unchanged, for sources already
// rendered at the viewport size.
var identityTransform = frameTransform{scale: 1}

// letterboxTransform computes the mapping imaging.Letterbox applies when
// fitting a source of the given size onto the viewport.
func letterboxTransform(srcW, srcH int, vp schema.Viewport) frameTransform {
	if srcW <= 0 || srcH <= 0 {
		return identityTransform
	}
	scale := min(float64(vp.Width)/float64(srcW), float64(vp.Height)/float64(srcH))
	return frameTransform{
		scale: scale,
		dx:    (float64(vp.Width) - float64(srcW)*scale) / 2,
		dy:    (float64(vp.Height) - float64(srcH)*scale) / 2,
	}
}

func (t frameTransform) apply(b schema.Box) schema.Box {
	return schema.Box{
		X: b.X*t.scale + t.dx,
		Y: b.Y*t.scale + t.dy,
		W: b.W * t.scale,
		H: b.H * t.scale,
	}
}
