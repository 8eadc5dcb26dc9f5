package capture

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/internal/imaging"
	"github.com/parityci/dpc/schema"
)

// removeSelectorsJS deletes ignored elements from the live page before the
// screenshot, so they vanish from both pixels and structure.
const removeSelectorsJS = `(sels) => {
	for (const s of sels) {
		document.querySelectorAll(s).forEach((el) => el.remove());
	}
}`

// extractNodesJS walks the rendered document and returns a flat JSON array
// of nodes in document order with parent indexes. Non-visual tags are
// skipped; visibility rules are applied later during element extraction.
const extractNodesJS = `() => {
	const skip = new Set(['SCRIPT', 'STYLE', 'NOSCRIPT', 'TEMPLATE', 'META', 'LINK', 'TITLE']);
	const out = [];
	const walk = (el, parent) => {
		if (skip.has(el.tagName)) {
			return;
		}
		const cs = getComputedStyle(el);
		const r = el.getBoundingClientRect();
		let text = '';
		for (const child of el.childNodes) {
			if (child.nodeType === Node.TEXT_NODE) {
				text += child.textContent;
			}
		}
		const idx = out.length;
		out.push({
			tag: el.tagName.toLowerCase(),
			role: el.getAttribute('role') || '',
			text: text.trim(),
			rect: {x: r.x, y: r.y, w: r.width, h: r.height},
			style: {
				fontFamily: cs.fontFamily,
				fontSizePx: parseFloat(cs.fontSize) || 0,
				fontWeight: parseInt(cs.fontWeight, 10) || 0,
				lineHeightPx: parseFloat(cs.lineHeight) || 0,
				color: cs.color,
				backgroundColor: cs.backgroundColor,
				display: cs.display,
				visibility: cs.visibility,
				opacity: parseFloat(cs.opacity)
			},
			id: el.id || '',
			classes: Array.from(el.classList),
			parent: parent
		});
		for (const child of el.children) {
			walk(child, idx);
		}
	};
	if (document.body) {
		walk(document.body, -1);
	}
	return JSON.stringify(out);
}`

// ensureBrowser launches Chrome once and reuses it for later captures.
func (s *Service) ensureBrowser() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		return s.browser, nil
	}

	l := launcher.New()
	l = l.Headless(true)
	l = l.Set("disable-blink-features", "AutomationControlled")
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launch browser: %v", schema.ErrCapture, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("%w: connect browser: %v", schema.ErrCapture, err)
	}

	s.browser = b
	s.lnch = l
	return b, nil
}

// capturePage renders a URL at the viewport size and extracts the element
// tree. Boxes come back in CSS pixels, which equal raster pixels at device
// scale factor 1, so no letterbox mapping is needed.
func (s *Service) capturePage(ctx context.Context, req contract.CaptureRequest) (*schema.Snapshot, error) {
	b, err := s.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("%w: create page: %v", schema.ErrCapture, err)
	}
	defer page.Close()

	vp := s.cfg.Viewport
	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            vp.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: set viewport: %v", schema.ErrCapture, err)
	}

	pageURL := req.Resource.Value
	if err := page.Context(ctx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("%w: navigate %s: %v", schema.ErrCapture, pageURL, err)
	}
	if err := page.Context(ctx).WaitLoad(); err != nil {
		contract.LogWarn("capture", fmt.Errorf("wait load %s: %v", pageURL, err))
	}

	if len(s.cfg.IgnoreSelectors) > 0 {
		if _, err := page.Context(ctx).Eval(removeSelectorsJS, s.cfg.IgnoreSelectors); err != nil {
			contract.LogWarn("capture", fmt.Errorf("remove ignored selectors: %v", err))
		}
	}

	res, err := page.Context(ctx).Eval(extractNodesJS)
	if err != nil {
		return nil, fmt.Errorf("%w: extract elements from %s: %v", schema.ErrCapture, pageURL, err)
	}
	var nodes []schema.DOMNode
	if err := json.Unmarshal([]byte(res.Value.Str()), &nodes); err != nil {
		return nil, fmt.Errorf("%w: decode element tree from %s: %v", schema.ErrCapture, pageURL, err)
	}

	shot, err := page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot %s: %v", schema.ErrCapture, pageURL, err)
	}
	img, err := imaging.Decode(shot)
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot of %s is not a valid image", schema.ErrCapture, pageURL)
	}

	snap := &schema.Snapshot{
		Kind:   schema.PageSnapshot,
		Source: pageURL,
		Img:    imaging.Letterbox(img, vp.Width, vp.Height),
		Width:  vp.Width,
		Height: vp.Height,
		DOM:    &schema.DOMSnapshot{URL: pageURL, Nodes: nodes},
	}
	if req.Sidecar != "" {
		if err := attachSidecar(snap, req.Sidecar, identityTransform, s.cfg.IgnoreSelectors); err != nil {
			return nil, err
		}
	}
	return snap, nil
}
