package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/internal/imaging"
	"github.com/parityci/dpc/schema"
)

const figmaAPIBase = "https://api.figma.com"

// Cap reads at 64MB so a runaway response cannot exhaust memory. Rendered
// frames are the largest payloads and stay well under this.
const maxFigmaBody = 64 << 20

// figmaClient is a minimal REST client for the API surface one capture
// needs: the node tree and the rendered frame of a single node.
type figmaClient struct {
	base  string
	token string
	hc    *http.Client
}

func newFigmaClient(token string) *figmaClient {
	return &figmaClient{
		base:  figmaAPIBase,
		token: token,
		hc:    &http.Client{Timeout: 60 * time.Second},
	}
}

// figmaNode mirrors the subset of the Figma node tree the extractor reads.
type figmaNode struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Type                string       `json:"type"`
	Characters          string       `json:"characters"`
	AbsoluteBoundingBox *figmaRect   `json:"absoluteBoundingBox"`
	Style               *figmaStyle  `json:"style"`
	Fills               []figmaPaint `json:"fills"`
	Children            []figmaNode  `json:"children"`
}

type figmaRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type figmaStyle struct {
	FontFamily   string  `json:"fontFamily"`
	FontSize     float64 `json:"fontSize"`
	FontWeight   float64 `json:"fontWeight"`
	LineHeightPx float64 `json:"lineHeightPx"`
}

type figmaPaint struct {
	Type    string      `json:"type"`
	Visible *bool       `json:"visible"`
	Opacity *float64    `json:"opacity"`
	Color   *figmaColor `json:"color"`
}

type figmaColor struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// captureDesign fetches the node tree and rendered frame for a Figma node,
// letterboxes the frame, and maps design coordinates into raster space.
func (s *Service) captureDesign(ctx context.Context, req contract.CaptureRequest) (*schema.Snapshot, error) {
	fileKey, nodeID, err := parseFigmaURL(req.Resource.Value)
	if err != nil {
		return nil, err
	}

	c := s.figmaAPI()
	doc, err := c.fetchDocument(ctx, fileKey, nodeID)
	if err != nil {
		return nil, err
	}
	frame, err := c.fetchRaster(ctx, fileKey, nodeID)
	if err != nil {
		return nil, err
	}

	vp := s.cfg.Viewport
	b := frame.Bounds()
	t := letterboxTransform(b.Dx(), b.Dy(), vp)
	normalizeDesign(doc, t)

	snap := &schema.Snapshot{
		Kind:   schema.DesignSnapshot,
		Source: req.Resource.Value,
		Img:    imaging.Letterbox(frame, vp.Width, vp.Height),
		Width:  vp.Width,
		Height: vp.Height,
		Design: doc,
	}
	if req.Sidecar != "" {
		if err := attachSidecar(snap, req.Sidecar, t, s.cfg.IgnoreSelectors); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func (s *Service) figmaAPI() *figmaClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.figma == nil {
		s.figma = newFigmaClient(s.cfg.FigmaToken)
	}
	return s.figma
}

// parseFigmaURL extracts the file key and node ID from a design link.
// Links look like https://www.figma.com/design/KEY/Name?node-id=1-2; older
// ones use /file/KEY. The node-id query uses a dash where the API wants a
// colon.
func parseFigmaURL(raw string) (fileKey, nodeID string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid Figma URL %q", schema.ErrInput, raw)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 2 && (parts[0] == "design" || parts[0] == "file" || parts[0] == "proto") {
		fileKey = parts[1]
	}
	if fileKey == "" {
		return "", "", fmt.Errorf("%w: no file key in Figma URL %q", schema.ErrInput, raw)
	}
	nodeID = strings.ReplaceAll(u.Query().Get("node-id"), "-", ":")
	if nodeID == "" {
		return "", "", fmt.Errorf("%w: Figma URL %q has no node-id", schema.ErrInput, raw)
	}
	return fileKey, nodeID, nil
}

// fetchDocument retrieves one node tree and flattens it into a document.
func (c *figmaClient) fetchDocument(ctx context.Context, fileKey, nodeID string) (*schema.DesignDocument, error) {
	var payload struct {
		Nodes map[string]struct {
			Document figmaNode `json:"document"`
		} `json:"nodes"`
	}
	endpoint := fmt.Sprintf("%s/v1/files/%s/nodes?ids=%s", c.base, fileKey, url.QueryEscape(nodeID))
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	entry, ok := payload.Nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: node %s not found in file %s", schema.ErrCapture, nodeID, fileKey)
	}

	doc := &schema.DesignDocument{FileKey: fileKey, NodeID: nodeID, Name: entry.Document.Name}
	flattenFigmaNode(&entry.Document, -1, &doc.Nodes)
	return doc, nil
}

// fetchRaster renders one node to PNG and downloads it. The render is a
// two-step dance: the images endpoint returns a short-lived URL.
func (c *figmaClient) fetchRaster(ctx context.Context, fileKey, nodeID string) (image.Image, error) {
	var payload struct {
		Err    string            `json:"err"`
		Images map[string]string `json:"images"`
	}
	endpoint := fmt.Sprintf("%s/v1/images/%s?ids=%s&format=png&scale=1", c.base, fileKey, url.QueryEscape(nodeID))
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if payload.Err != "" {
		return nil, fmt.Errorf("%w: render node %s: %s", schema.ErrCapture, nodeID, payload.Err)
	}
	imgURL := payload.Images[nodeID]
	if imgURL == "" {
		return nil, fmt.Errorf("%w: no rendered image for node %s", schema.ErrCapture, nodeID)
	}

	data, err := c.getBytes(ctx, imgURL)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: rendered frame for node %s is not a valid image", schema.ErrCapture, nodeID)
	}
	return img, nil
}

// flattenFigmaNode appends the node and its descendants in document order.
// Parent indexes refer to positions in the flat slice, -1 for the root.
func flattenFigmaNode(n *figmaNode, parent int, out *[]schema.DesignNode) {
	idx := len(*out)
	dn := schema.DesignNode{
		ID:       n.ID,
		Name:     n.Name,
		NodeType: n.Type,
		Text:     n.Characters,
		Parent:   parent,
	}
	if b := n.AbsoluteBoundingBox; b != nil {
		dn.Rect = schema.Box{X: b.X, Y: b.Y, W: b.Width, H: b.Height}
	}
	if st := n.Style; st != nil {
		dn.Typography = &schema.TextStyle{
			FontFamily:   st.FontFamily,
			FontSizePx:   st.FontSize,
			FontWeight:   int(st.FontWeight),
			LineHeightPx: st.LineHeightPx,
		}
	}
	for _, p := range n.Fills {
		if p.Visible != nil && !*p.Visible {
			continue
		}
		f := schema.DesignFill{Kind: paintKind(p.Type), Opacity: 1}
		if p.Opacity != nil {
			f.Opacity = *p.Opacity
		}
		if p.Color != nil {
			f.Color = hexColor(*p.Color)
		}
		dn.Fills = append(dn.Fills, f)
	}
	*out = append(*out, dn)
	for i := range n.Children {
		flattenFigmaNode(&n.Children[i], idx, out)
	}
}

func paintKind(t string) string {
	switch {
	case t == "SOLID":
		return "solid"
	case strings.HasPrefix(t, "GRADIENT"):
		return "gradient"
	case t == "IMAGE":
		return "image"
	default:
		return strings.ToLower(t)
	}
}

// hexColor converts the API's 0..1 channel floats to a #rrggbb string.
func hexColor(c figmaColor) string {
	r := uint8(schema.Clamp01(c.R)*255 + 0.5)
	g := uint8(schema.Clamp01(c.G)*255 + 0.5)
	b := uint8(schema.Clamp01(c.B)*255 + 0.5)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func (c *figmaClient) getJSON(ctx context.Context, rawURL string, out any) error {
	data, err := c.getBytes(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode Figma response: %v", schema.ErrCapture, err)
	}
	return nil
}

func (c *figmaClient) getBytes(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build Figma request: %v", schema.ErrCapture, err)
	}
	req.Header.Set("X-Figma-Token", c.token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrCapture, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: Figma rejected the token (status %d)", schema.ErrCapture, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: Figma returned status %d", schema.ErrCapture, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFigmaBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read Figma response: %v", schema.ErrCapture, err)
	}
	return body, nil
}
