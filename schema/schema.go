// Package schema has configs, models and global variables for all parts of dpc.
package schema

import "image"

// Snapshot is the normalized form of one comparison side. Every capture
// path (static image, rendered page, design document) produces one, so the
// metrics never see resource-specific types.
type Snapshot struct {
	Kind     SnapshotKind    // Origin of the snapshot
	Source   string          // Resource string as given on the command line
	Img      image.Image     // Decoded raster, already letterboxed to the viewport
	Width    int             // Raster width in pixels
	Height   int             // Raster height in pixels
	DOM      *DOMSnapshot    // Element tree from a rendered page, if any
	Design   *DesignDocument // Element tree from a design document, if any
	OCR      []OCRBlock      // Recognized text blocks for plain images, if any
	Elements []Element       // Canonical elements extracted from the richest structure above
}

// HasStructure reports whether any element tree or OCR data backs the raster.
func (s *Snapshot) HasStructure() bool {
	return s.DOM != nil || s.Design != nil || len(s.OCR) > 0
}

// Element is the canonical unit all structural metrics operate on.
// Box coordinates are normalized to [0, 1] against the snapshot viewport.
type Element struct {
	Type  ElementType   `json:"type"`
	Box   Box           `json:"box"`
	Label string        `json:"label,omitempty"` // Trimmed visible text, empty for non-text elements
	Style *ElementStyle `json:"style,omitempty"`
}

// ElementStyle carries the style attributes the typography and color
// metrics consume. Zero values mean the source did not report the attribute.
type ElementStyle struct {
	FontFamily   string             `json:"fontFamily,omitempty"`
	FontSizePx   float64            `json:"fontSizePx,omitempty"`
	FontWeight   FontWeightCategory `json:"fontWeightCategory,omitempty"`
	LineHeightPx float64            `json:"lineHeightPx,omitempty"`
	FillColor    string             `json:"fillColor,omitempty"` // Hex, e.g. "#1a2b3c"
}

// Box is an axis-aligned rectangle. Canonical elements use viewport-normalized
// coordinates; raw snapshot nodes use absolute pixels.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Viewport is the logical size both snapshots are normalized to.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DOMSnapshot is the element tree captured from a rendered page, either by
// the built-in browser renderer or from a sidecar file.
type DOMSnapshot struct {
	URL   string    `json:"url,omitempty"`
	Nodes []DOMNode `json:"nodes"`
}

// DOMNode is one visible node of a rendered page. Nodes are stored flat;
// Parent indexes into the containing slice, -1 for roots.
type DOMNode struct {
	Tag     string         `json:"tag"`
	Role    string         `json:"role,omitempty"`
	Text    string         `json:"text,omitempty"`
	Rect    Box            `json:"rect"` // Absolute pixels
	Style   *ComputedStyle `json:"style,omitempty"`
	ID      string         `json:"id,omitempty"`
	Classes []string       `json:"classes,omitempty"`
	Parent  int            `json:"parent"`
}

// ComputedStyle is the subset of resolved CSS the extractor reads.
type ComputedStyle struct {
	FontFamily      string  `json:"fontFamily,omitempty"`
	FontSizePx      float64 `json:"fontSizePx,omitempty"`
	FontWeight      int     `json:"fontWeight,omitempty"`
	LineHeightPx    float64 `json:"lineHeightPx,omitempty"`
	Color           string  `json:"color,omitempty"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	Display         string  `json:"display,omitempty"`
	Visibility      string  `json:"visibility,omitempty"`
	Opacity         float64 `json:"opacity"`
}

// DesignDocument is the element tree exported from a design tool node.
type DesignDocument struct {
	FileKey string       `json:"fileKey"`
	NodeID  string       `json:"nodeId"`
	Name    string       `json:"name,omitempty"`
	Nodes   []DesignNode `json:"nodes"`
}

// DesignNode is one node of a design document. Stored flat like DOMNode.
type DesignNode struct {
	ID         string       `json:"id"`
	Name       string       `json:"name,omitempty"`
	NodeType   string       `json:"nodeType"`
	Rect       Box          `json:"boundingBox"` // Absolute pixels
	Text       string       `json:"text,omitempty"`
	Typography *TextStyle   `json:"typography,omitempty"`
	Fills      []DesignFill `json:"fills,omitempty"`
	Parent     int          `json:"parent"`
}

// TextStyle is the typography block attached to design text nodes.
type TextStyle struct {
	FontFamily   string  `json:"fontFamily,omitempty"`
	FontSizePx   float64 `json:"fontSizePx,omitempty"`
	FontWeight   int     `json:"fontWeight,omitempty"`
	LineHeightPx float64 `json:"lineHeightPx,omitempty"`
}

// DesignFill is one paint applied to a design node.
type DesignFill struct {
	Kind    string  `json:"kind"` // solid, gradient or image
	Color   string  `json:"color,omitempty"`
	Opacity float64 `json:"opacity"`
}

// OCRBlock is one recognized text region from a plain image.
type OCRBlock struct {
	Text       string  `json:"text"`
	Rect       Box     `json:"rect"` // Absolute pixels
	Confidence float64 `json:"confidence"`
}

// ElementMatch pairs a reference element with an implementation element.
// Indexes point into the respective canonical element slices; each index
// appears in at most one match.
type ElementMatch struct {
	RefIndex  int     `json:"refIndex"`
	ImplIndex int     `json:"implIndex"`
	Score     float64 `json:"score"`
}

// Resource is a parsed command line input before capture.
type Resource struct {
	Kind  ResourceKind `json:"kind"`
	Value string       `json:"value"`
}

// IgnoreRegion is a rectangle in raster pixel coordinates excluded from
// comparison, e.g. a clock or ad slot.
type IgnoreRegion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Box converts the region to a Box in the same pixel coordinates.
func (r IgnoreRegion) Box() Box {
	return Box{X: r.X, Y: r.Y, W: r.W, H: r.H}
}
