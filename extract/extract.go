// Package extract builds a minimal standalone SVG from a selected subset of
// a document's elements, recentered and padded for isolated preview. The
// original document is never mutated; every selected element is deep-cloned
// into a fresh tree carrying only the derived coordinate system.
package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/rliebert/renaissance-ink/geometry"
	"github.com/rliebert/renaissance-ink/svgdoc"
)

// ErrNoElements is returned when none of the requested ids resolve. Callers
// must be able to distinguish "nothing selected" from "selection rendered
// empty", so an empty-but-valid SVG is never returned silently.
var ErrNoElements = errors.New("extract: no selected elements found in document")

const svgNamespace = "http://www.w3.org/2000/svg"

// Options configures extraction.
type Options struct {
	// Padding is the fraction of max(width, height) added on each side of
	// the selection bounds. Default 0.10.
	Padding float64

	// Unwrapped appends the clones directly under the new root instead of
	// inside a single <g> wrapper.
	Unwrapped bool
}

func (o *Options) defaults() {
	if o.Padding <= 0 {
		o.Padding = 0.10
	}
}

// ElementGeometry records the box used for one resolved element.
type ElementGeometry struct {
	ID  string       `json:"id"`
	Tag string       `json:"tag"`
	Box geometry.Box `json:"box"`
}

// Debug captures the geometry decisions behind a preview, for observability
// by the caller. JSON-serializable.
type Debug struct {
	OriginalViewBox string            `json:"original_view_box,omitempty"`
	OriginalWidth   string            `json:"original_width,omitempty"`
	OriginalHeight  string            `json:"original_height,omitempty"`
	ViewBox         string            `json:"view_box"`
	Resolved        []ElementGeometry `json:"resolved"`
	Unresolved      []string          `json:"unresolved,omitempty"`
}

// Result is a successful extraction.
type Result struct {
	SVG   string `json:"svg"`
	Debug Debug  `json:"debug"`
}

// Extract builds a preview SVG containing clones of the elements named by
// ids. Ids that do not resolve are skipped and recorded in Debug; duplicates
// are no-ops after their first occurrence. Returns ErrNoElements when the
// whole selection fails to resolve.
func Extract(doc *svgdoc.Document, ids []string, opts Options) (*Result, error) {
	opts.defaults()

	root := doc.Root()
	debug := Debug{
		OriginalViewBox: root.SelectAttrValue("viewBox", ""),
		OriginalWidth:   root.SelectAttrValue("width", ""),
		OriginalHeight:  root.SelectAttrValue("height", ""),
	}

	var selected []*etree.Element
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		el := doc.FindByID(id)
		if el == nil {
			debug.Unresolved = append(debug.Unresolved, id)
			continue
		}
		selected = append(selected, el)
		debug.Resolved = append(debug.Resolved, ElementGeometry{
			ID:  id,
			Tag: el.Tag,
			Box: geometry.Bounds(el),
		})
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: %d id(s) requested", ErrNoElements, len(ids))
	}

	box := geometry.GroupBounds(selected)
	width := box.Width()
	height := box.Height()
	pad := opts.Padding * max(width, height)
	if pad == 0 {
		// Zero-area selection (a single point); give it a visible window.
		pad = 1
	}
	viewBox := strings.Join([]string{
		fnum(box.MinX - pad),
		fnum(box.MinY - pad),
		fnum(width + 2*pad),
		fnum(height + 2*pad),
	}, " ")
	debug.ViewBox = viewBox

	// New root carries only the derived coordinate system, so the preview
	// scales independently of the source document's absolute size.
	out := etree.NewDocument()
	newRoot := out.CreateElement("svg")
	newRoot.CreateAttr("xmlns", svgNamespace)
	for _, a := range root.Attr {
		// Namespace declarations travel with the clones (xlink hrefs etc).
		if a.Space == "xmlns" {
			newRoot.CreateAttr(a.FullKey(), a.Value)
		}
	}
	newRoot.CreateAttr("viewBox", viewBox)
	newRoot.CreateAttr("preserveAspectRatio", "xMidYMid meet")

	parent := newRoot
	if !opts.Unwrapped {
		parent = newRoot.CreateElement("g")
	}
	for _, el := range selected {
		clone := el.Copy()
		svgdoc.StripHighlightTree(clone)
		parent.AddChild(clone)
	}

	svg, err := out.WriteToString()
	if err != nil {
		return nil, fmt.Errorf("extract: serialize preview: %w", err)
	}

	return &Result{SVG: svg, Debug: debug}, nil
}

// fnum formats a coordinate without trailing zeros.
func fnum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
