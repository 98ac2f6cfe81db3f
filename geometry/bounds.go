// Package geometry estimates the extent of SVG elements from their shape
// attributes. The estimates are deliberately approximate: path data is
// scanned as alternating x/y numeric tokens without interpreting command
// semantics, which is cheap and good enough to frame a preview window.
package geometry

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Box is an axis-aligned extent in the coordinate space of the document the
// element came from. Invariant: MinX <= MaxX and MinY <= MaxY, all finite.
type Box struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// defaultSpan frames elements with no usable geometry. Guarantees viewBox
// math downstream never divides by zero.
const defaultSpan = 250

// DefaultBox is returned whenever no finite geometry can be extracted.
func DefaultBox() Box {
	return Box{0, 0, defaultSpan, defaultSpan}
}

// Width returns MaxX - MinX.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY - MinY.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Contains reports whether other lies entirely within b.
func (b Box) Contains(other Box) bool {
	return other.MinX >= b.MinX && other.MinY >= b.MinY &&
		other.MaxX <= b.MaxX && other.MaxY <= b.MaxY
}

// Union returns the smallest box containing both b and other.
func (b Box) Union(other Box) Box {
	return Box{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// accum folds coordinate observations per axis.
type accum struct {
	minX, minY float64
	maxX, maxY float64
	hasX, hasY bool
}

func newAccum() accum {
	return accum{
		minX: math.Inf(1), minY: math.Inf(1),
		maxX: math.Inf(-1), maxY: math.Inf(-1),
	}
}

func (a *accum) x(v float64) {
	if !isFinite(v) {
		return
	}
	a.minX = math.Min(a.minX, v)
	a.maxX = math.Max(a.maxX, v)
	a.hasX = true
}

func (a *accum) y(v float64) {
	if !isFinite(v) {
		return
	}
	a.minY = math.Min(a.minY, v)
	a.maxY = math.Max(a.maxY, v)
	a.hasY = true
}

// box collapses the accumulator; missing geometry on either axis degrades to
// the default box so callers never see NaN or infinities.
func (a *accum) box() Box {
	if !a.hasX || !a.hasY {
		return DefaultBox()
	}
	return Box{MinX: a.minX, MinY: a.minY, MaxX: a.maxX, MaxY: a.maxY}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Bounds estimates the extent of a single element from its attributes.
//
//   - circle: (cx, cy) ± r on both axes
//   - rect:   (x, y) to (x+width, y+height)
//   - path:   numeric tokens of d in emission order, even as x, odd as y
//   - other (ellipse, polygon, polyline, line, unknown): every attribute
//     named x, y, x1, y1, x2, y2, cx or cy folded per axis
//
// Elements with no finite geometry yield DefaultBox.
func Bounds(el *etree.Element) Box {
	acc := newAccum()

	switch el.Tag {
	case "circle":
		cx, okX := num(el.SelectAttrValue("cx", ""))
		cy, okY := num(el.SelectAttrValue("cy", ""))
		r, okR := num(el.SelectAttrValue("r", ""))
		if okX && okY && okR {
			acc.x(cx - r)
			acc.x(cx + r)
			acc.y(cy - r)
			acc.y(cy + r)
		}
	case "rect":
		x, _ := num(el.SelectAttrValue("x", "0"))
		y, _ := num(el.SelectAttrValue("y", "0"))
		w, okW := num(el.SelectAttrValue("width", ""))
		h, okH := num(el.SelectAttrValue("height", ""))
		if okW && okH {
			acc.x(x)
			acc.x(x + w)
			acc.y(y)
			acc.y(y + h)
		}
	case "path":
		for i, tok := range numberTokens(el.SelectAttrValue("d", "")) {
			if i%2 == 0 {
				acc.x(tok)
			} else {
				acc.y(tok)
			}
		}
	default:
		scanCoordAttrs(el, &acc)
	}

	// Shape-specific attributes may be malformed or missing; fall back to
	// the generic coordinate scan before giving up entirely.
	if !acc.hasX || !acc.hasY {
		scanCoordAttrs(el, &acc)
	}

	return acc.box()
}

var xAttrs = map[string]bool{"x": true, "x1": true, "x2": true, "cx": true}
var yAttrs = map[string]bool{"y": true, "y1": true, "y2": true, "cy": true}

func scanCoordAttrs(el *etree.Element, acc *accum) {
	for _, a := range el.Attr {
		v, ok := num(a.Value)
		if !ok {
			continue
		}
		switch {
		case xAttrs[a.Key]:
			acc.x(v)
		case yAttrs[a.Key]:
			acc.y(v)
		}
	}
}

// GroupBounds folds Bounds over a set of elements. An empty set yields
// DefaultBox, as does a set whose members are all degenerate (their default
// boxes fold back into the default box).
func GroupBounds(els []*etree.Element) Box {
	if len(els) == 0 {
		return DefaultBox()
	}
	b := Bounds(els[0])
	for _, el := range els[1:] {
		b = b.Union(Bounds(el))
	}
	return b
}

var numberRe = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)

// numberTokens extracts the numeric tokens of a path d attribute in emission
// order. Command letters and separators are ignored.
func numberTokens(d string) []float64 {
	matches := numberRe.FindAllString(d, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		if v, err := strconv.ParseFloat(m, 64); err == nil && isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// num parses an attribute value as a float, tolerating a trailing unit
// suffix ("50px", "2.5em").
func num(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, isFinite(v)
	}
	if m := numberRe.FindString(s); m != "" && strings.HasPrefix(s, m) {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return v, isFinite(v)
		}
	}
	return 0, false
}
