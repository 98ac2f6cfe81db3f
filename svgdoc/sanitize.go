package svgdoc

import (
	"strings"

	"github.com/beevik/etree"
)

// HighlightAttr is the reserved marker attribute a caller may set before
// injecting selection/highlight styling. It holds the element's pre-highlight
// style so extraction can restore it.
const HighlightAttr = "data-ink-orig-style"

// Elements dropped from untrusted uploads. foreignObject can smuggle
// arbitrary HTML (including scripts) past an SVG-only review.
var droppedElements = map[string]bool{
	"script":        true,
	"foreignObject": true,
}

// Sanitize strips active content from an untrusted document in place:
// <script> and <foreignObject> subtrees, on* event attributes, and
// javascript: URLs in href/xlink:href. Returns the number of nodes and
// attributes removed.
func Sanitize(d *Document) int {
	return sanitizeElement(d.root)
}

func sanitizeElement(el *etree.Element) int {
	removed := 0

	var drop []*etree.Element
	for _, c := range el.ChildElements() {
		if droppedElements[c.Tag] {
			drop = append(drop, c)
			continue
		}
		removed += sanitizeElement(c)
	}
	for _, c := range drop {
		el.RemoveChild(c)
		removed++
	}

	var badAttrs []string
	for _, a := range el.Attr {
		key := strings.ToLower(a.Key)
		switch {
		case strings.HasPrefix(key, "on"):
			badAttrs = append(badAttrs, a.FullKey())
		case key == "href" && isScriptURL(a.Value):
			// Catches both href and xlink:href.
			badAttrs = append(badAttrs, a.FullKey())
		}
	}
	for _, key := range badAttrs {
		el.RemoveAttr(key)
		removed++
	}

	return removed
}

func isScriptURL(v string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(v)), "javascript:")
}

// StripHighlight reverses caller-injected selection styling on el. When the
// reserved marker attribute is present its value becomes the style attribute
// (an empty value removes style entirely); otherwise the current style is
// assumed already clean.
func StripHighlight(el *etree.Element) {
	marker := el.SelectAttr(HighlightAttr)
	if marker == nil {
		return
	}
	if marker.Value == "" {
		el.RemoveAttr("style")
	} else {
		el.CreateAttr("style", marker.Value)
	}
	el.RemoveAttr(HighlightAttr)
}

// StripHighlightTree applies StripHighlight to el and every descendant.
func StripHighlightTree(el *etree.Element) {
	StripHighlight(el)
	for _, c := range el.ChildElements() {
		StripHighlightTree(c)
	}
}
