// Package svgdoc wraps an XML tree parser into the document contract the
// animation pipeline is built on: parse SVG text into a mutable tree, look
// elements up by id, clone subtrees, serialize back to text.
//
// Nothing outside this package touches the underlying parser, so swapping
// the tree implementation is a local change.
//
// Usage:
//
//	doc, err := svgdoc.Parse(text)
//	el := doc.FindByID("wheel")
//	out, err := doc.Serialize()
package svgdoc

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Document is an owned, mutable SVG tree with exactly one <svg> root.
// Attribute order and child order are preserved through serialization.
type Document struct {
	tree      *etree.Document
	root      *etree.Element
	inputSize int
}

// Parse builds a Document from SVG text. The text may carry an XML
// declaration and leading content; the first <svg> element found becomes the
// root. Returns ErrParse when no <svg> token is present or the text cannot
// be built into a tree, ErrStructure when a tree exists but holds no <svg>.
func Parse(text string) (*Document, error) {
	if !strings.Contains(text, "<svg") {
		return nil, fmt.Errorf("%w: no <svg> tag in input", ErrParse)
	}

	tree := etree.NewDocument()
	tree.ReadSettings.Permissive = true
	if err := tree.ReadFromString(text); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	root := findSVG(tree.Root())
	if root == nil {
		return nil, ErrStructure
	}

	return &Document{tree: tree, root: root, inputSize: len(text)}, nil
}

// findSVG returns el if it is an <svg> element, else the first <svg>
// descendant in document order.
func findSVG(el *etree.Element) *etree.Element {
	if el == nil {
		return nil
	}
	if el.Tag == "svg" {
		return el
	}
	for _, c := range el.ChildElements() {
		if found := findSVG(c); found != nil {
			return found
		}
	}
	return nil
}

// Serialize renders the whole document back to text. Parse∘Serialize is
// stable on well-formed input modulo whitespace.
func (d *Document) Serialize() (string, error) {
	out, err := d.tree.WriteToString()
	if err != nil {
		return "", fmt.Errorf("svgdoc: serialize: %w", err)
	}
	return out, nil
}

// Root returns the <svg> root element.
func (d *Document) Root() *etree.Element {
	return d.root
}

// InputSize returns the byte length of the text this document was parsed
// from, so callers can report and cap input sizes.
func (d *Document) InputSize() int {
	return d.inputSize
}

// FindByID resolves an element id inside this document. Id uniqueness is not
// enforced by SVG authors in practice; when duplicates exist the last element
// in document order wins.
func (d *Document) FindByID(id string) *etree.Element {
	if id == "" {
		return nil
	}
	var found *etree.Element
	walk(d.root, func(el *etree.Element) {
		if el.SelectAttrValue("id", "") == id {
			found = el
		}
	})
	return found
}

// CloneByID returns a deep copy of the element with the given id, detached
// from this document, or nil when the id does not resolve.
func (d *Document) CloneByID(id string) *etree.Element {
	el := d.FindByID(id)
	if el == nil {
		return nil
	}
	return el.Copy()
}

// CountElements returns the number of element nodes in the document,
// including the root.
func (d *Document) CountElements() int {
	n := 0
	walk(d.root, func(*etree.Element) { n++ })
	return n
}

// walk visits el and every element beneath it in document order.
func walk(el *etree.Element, fn func(*etree.Element)) {
	fn(el)
	for _, c := range el.ChildElements() {
		walk(c, fn)
	}
}

// Walk visits the root and every element beneath it in document order.
func (d *Document) Walk(fn func(*etree.Element)) {
	walk(d.root, fn)
}
