// Package splice inserts model-proposed SMIL animation fragments into
// specific elements of the original SVG document. Every node not named in
// the batch survives untouched: nothing is deleted, reordered among
// siblings, or reparented.
package splice

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"github.com/rliebert/renaissance-ink/svgdoc"
)

// ErrFragment is returned when an animation fragment is not well-formed
// markup. The whole batch fails: partial application would leave an
// inconsistent, hard-to-debug document.
var ErrFragment = errors.New("splice: animation fragment is not well-formed markup")

// AnimationElement is the model's structured output unit: the id of one
// target element and the SMIL fragments to append to it, in order.
type AnimationElement struct {
	ElementID  string   `json:"element_id"`
	Animations []string `json:"animations"`
}

// Report describes what a splice actually did.
type Report struct {
	// Applied is the number of fragments inserted.
	Applied int `json:"applied"`

	// Skipped lists element ids that did not resolve in the original
	// document. The element may have been removed or renamed upstream;
	// this is not fatal to the batch.
	Skipped []string `json:"skipped,omitempty"`
}

// Splice parses originalText, appends every fragment to its target element,
// and serializes the whole document back. Parse and structure errors from
// the original propagate as svgdoc sentinels; a malformed fragment fails the
// batch with ErrFragment before any mutation is applied.
func Splice(originalText string, elements []AnimationElement) (string, *Report, error) {
	doc, err := svgdoc.Parse(originalText)
	if err != nil {
		return "", nil, err
	}

	report := &Report{}

	// Resolve targets and parse every fragment before touching the tree,
	// so a bad fragment cannot leave a half-applied batch behind.
	type insertion struct {
		target *etree.Element
		frags  []*etree.Element
	}
	var plan []insertion
	for _, ae := range elements {
		target := doc.FindByID(ae.ElementID)
		if target == nil {
			report.Skipped = append(report.Skipped, ae.ElementID)
			continue
		}
		ins := insertion{target: target}
		for i, raw := range ae.Animations {
			frag, err := parseFragment(raw)
			if err != nil {
				return "", nil, fmt.Errorf("%w: element %q fragment %d: %v",
					ErrFragment, ae.ElementID, i, err)
			}
			ins.frags = append(ins.frags, frag)
		}
		plan = append(plan, ins)
	}

	ensureDefs(doc.Root())

	for _, ins := range plan {
		for _, frag := range ins.frags {
			ins.target.AddChild(frag)
			report.Applied++
		}
	}

	out, err := doc.Serialize()
	if err != nil {
		return "", nil, err
	}
	return out, report, nil
}

// parseFragment parses a standalone markup fragment strictly. Malformed SMIL
// from the model must not be swallowed into the document as raw text.
func parseFragment(raw string) (*etree.Element, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromString(raw); err != nil {
		return nil, err
	}
	children := tree.ChildElements()
	if len(children) == 0 {
		return nil, errors.New("fragment has no element")
	}
	if len(children) > 1 {
		return nil, fmt.Errorf("fragment has %d top-level elements, want 1", len(children))
	}
	return children[0].Copy(), nil
}

// ensureDefs guarantees a <defs> exists as the first child of root, reserved
// for animation-supporting definitions (gradients, motion-guide paths).
// Keeps structure predictable for callers that do add them.
func ensureDefs(root *etree.Element) {
	for _, c := range root.ChildElements() {
		if c.Tag == "defs" {
			return
		}
	}
	defs := etree.NewElement("defs")
	root.InsertChildAt(0, defs)
}
