// Package repair checks and patches model-generated SVG text. Models
// routinely truncate output or rewrite the root <svg> tag while animating
// the body correctly, so the checks here are deliberately textual: a full
// parser would reject exactly the slightly-malformed output this package
// exists to salvage.
package repair

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnrepairable is returned when model output cannot be reconciled into a
// complete document. The caller must treat the whole generation as failed
// and keep the original SVG intact for retry.
var ErrUnrepairable = errors.New("repair: model output cannot be reconciled into a complete document")

var (
	declRe    = regexp.MustCompile(`<\?xml[^>]*\?>`)
	rootRe    = regexp.MustCompile(`(?s)<svg[\s>/]`)
	openTagRe = regexp.MustCompile(`(?s)<svg\b[^>]*>`)
	tagRe     = regexp.MustCompile(`(?s)<[^>]+>`)
	attrRe    = regexp.MustCompile(`([A-Za-z_][\w:.-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// VerifyComplete reports whether text looks like a complete SVG document: an
// XML declaration, an opening <svg>, a closing </svg>, and as many
// non-self-closing opening tags as closing tags. A cheap balance heuristic,
// not a parse.
func VerifyComplete(text string) bool {
	if !declRe.MatchString(text) {
		return false
	}
	if !rootRe.MatchString(text) {
		return false
	}
	if !strings.Contains(text, "</svg>") {
		return false
	}
	return balancedTags(text)
}

// balancedTags counts non-self-closing opening tags against closing tags.
func balancedTags(text string) bool {
	opens, closes := 0, 0
	for _, tag := range tagRe.FindAllString(text, -1) {
		switch {
		case strings.HasPrefix(tag, "<?"),
			strings.HasPrefix(tag, "<!"):
			// declarations, doctypes, comments
		case strings.HasPrefix(tag, "</"):
			closes++
		case strings.HasSuffix(tag, "/>"):
			// self-closing
		default:
			opens++
		}
	}
	return opens == closes
}

// ReconcileRootAttributes patches candidate so its envelope matches the
// original document: the original XML declaration is restored, and the root
// <svg> attributes are merged with the original winning on every shared key
// while candidate-only keys survive (new animation-related root attributes
// stay). A missing closing </svg> is appended. This is a textual patch of
// the serialized form, not a semantic merge.
//
// Returns ErrUnrepairable when candidate has no recognizable opening <svg>
// tag at all.
func ReconcileRootAttributes(candidate, original string) (string, error) {
	candTag := openTagRe.FindString(candidate)
	if candTag == "" {
		return "", fmt.Errorf("%w: no opening <svg> tag", ErrUnrepairable)
	}
	origTag := openTagRe.FindString(original)

	merged := mergeRootTag(candTag, origTag)
	out := strings.Replace(candidate, candTag, merged, 1)

	// Use the original's declaration verbatim; drop whatever the model
	// emitted in its place.
	out = declRe.ReplaceAllString(out, "")
	out = strings.TrimLeft(out, " \t\r\n")
	if origDecl := declRe.FindString(original); origDecl != "" {
		out = origDecl + "\n" + out
	}

	if !strings.Contains(out, "</svg>") {
		out += "</svg>"
	}
	return out, nil
}

// mergeRootTag rebuilds the candidate root tag with the original's
// attributes taking precedence on shared keys. Original attribute order
// leads; candidate-only attributes follow in their own order.
func mergeRootTag(candTag, origTag string) string {
	candAttrs, candOrder := parseAttrs(candTag)
	origAttrs, origOrder := parseAttrs(origTag)

	var sb strings.Builder
	sb.WriteString("<svg")
	for _, k := range origOrder {
		writeAttr(&sb, k, origAttrs[k])
	}
	for _, k := range candOrder {
		if _, shared := origAttrs[k]; shared {
			continue
		}
		writeAttr(&sb, k, candAttrs[k])
	}
	sb.WriteString(">")
	return sb.String()
}

// writeAttr emits one attribute in double-quoted form. Values come straight
// from serialized text, so entities in them are already escaped; only a raw
// double quote (legal inside a single-quoted source attribute) needs
// re-escaping for the double-quoted output. No other transformation: Go
// string escaping would corrupt backslashes.
func writeAttr(sb *strings.Builder, name, value string) {
	sb.WriteString(" ")
	sb.WriteString(name)
	sb.WriteString(`="`)
	sb.WriteString(strings.ReplaceAll(value, `"`, "&quot;"))
	sb.WriteString(`"`)
}

// parseAttrs extracts the name→value pairs of a serialized tag, preserving
// first-seen order.
func parseAttrs(tag string) (map[string]string, []string) {
	attrs := make(map[string]string)
	var order []string
	for _, m := range attrRe.FindAllStringSubmatch(tag, -1) {
		name := m[1]
		value := m[2]
		if value == "" && m[3] != "" {
			value = m[3]
		}
		if _, dup := attrs[name]; !dup {
			order = append(order, name)
		}
		attrs[name] = value
	}
	return attrs, order
}

// Repair runs the full salvage path on model output: reconcile the envelope
// against the original, then verify the result is structurally complete.
// Anything that still fails verification is ErrUnrepairable.
func Repair(candidate, original string) (string, error) {
	out, err := ReconcileRootAttributes(candidate, original)
	if err != nil {
		return "", err
	}
	ok := VerifyComplete(out)
	if !ok && !declRe.MatchString(original) {
		// The original carried no XML declaration, so the reconciled
		// output legitimately has none either; check everything else.
		ok = strings.Contains(out, "</svg>") && balancedTags(out)
	}
	if !ok {
		return "", fmt.Errorf("%w: document incomplete after reconciliation", ErrUnrepairable)
	}
	return out, nil
}
