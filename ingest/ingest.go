// Package ingest accepts pasted page markup and pulls out the SVG the user
// actually meant to upload. People routinely copy a whole HTML page (or a
// fragment of one) that embeds an inline <svg>; the pipeline itself only
// speaks standalone SVG text.
package ingest

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoSVG is returned when the pasted markup contains no <svg> element.
var ErrNoSVG = errors.New("ingest: no inline <svg> element found")

// InlineSVG returns the first inline <svg> element of the given markup,
// re-serialized as standalone SVG text. Markup that is already a bare SVG
// document passes through the same path unchanged in meaning.
func InlineSVG(markup string) (string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("ingest: parse markup: %w", err)
	}

	node := findSVGNode(doc)
	if node == nil {
		return "", ErrNoSVG
	}

	var sb strings.Builder
	if err := html.Render(&sb, node); err != nil {
		return "", fmt.Errorf("ingest: render svg: %w", err)
	}
	return sb.String(), nil
}

func findSVGNode(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Svg {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findSVGNode(c); found != nil {
			return found
		}
	}
	return nil
}
