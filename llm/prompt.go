package llm

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the generation prompt. The model only ever sees the
// minimal subset SVG; re-merging into the original document happens by
// element id on our side, so the prompt forbids rewriting anything but the
// named elements.
func BuildPrompt(req *Request) string {
	var sb strings.Builder

	sb.WriteString(`You are an expert in SVG SMIL animation.
You receive a minimal SVG containing only the elements a user selected, and a
description of the motion they want. Propose SMIL animation children
(<animate>, <animateTransform>, <animateMotion>) for the elements to animate.

Rules:
- Animate only the element ids listed under "animate".
- Ids listed under "reference" are spatial anchors; never animate them.
- Each fragment must be a single self-contained SMIL element.
- Do not restructure, rename, or restyle any element.

Respond with a single JSON object, no prose around it:
{
  "animations": [
    {"element_id": "<id>", "animations": ["<animate .../>", "..."]}
  ],
  "parameters": {"duration": "...", "easing": "...", "repeat": "...", "direction": "..."},
  "explanation": "one short paragraph for the user"
}
`)

	if len(req.History) > 0 {
		sb.WriteString("\nConversation so far:\n")
		for _, turn := range req.History {
			fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Content)
		}
	}

	fmt.Fprintf(&sb, "\nanimate: %s\n", strings.Join(req.AnimateIDs, ", "))
	if len(req.ReferenceIDs) > 0 {
		fmt.Fprintf(&sb, "reference: %s\n", strings.Join(req.ReferenceIDs, ", "))
	}
	fmt.Fprintf(&sb, "\nDescription: %s\n", req.Description)
	fmt.Fprintf(&sb, "\nSVG:\n%s\n", req.SubsetSVG)

	return sb.String()
}
