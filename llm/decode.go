package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeResponse parses raw model output. The happy path is the structured
// JSON payload; a model that answered with a whole SVG document instead is
// salvaged into FullSVG for the repair path. Anything else is ErrDecode.
func DecodeResponse(raw string) (*Response, error) {
	text := stripFence(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrDecode)
	}

	var resp Response
	if err := json.Unmarshal([]byte(text), &resp); err == nil {
		if len(resp.Animations) == 0 {
			return nil, fmt.Errorf("%w: payload contains no animations", ErrDecode)
		}
		return &resp, nil
	}

	if strings.Contains(text, "<svg") {
		return &Response{FullSVG: text}, nil
	}

	return nil, fmt.Errorf("%w: neither structured payload nor svg document", ErrDecode)
}

// stripFence removes a markdown code fence the model may have wrapped its
// output in, fence language tag included.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		// Drop the language tag line (```json, ```xml, ...).
		if lang := strings.TrimSpace(text[:i]); lang == "" || !strings.ContainsAny(lang, "<>{} ") {
			text = text[i+1:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
