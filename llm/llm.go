// Package llm is the generation-collaborator boundary: it turns a subset
// SVG plus a natural-language motion description into structured SMIL
// animation fragments, by calling an opaque text-generation model. The rest
// of the pipeline depends only on the Generator interface; the Gemini
// implementation is constructed once at startup and injected.
package llm

import (
	"context"
	"errors"

	"github.com/rliebert/renaissance-ink/splice"
)

// ErrDecode is returned when the model's output can be neither decoded as
// the structured animation payload nor salvaged as a full SVG document.
var ErrDecode = errors.New("llm: model response could not be decoded")

// Turn is one entry of the conversation transcript.
type Turn struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// Request carries everything the model needs for one generation call.
type Request struct {
	// SubsetSVG is the minimal preview document containing only the
	// selected elements (never the full upload).
	SubsetSVG string

	// Description is the user's free-text motion description.
	Description string

	// AnimateIDs are the elements to animate; ReferenceIDs are selected
	// elements to keep static, used only as spatial anchors.
	AnimateIDs   []string
	ReferenceIDs []string

	// History is the prior conversation, oldest first.
	History []Turn
}

// Parameters are model-chosen animation knobs, passed through unmodified to
// storage and the UI.
type Parameters struct {
	Duration  string `json:"duration,omitempty"`
	Easing    string `json:"easing,omitempty"`
	Repeat    string `json:"repeat,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// Response is the model's structured output.
type Response struct {
	Animations  []splice.AnimationElement `json:"animations"`
	Parameters  Parameters                `json:"parameters"`
	Explanation string                    `json:"explanation"`

	// FullSVG is set instead of Animations when the model ignored the
	// structured instructions and returned a whole document. The caller
	// must pass it through repair before trusting it.
	FullSVG string `json:"-"`
}

// Generator produces animation proposals. Implementations must be safe for
// concurrent use; the call blocks until the model answers or ctx is done.
type Generator interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}
