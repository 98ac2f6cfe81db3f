package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
	"google.golang.org/genai"
)

// Gemini is the Generator backed by the Gemini API.
type Gemini struct {
	client   *genai.Client
	model    string
	sanitize *bluemonday.Policy
	logger   *slog.Logger
}

// NewGemini creates a Gemini generator. The client is built once here and
// shared by every request.
func NewGemini(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: api key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create genai client: %w", err)
	}
	return &Gemini{
		client:   client,
		model:    model,
		sanitize: bluemonday.StrictPolicy(),
		logger:   logger,
	}, nil
}

// Generate implements Generator.
func (g *Gemini) Generate(ctx context.Context, req *Request) (*Response, error) {
	prompt := BuildPrompt(req)
	g.logger.Debug("calling model",
		"model", g.model,
		"animate_ids", len(req.AnimateIDs),
		"prompt_bytes", len(prompt))

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		return nil, fmt.Errorf("llm: generate content: %w", err)
	}

	resp, err := DecodeResponse(result.Text())
	if err != nil {
		return nil, err
	}

	// The explanation is displayed in the chat UI; strip any markup the
	// model smuggled in.
	resp.Explanation = g.sanitize.Sanitize(resp.Explanation)
	return resp, nil
}
