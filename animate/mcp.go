package animate

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rliebert/renaissance-ink/kit"
)

// RegisterMCP registers the service tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerPreviewTool(srv)
	s.registerAnimateTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func (s *Service) registerPreviewTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "ink_preview",
		Description: "Extract the selected elements of an SVG document into a minimal standalone preview.",
		InputSchema: inputSchema(map[string]any{
			"svg":          map[string]any{"type": "string", "description": "Full SVG document text"},
			"selected_ids": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Element ids to include"},
		}, []string{"svg", "selected_ids"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Preview(ctx, req.(*PreviewRequest))
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r PreviewRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (s *Service) registerAnimateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "ink_animate",
		Description: "Animate selected elements of an SVG document from a natural-language motion description.",
		InputSchema: inputSchema(map[string]any{
			"svg":           map[string]any{"type": "string", "description": "Full SVG document text"},
			"description":   map[string]any{"type": "string", "description": "Natural-language motion description"},
			"animate_ids":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Element ids to animate"},
			"reference_ids": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Static anchor element ids"},
		}, []string{"svg", "description", "animate_ids"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Generate(ctx, req.(*GenerateRequest))
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r GenerateRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
