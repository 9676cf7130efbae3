package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema is the JSON Schema object describing a tool's arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Property describes one tool argument.
type Property struct {
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// imageTool builds a schema with the required image path plus extra arguments.
func imageTool(extra map[string]Property) InputSchema {
	props := map[string]Property{
		"path": {Type: "string", Description: "Absolute path to the flag image file"},
	}
	for k, v := range extra {
		props[k] = v
	}
	return InputSchema{Type: "object", Properties: props, Required: []string{"path"}}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "flag_image_info",
			Description: "Read an image header and return its dimensions, format, aspect ratio and file size without decoding the pixels.",
			InputSchema: imageTool(nil),
		},
		{
			Name:        "flag_validate",
			Description: "Check a tricolor flag image for aspect ratio, stripe proportions, band colours, emblem position, emblem size and spoke count. Returns the per-check report.",
			InputSchema: imageTool(map[string]Property{
				"export_dir": {Type: "string", Description: "Optional directory to write <name>_flag_validation.json into"},
			}),
		},
		{
			Name:        "flag_emblem_mask",
			Description: "Return a PNG of the image with every middle-band pixel classified as emblem hue painted over it. Use this to see what the emblem detector sees.",
			InputSchema: imageTool(map[string]Property{
				"scale": {Type: "number", Description: "Optional output scale factor. Default 1.0", Default: 1.0},
			}),
		},
		{
			Name:        "flag_overlay_svg",
			Description: "Return an SVG drawing of the band boundaries, expected and detected emblem, sampled annulus and detected spokes.",
			InputSchema: imageTool(map[string]Property{
				"labels": {Type: "boolean", Description: "Whether to print the check verdicts on the drawing", Default: true},
			}),
		},
		{
			Name:        "flag_profile",
			Description: "Return the emblem's angular density profile with its dominant frequency, frequency spectrum and detected spoke peaks.",
			InputSchema: imageTool(map[string]Property{
				"include_raw": {Type: "boolean", Description: "Also return the raw profile before baseline removal", Default: false},
			}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return resultResponse(req.ID, ToolsListResult{Tools: GetToolDefinitions()})
}
