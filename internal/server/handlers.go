package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ironsheep/flag-check-mcp/internal/classify"
	"github.com/ironsheep/flag-check-mcp/internal/detection"
	"github.com/ironsheep/flag-check-mcp/internal/geometry"
	"github.com/ironsheep/flag-check-mcp/internal/imaging"
	"github.com/ironsheep/flag-check-mcp/internal/overlay"
	"github.com/ironsheep/flag-check-mcp/internal/validate"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "flag_validate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with CodeToolFailed.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
	}

	out, err := s.executeTool(params.Name, params.Arguments)
	if err == nil {
		var res ToolCallResult
		if res, err = textResult(out); err == nil {
			return resultResponse(req.ID, res)
		}
	}
	s.log.Warn("tool failed", "tool", params.Name, "error", err)
	return errorResponse(req.ID, CodeToolFailed, "Tool execution failed", err.Error())
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "flag_image_info":
		return s.handleImageInfo(args)
	case "flag_validate":
		return s.handleValidate(args)
	case "flag_emblem_mask":
		return s.handleEmblemMask(args)
	case "flag_overlay_svg":
		return s.handleOverlaySVG(args)
	case "flag_profile":
		return s.handleProfile(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

type pathArgs struct {
	Path string `json:"path"`
}

func (a pathArgs) check() error {
	if a.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// analyze loads path through the cache and runs the full pipeline on it.
func (s *Server) analyze(path string) (*imaging.PixelBuffer, *validate.Result, error) {
	buf, err := s.cache.Load(path)
	if err != nil {
		return nil, nil, err
	}
	res, err := validate.Run(buf, s.cfg)
	if err != nil {
		return nil, nil, err
	}
	return buf, res, nil
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(a.Path)
}

type validateArgs struct {
	pathArgs
	ExportDir string `json:"export_dir"`
}

type validateResult struct {
	Passed     bool            `json:"passed"`
	Failed     []string        `json:"failed"`
	Report     validate.Report `json:"report"`
	ExportPath string          `json:"export_path,omitempty"`
}

func (s *Server) handleValidate(args json.RawMessage) (interface{}, error) {
	var a validateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.check(); err != nil {
		return nil, err
	}

	_, res, err := s.analyze(a.Path)
	if err != nil {
		return nil, err
	}

	out := validateResult{
		Passed: res.Report.Passed(),
		Failed: res.Report.Failed(),
		Report: res.Report,
	}
	if out.Failed == nil {
		out.Failed = []string{}
	}

	if a.ExportDir != "" {
		body, err := res.Report.JSON()
		if err != nil {
			return nil, err
		}
		out.ExportPath = validate.ExportPath(a.Path, a.ExportDir)
		if err := os.WriteFile(out.ExportPath, body, 0o644); err != nil {
			return nil, fmt.Errorf("export report: %w", err)
		}
	}

	s.log.Info("flag validated", "path", a.Path, "passed", out.Passed, "failed", out.Failed)
	return out, nil
}

type emblemMaskArgs struct {
	pathArgs
	Scale float64 `json:"scale"`
}

func (s *Server) handleEmblemMask(args json.RawMessage) (interface{}, error) {
	var a emblemMaskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if a.Scale < 0 {
		return nil, fmt.Errorf("scale must be positive, got %g", a.Scale)
	}

	buf, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	layout := geometry.SplitBands(buf.Width, buf.Height)
	return imaging.RenderMask(buf, layout.Middle, classify.New(s.cfg.Hue).Keep, a.Scale)
}

type overlayArgs struct {
	pathArgs
	Labels *bool `json:"labels"`
}

type overlayResult struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MimeType string `json:"mime_type"`
	SVG      string `json:"svg"`
}

func (s *Server) handleOverlaySVG(args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	labels := a.Labels == nil || *a.Labels

	buf, res, err := s.analyze(a.Path)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := overlay.Render(&out, res, overlay.Options{
		Width:  buf.Width,
		Height: buf.Height,
		Config: s.cfg,
		Labels: labels,
	}); err != nil {
		return nil, err
	}
	return overlayResult{
		Width:    buf.Width,
		Height:   buf.Height,
		MimeType: "image/svg+xml",
		SVG:      out.String(),
	}, nil
}

type profileArgs struct {
	pathArgs
	IncludeRaw bool `json:"include_raw"`
}

type profileResult struct {
	Found        bool                           `json:"found"`
	Emblem       *detection.Emblem              `json:"emblem,omitempty"`
	Steps        int                            `json:"steps"`
	K            int                            `json:"k"`
	Significance float64                        `json:"significance"`
	Spectrum     []detection.FrequencyMagnitude `json:"spectrum,omitempty"`
	Peaks        []int                          `json:"peaks"`
	Angles       []float64                      `json:"angles"`
	ProfileMax   float64                        `json:"profile_max"`
	ProfileMean  float64                        `json:"profile_mean"`
	Enhanced     []float64                      `json:"enhanced,omitempty"`
	Raw          []float64                      `json:"raw,omitempty"`
}

func (s *Server) handleProfile(args json.RawMessage) (interface{}, error) {
	var a profileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.check(); err != nil {
		return nil, err
	}

	_, res, err := s.analyze(a.Path)
	if err != nil {
		return nil, err
	}
	if res.Emblem == nil {
		return profileResult{Peaks: []int{}, Angles: []float64{}}, nil
	}

	sp := res.Spokes
	out := profileResult{
		Found:        true,
		Emblem:       res.Emblem,
		Steps:        res.Profile.Len(),
		K:            sp.Periodicity.K,
		Significance: sp.Periodicity.Significance,
		Spectrum:     sp.Periodicity.Spectrum,
		Peaks:        sp.Peaks,
		Angles:       sp.Angles,
		ProfileMax:   imaging.Round(sp.ProfileMax, 4),
		ProfileMean:  imaging.Round(sp.ProfileMean, 4),
		Enhanced:     res.Profile.Enhanced,
	}
	if a.IncludeRaw {
		out.Raw = res.Profile.Raw
	}
	return out, nil
}
