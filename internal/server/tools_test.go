package server

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ironsheep/flag-check-mcp/internal/config"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	want := []string{"flag_image_info", "flag_validate", "flag_emblem_mask", "flag_overlay_svg", "flag_profile"}
	if len(tools) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(tools))
	}

	for i, tool := range tools {
		if tool.Name != want[i] {
			t.Errorf("tool %d: got %s, want %s", i, tool.Name, want[i])
		}
		if tool.Description == "" {
			t.Errorf("%s: empty description", tool.Name)
		}
		schema := tool.InputSchema
		if schema.Type != "object" {
			t.Errorf("%s: schema type %v", tool.Name, schema.Type)
		}
		if len(schema.Required) != 1 || schema.Required[0] != "path" {
			t.Errorf("%s: required = %v, want [path]", tool.Name, schema.Required)
		}
		if p, ok := schema.Properties["path"]; !ok || p.Type != "string" {
			t.Errorf("%s: path property %+v", tool.Name, p)
		}
	}
}

func TestToolsHaveHandlers(t *testing.T) {
	s := New(config.Default(), nil)
	for _, tool := range GetToolDefinitions() {
		_, err := s.executeTool(tool.Name, []byte(`{}`))
		if err == nil {
			t.Errorf("%s: expected error for missing path", tool.Name)
			continue
		}
		if err.Error() != "path is required" {
			t.Errorf("%s: got %q, want missing path error", tool.Name, err)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New(config.Default(), nil)
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	result, ok := resp.Result.(ToolsListResult)
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	if len(result.Tools) != 5 {
		t.Errorf("tools: %v", result.Tools)
	}
}

func TestToolSchemaJSON(t *testing.T) {
	var profile Tool
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "flag_profile" {
			profile = tool
		}
	}

	b, err := json.Marshal(profile.InputSchema)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// a false default is still published
	if !strings.Contains(string(b), `"include_raw":{"type":"boolean","description":"Also return the raw profile before baseline removal","default":false}`) {
		t.Errorf("include_raw schema: %s", b)
	}
	if !strings.Contains(string(b), `"required":["path"]`) {
		t.Errorf("required: %s", b)
	}
}
