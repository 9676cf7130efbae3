package server

import "encoding/json"

// ProtocolVersion is the MCP revision this server speaks.
const ProtocolVersion = "2024-11-05"

const jsonRPCVersion = "2.0"

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeToolFailed     = -32000
)

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// ServerInfo names the server in the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities advertises the MCP features served. Only tools are offered.
type Capabilities struct {
	Tools struct{} `json:"tools"`
}

// InitializeResult answers "initialize".
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// ToolsListResult answers "tools/list".
type ToolsListResult struct {
	Tools []Tool `json:"tools"`
}

// Content is one block of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolCallResult answers "tools/call". Flag checks return a single text
// block holding the tool's JSON output.
type ToolCallResult struct {
	Content []Content `json:"content"`
}

// textResult wraps a tool's output as indented JSON text.
func textResult(v interface{}) (ToolCallResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ToolCallResult{}, err
	}
	return ToolCallResult{Content: []Content{{Type: "text", Text: string(b)}}}, nil
}

func resultResponse(id interface{}, result interface{}) *MCPResponse {
	return &MCPResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
}

func errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &MCPError{Code: code, Message: message, Data: data},
	}
}
