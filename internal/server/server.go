package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ironsheep/flag-check-mcp/internal/config"
	"github.com/ironsheep/flag-check-mcp/internal/imaging"
)

// Name and Version are reported in the initialize handshake.
const Name = "flag-check-mcp"

var Version = "0.1.0"

// maxLine bounds a single request line.
const maxLine = 1024 * 1024

// Server answers MCP requests by checking flag images against one Config.
// Decoded images are cached by path for the life of the server.
type Server struct {
	cache *imaging.ImageCache
	cfg   config.Config
	log   *slog.Logger
}

// New creates a server that checks images against cfg.
// A nil logger discards output.
func New(cfg config.Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{
		cache: imaging.NewImageCache(cfg.MaxImageBytes),
		cfg:   cfg,
		log:   log,
	}
}

// Run serves MCP over stdin and stdout.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w.
// It returns when r is exhausted. Unparseable lines get a parse error with a
// null id; notifications get no reply.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp *MCPResponse
		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("unparseable request", "bytes", len(line), "error", err)
			resp = errorResponse(nil, CodeParseError, "Parse error", err.Error())
		} else {
			s.log.Debug("request", "method", req.Method, "id", req.ID)
			resp = s.handleRequest(&req)
		}
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	return nil
}

// handleRequest routes a request by method. It returns nil for notifications.
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return resultResponse(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			ServerInfo:      ServerInfo{Name: Name, Version: Version},
		})
	case "notifications/initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return resultResponse(req.ID, struct{}{})
	default:
		return errorResponse(req.ID, CodeMethodNotFound, "Method not found: "+req.Method, "")
	}
}
