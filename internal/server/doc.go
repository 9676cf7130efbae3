// Package server implements the MCP (Model Context Protocol) server for flag
// conformance checks.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - flag_image_info: Header metadata (dimensions, format, aspect ratio)
//   - flag_validate: Full conformance report, optionally exported to disk
//   - flag_emblem_mask: PNG preview of the emblem hue classification
//   - flag_overlay_svg: SVG of bands, emblem, annulus and spokes
//   - flag_profile: Angular profile, frequency spectrum and spoke peaks
//
// # Image Caching
//
// Decoded images are cached by path and reused across tool calls, so asking
// for the report, the mask and the overlay of one file decodes it once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string as data. Malformed request lines get a
// -32700 parse error with a null id.
package server
