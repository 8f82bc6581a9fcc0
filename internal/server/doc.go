// Package server implements the MCP (Model Context Protocol) server for the
// code solver.
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
// Image Acquisition:
//   - code_load_url: Download an image
//   - code_load_file: Load a local image
//   - code_capture_screen: Capture a screen region
//
// Decoding:
//   - code_crack: OCR the current image and decode its hex tokens
//   - code_decode_text: Decode text without OCR
//   - code_resolve_token: Correct and look up one token
//
// Display:
//   - code_render: Draw the image with character boxes
//   - code_status: Status line and last output
//
// Settings:
//   - code_settings_get: Read settings
//   - code_settings_set: Change a setting (system and admin need a password)
//
// # Session State
//
// All tools share one solver.Solver, so code_crack and code_render work on
// whatever image the last acquisition tool loaded.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A panic inside a tool is logged with its stack to errors.log and reported
// as "Error occurred, see errors.log".
package server
