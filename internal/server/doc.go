// Package server implements the MCP (Model Context Protocol) server for an
// OCR session.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// The same methods are also available over HTTP (see HTTPApp), one request
// per POST /mcp, optionally behind HS256 bearer tokens.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - ocr_initialize: Create the worker for a language spec
//   - ocr_recognize: Recognize text in an image, with optional preprocessing
//   - ocr_terminate: Release the worker
//   - ocr_state: Current text, confidence and busy flag
//   - ocr_info: Engine availability and version
//
// # Notifications
//
// After the client sends notifications/initialized, every change to the
// session state is pushed as a notifications/ocr/state message whose params
// are a session.State. A recognition therefore produces a notification with
// recognizing=true followed by one with the result.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC errors:
//   - -32700: Parse error (HTTP only; stdio logs and skips bad lines)
//   - -32601: Method not found
//   - -32602: Invalid params
//   - -32000: Tool execution failed
//
// A recognition failure is not a tool error unless the session is configured
// to return failures; it is reported as ok=false with the cause in "error".
package server
