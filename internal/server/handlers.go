package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/ocr-session/internal/imaging"
	"github.com/ironsheep/ocr-session/internal/ocr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "ocr_initialize", "ocr_recognize").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
// Malformed arguments return -32602.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if ae, ok := err.(*argsError); ok {
			return s.errorResponse(req.ID, -32602, "Invalid params", ae.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Lifecycle
	case "ocr_initialize":
		return s.handleInitializeTool(ctx, args)
	case "ocr_terminate":
		return s.handleTerminateTool(ctx)

	// Recognition
	case "ocr_recognize":
		return s.handleRecognizeTool(ctx, args)

	// Inspection
	case "ocr_state":
		return s.sess.Snapshot(), nil
	case "ocr_info":
		return ocr.GetInfo(s.tessdataPrefix), nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// argsError marks a tool call whose arguments could not be decoded.
type argsError struct {
	err error
}

func (e *argsError) Error() string { return e.err.Error() }

func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &argsError{err: err}
	}
	return nil
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Lifecycle Handlers ===

type initializeArgs struct {
	Languages string `json:"languages"`
}

func (s *Server) handleInitializeTool(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a initializeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.sess.Initialize(ctx, a.Languages); err != nil {
		return nil, err
	}
	return s.sess.Snapshot(), nil
}

func (s *Server) handleTerminateTool(ctx context.Context) (interface{}, error) {
	if err := s.sess.Terminate(ctx); err != nil {
		return nil, err
	}
	return s.sess.Snapshot(), nil
}

// === Recognition Handler ===

type recognizeArgs struct {
	// Source is a file path, http(s) URL, s3:// object, data URI or raw
	// base64 string.
	Source string `json:"source"`

	imaging.Preprocess

	// IncludeRegions adds word boxes to the result.
	IncludeRegions bool `json:"include_regions"`
}

// RecognizeResult is the ocr_recognize tool result.
type RecognizeResult struct {
	OK         bool             `json:"ok"`
	Text       string           `json:"text"`
	Confidence float64          `json:"confidence"`
	Source     string           `json:"source"`
	Languages  string           `json:"languages"`
	DurationMS int64            `json:"duration_ms"`
	Regions    []ocr.TextRegion `json:"regions,omitempty"`
	Error      string           `json:"error,omitempty"`
}

func (s *Server) handleRecognizeTool(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a recognizeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Source == "" {
		return nil, &argsError{err: fmt.Errorf("source is required")}
	}
	if err := a.Preprocess.Validate(); err != nil {
		return nil, &argsError{err: err}
	}

	out, err := s.sess.RecognizeWith(ctx, imaging.ParseSource(a.Source), a.Preprocess)
	if err != nil {
		return nil, err
	}

	res := &RecognizeResult{
		OK:         out.OK(),
		Text:       out.Text,
		Confidence: out.Confidence,
		Source:     out.Source,
		Languages:  out.Languages,
		DurationMS: out.Duration.Milliseconds(),
	}
	if a.IncludeRegions {
		res.Regions = out.Regions
	}
	if out.Err != nil {
		res.Error = out.Err.Error()
	}
	return res, nil
}
