package server

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/ironsheep/code-solver/internal/config"
	"github.com/ironsheep/code-solver/internal/imaging"
	"github.com/ironsheep/code-solver/internal/logutil"
	"github.com/ironsheep/code-solver/internal/solver"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "code_load_url", "code_crack").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.safeExecute(ctx, params.Name, params.Arguments)
	if err != nil {
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

// safeExecute runs a tool, turning a panic into an error and an errors.log
// entry so one bad request cannot take the server down.
func (s *Server) safeExecute(ctx context.Context, name string, args json.RawMessage) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logutil.Errorf("panic in tool %s: %v\n%s", name, r, debug.Stack())
			result, err = nil, fmt.Errorf("%s", solver.SeeErrorLog)
		}
	}()
	return s.executeTool(ctx, name, args)
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Image Acquisition
	case "code_load_url":
		return s.handleLoadURL(ctx, args)
	case "code_load_file":
		return s.handleLoadFile(args)
	case "code_capture_screen":
		return s.handleCaptureScreen(args)

	// Decoding
	case "code_crack":
		return s.handleCrack(ctx, args)
	case "code_decode_text":
		return s.handleDecodeText(args)
	case "code_resolve_token":
		return s.handleResolveToken(args)

	// Display
	case "code_render":
		return s.handleRender(args)
	case "code_status":
		return s.solver.Status(), nil

	// Settings
	case "code_settings_get":
		return s.handleSettingsGet(args)
	case "code_settings_set":
		return s.handleSettingsSet(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
// An empty data is left out.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: e}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Acquisition Handlers ===

type loadURLArgs struct {
	URL string `json:"url"`
}

func (s *Server) handleLoadURL(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a loadURLArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	return s.solver.LoadURL(ctx, a.URL)
}

type loadFileArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleLoadFile(args json.RawMessage) (interface{}, error) {
	var a loadFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return s.solver.LoadFile(a.Path)
}

type captureScreenArgs struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleCaptureScreen(args json.RawMessage) (interface{}, error) {
	var a captureScreenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Width == 0 && a.Height == 0 {
		return s.solver.CaptureScreen(nil)
	}
	return s.solver.CaptureScreen(&imaging.Region{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height})
}

// === Decoding Handlers ===

type crackArgs struct {
	X1 *int `json:"x1"`
	Y1 *int `json:"y1"`
	X2 *int `json:"x2"`
	Y2 *int `json:"y2"`
}

func (s *Server) handleCrack(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a crackArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var region *solver.Rect
	switch set := countSet(a.X1, a.Y1, a.X2, a.Y2); set {
	case 0:
	case 4:
		region = &solver.Rect{X1: *a.X1, Y1: *a.Y1, X2: *a.X2, Y2: *a.Y2}
	default:
		return nil, fmt.Errorf("region needs all of x1, y1, x2, y2 (got %d)", set)
	}
	return s.solver.Crack(ctx, region)
}

func countSet(vals ...*int) int {
	n := 0
	for _, v := range vals {
		if v != nil {
			n++
		}
	}
	return n
}

type decodeTextArgs struct {
	Text string `json:"text"`
}

func (s *Server) handleDecodeText(args json.RawMessage) (interface{}, error) {
	var a decodeTextArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.solver.DecodeText(a.Text), nil
}

type resolveTokenArgs struct {
	Token string `json:"token"`
}

func (s *Server) handleResolveToken(args json.RawMessage) (interface{}, error) {
	var a resolveTokenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Token) != 2 {
		return nil, fmt.Errorf("token must be two characters, got %q", a.Token)
	}
	return s.solver.ResolveToken(a.Token), nil
}

// === Display Handlers ===

type renderArgs struct {
	Width     int   `json:"width"`
	Height    int   `json:"height"`
	Alpha     *int  `json:"alpha"`
	ShowBoxes *bool `json:"show_boxes"`
}

// RenderResult is the rendered canvas and the layout used to draw it.
type RenderResult struct {
	*imaging.ImageResult
	Layout imaging.Layout `json:"layout"`
}

func (s *Server) handleRender(args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	out, layout, err := s.solver.Render(solver.RenderRequest{
		CanvasWidth:  a.Width,
		CanvasHeight: a.Height,
		Alpha:        a.Alpha,
		ShowBoxes:    a.ShowBoxes,
	})
	if err != nil {
		return nil, err
	}
	return &RenderResult{ImageResult: out, Layout: layout}, nil
}

// === Settings Handlers ===

type settingsGetArgs struct {
	Key string `json:"key"`
}

func (s *Server) handleSettingsGet(args json.RawMessage) (interface{}, error) {
	var a settingsGetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	store := s.solver.Settings()
	if a.Key == "" {
		return store.All(), nil
	}
	if a.Key == config.KeyPasswordHash {
		return nil, fmt.Errorf("%w: %s is write-only", config.ErrUnknownKey, a.Key)
	}
	v, err := store.Get(a.Key)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{a.Key: v}, nil
}

type settingsSetArgs struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Password string `json:"password"`
}

func (s *Server) handleSettingsSet(args json.RawMessage) (interface{}, error) {
	var a settingsSetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.solver.Settings().Set(a.Key, a.Value, a.Password); err != nil {
		return nil, err
	}
	if a.Key == config.KeyPasswordHash {
		return map[string]interface{}{"updated": a.Key}, nil
	}
	v, err := s.solver.Settings().Get(a.Key)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{a.Key: v}, nil
}
