package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Acquisition
		{
			Name:        "code_load_url",
			Description: "Download an image from a URL and make it the current image. Clears previous boxes and output.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"url": map[string]interface{}{
						"type":        "string",
						"description": "HTTP(S) URL of the image",
					},
				},
				"required": []string{"url"},
			},
		},
		{
			Name:        "code_load_file",
			Description: "Load a local image file and make it the current image. Clears previous boxes and output.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "code_capture_screen",
			Description: "Capture a region of the screen and make it the current image. Without a region the primary display is captured.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge of the region in screen pixels",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge of the region in screen pixels",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Region width. Omit width and height to capture the primary display",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Region height",
					},
				},
			},
		},

		// Decoding
		{
			Name:        "code_crack",
			Description: "Run OCR on the current image, correct ambiguous characters in the two-character hex tokens it finds and translate them through the ASCII table. Requires a loaded image. Without a region the whole image is used, or the detected text area when system.auto_crop is on.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Optional region left edge (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Optional region top edge (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Optional region right edge (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Optional region bottom edge (exclusive)",
					},
				},
			},
		},
		{
			Name:        "code_decode_text",
			Description: "Decode already recognized text without OCR. Output mode and disclosure follow the decoder settings.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Text containing two-character hex tokens, e.g. \"48 69\"",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "code_resolve_token",
			Description: "Correct and look up a single two-character token, listing every substitution tried.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"token": map[string]interface{}{
						"type":        "string",
						"description": "Token such as \"4H\" or \"6G\"",
					},
				},
				"required": []string{"token"},
			},
		},

		// Display
		{
			Name:        "code_render",
			Description: "Render the current image fitted to a canvas with optional dimming and character boxes. Returns base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Canvas width, 1-16384. Default window.window_width",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Canvas height, 1-16384. Default window.window_height",
					},
					"alpha": map[string]interface{}{
						"type":        "integer",
						"description": "Dimming overlay 0-100. Default canvas.overlay_alpha",
						"minimum":     0,
						"maximum":     100,
					},
					"show_boxes": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw character boxes. Default canvas.render_boxes",
					},
				},
			},
		},
		{
			Name:        "code_status",
			Description: "Get the status line, whether an image is loaded and the last output.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Settings
		{
			Name:        "code_settings_get",
			Description: "Get one setting, or all settings when key is omitted. Keys are \"section.key\", e.g. \"decoder.mode\".",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"key": map[string]interface{}{
						"type":        "string",
						"description": "Setting key",
					},
				},
			},
		},
		{
			Name:        "code_settings_set",
			Description: "Change a setting. Keys in the system and admin sections require the admin password.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"key": map[string]interface{}{
						"type":        "string",
						"description": "Setting key, e.g. \"canvas.overlay_alpha\"",
					},
					"value": map[string]interface{}{
						"type":        "string",
						"description": "New value",
					},
					"password": map[string]interface{}{
						"type":        "string",
						"description": "Admin password for protected keys",
					},
				},
				"required": []string{"key", "value"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
