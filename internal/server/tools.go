package server

import "github.com/ironsheep/ocr-session/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Lifecycle
		{
			Name:        "ocr_initialize",
			Description: "Create the OCR worker for a set of languages, replacing any existing worker. Languages are Tesseract codes joined with '+', e.g. 'tha+eng'.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"languages": map[string]interface{}{
						"type":        "string",
						"description": "Language spec such as 'eng' or 'tha+eng'. Defaults to the server's configured languages.",
					},
				},
			},
		},
		{
			Name:        "ocr_terminate",
			Description: "Release the OCR worker. Does nothing if no worker exists. The next recognition creates a new one.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Recognition
		{
			Name:        "ocr_recognize",
			Description: "Recognize text in an image. Creates an English worker first if none exists. Failures are reported with ok=false and leave the previous text unchanged.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": map[string]interface{}{
						"type":        "string",
						"description": "Image file path, http(s) URL, s3://bucket/key, data URI, or base64-encoded image",
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Rectangle to recognize, in source image pixels",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x1", "y1", "x2", "y2"},
					},
					"quadrant": map[string]interface{}{
						"type":        "string",
						"enum":        imaging.Quadrants,
						"description": "Named area to recognize. Cannot be combined with region.",
					},
					"trim": map[string]interface{}{
						"type":        "boolean",
						"description": "Crop away blank margins around the text",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Resize factor applied before recognition (e.g. 2.0 for small text)",
					},
					"grayscale": map[string]interface{}{
						"type":        "boolean",
						"description": "Convert to grayscale before recognition",
					},
					"contrast": map[string]interface{}{
						"type":        "number",
						"description": "Contrast adjustment from -1 to 1",
					},
					"auto_invert": map[string]interface{}{
						"type":        "boolean",
						"description": "Invert images with light text on a dark background",
					},
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Binarize at this level (1-255). 0 disables.",
					},
					"include_regions": map[string]interface{}{
						"type":        "boolean",
						"description": "Include word bounding boxes and confidences in the result",
						"default":     false,
					},
				},
				"required": []string{"source"},
			},
		},

		// Inspection
		{
			Name:        "ocr_state",
			Description: "Return the session state: last recognized text and confidence, whether a recognition is running, and the current worker's languages.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "ocr_info",
			Description: "Report whether the OCR engine is available, its version, and the tessdata location.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}
