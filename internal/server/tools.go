package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func exportSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"quality": map[string]interface{}{
				"type":        "integer",
				"description": "JPEG quality 1-100. Defaults to the configured quality (95)",
				"minimum":     1,
				"maximum":     100,
			},
			"output_dir": map[string]interface{}{
				"type":        "string",
				"description": "Directory to write the file into. Defaults to the configured export directory; when neither is set the document is returned as base64",
			},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session
		{
			Name:        "annotate_load_dicom",
			Description: "Load a DICOM radiograph as the canvas background. Resizes the canvas to the image and clears all points and lines. On failure the previous image and annotations are kept.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the DICOM file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "annotate_set_region",
			Description: "Select the anatomical region whose landmarks will be pinned. Clears all points and lines; the loaded image is kept.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"region": map[string]interface{}{
						"type":        "string",
						"description": "Region name, e.g. Spinal or Neck (see annotate_list_regions)",
					},
				},
				"required": []string{"region"},
			},
		},
		{
			Name:        "annotate_list_regions",
			Description: "List the available regions with their landmarks in pinning order.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "annotate_place_point",
			Description: "Pin the next unplaced landmark of the active line at canvas coordinates (x, y). Extra points beyond the region's landmark count are ignored (placed=false).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "number",
						"description": "Canvas X coordinate (0 = left edge)",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "Canvas Y coordinate (0 = top edge)",
					},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "annotate_toggle_label",
			Description: "Flip the label visibility flag of an already placed landmark.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "0-based landmark index within the region",
					},
					"phase": map[string]interface{}{
						"type":        "string",
						"description": "Line to toggle in: reference or actual. Defaults to the active line",
						"enum":        []string{"reference", "actual"},
					},
				},
				"required": []string{"index"},
			},
		},
		{
			Name:        "annotate_commit_line",
			Description: "Draw the line through the active points (at least 2). In comparison mode the first commit draws the reference line and switches to the actual line.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "annotate_reset",
			Description: "Clear all points and lines. The loaded image and region are kept.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "annotate_state",
			Description: "Return the session state: region, placed points per line, label flags, commit status, workflow step and whether export is allowed.",
			InputSchema: emptySchema(),
		},

		// Positioning aids
		{
			Name:        "annotate_snapshot",
			Description: "Return the current canvas as base64 PNG. Optionally restrict to a rectangle or a named area and scale it up to inspect detail before placing points.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"area": map[string]interface{}{
						"type":        "string",
						"description": "Named area instead of x1..y2",
						"enum": []string{
							"top-left", "top-right", "bottom-left", "bottom-right",
							"top-half", "bottom-half", "left-half", "right-half", "center",
						},
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
			},
		},
		{
			Name:        "annotate_grid_overlay",
			Description: "Return the current canvas with a labelled coordinate grid to help choose point coordinates. The canvas itself is not changed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Spacing between grid lines in pixels. Default 50",
						"default":     50,
					},
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label grid intersections with coordinates. Default true",
						"default":     true,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Grid line color as hex (e.g., #00FFFF80)",
						"default":     "#00FFFF80",
					},
				},
			},
		},
		{
			Name:        "annotate_sample_intensity",
			Description: "Read grayscale values of the loaded radiograph at one or more points, e.g. to confirm a point sits on bone.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Points to sample",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
					},
				},
				"required": []string{"points"},
			},
		},

		// Export
		{
			Name:        "annotate_export_jpeg",
			Description: "Export the annotated canvas as clinical-analysis.jpg. Allowed once the final line is committed.",
			InputSchema: exportSchema(),
		},
		{
			Name:        "annotate_export_pdf",
			Description: "Export the annotated canvas as a one-page landscape clinical-analysis.pdf. Allowed once the final line is committed.",
			InputSchema: exportSchema(),
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
