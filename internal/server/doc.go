// Package server implements the MCP (Model Context Protocol) server for
// landmark annotation of radiographs.
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
// Session:
//   - annotate_load_dicom: Load a radiograph as the canvas background
//   - annotate_set_region: Select the landmark region
//   - annotate_list_regions: List regions and their landmarks
//   - annotate_place_point: Pin the next landmark
//   - annotate_toggle_label: Flip a placed landmark's label flag
//   - annotate_commit_line: Draw the line through the active points
//   - annotate_reset: Clear points and lines
//   - annotate_state: Report the session state
//
// Positioning aids:
//   - annotate_snapshot: Canvas as PNG, optionally cropped and scaled
//   - annotate_grid_overlay: Canvas with a coordinate grid
//   - annotate_sample_intensity: Grayscale values of the radiograph
//
// Export:
//   - annotate_export_jpeg: clinical-analysis.jpg
//   - annotate_export_pdf: clinical-analysis.pdf
//
// The server owns a single annotation session. Requests are handled one at a
// time in arrival order.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A failed tool call never ends the session.
package server
