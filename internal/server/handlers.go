package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/chiroplot-mcp/internal/annotation"
	"github.com/ironsheep/chiroplot-mcp/internal/imaging"
	"github.com/ironsheep/chiroplot-mcp/internal/landmarks"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "annotate_place_point").
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

	s.logger.Debug("tool call", "tool", params.Name)
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Calls the session or an imaging function
//  4. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Session
	case "annotate_load_dicom":
		return s.handleLoadDICOM(ctx, args)
	case "annotate_set_region":
		return s.handleSetRegion(args)
	case "annotate_list_regions":
		return s.handleListRegions()
	case "annotate_place_point":
		return s.handlePlacePoint(args)
	case "annotate_toggle_label":
		return s.handleToggleLabel(args)
	case "annotate_commit_line":
		return s.handleCommitLine()
	case "annotate_reset":
		return s.handleReset()
	case "annotate_state":
		return s.session.Snapshot(), nil

	// Positioning aids
	case "annotate_snapshot":
		return s.handleSnapshot(args)
	case "annotate_grid_overlay":
		return s.handleGridOverlay(args)
	case "annotate_sample_intensity":
		return s.handleSampleIntensity(args)

	// Export
	case "annotate_export_jpeg":
		return s.handleExport(args, false)
	case "annotate_export_pdf":
		return s.handleExport(args, true)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Session Handlers ===

type loadDICOMArgs struct {
	Path string `json:"path"`
}

type loadDICOMResult struct {
	Image *imaging.BitmapInfo `json:"image"`
	State annotation.State    `json:"state"`
}

func (s *Server) handleLoadDICOM(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a loadDICOMArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	gen := s.session.BeginLoad()
	bmp, err := s.cache.Load(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	if err := s.session.ApplyBitmap(gen, bmp); err != nil {
		return nil, err
	}
	if s.loaded != "" && s.loaded != a.Path {
		s.cache.Evict(s.loaded)
	}
	s.loaded = a.Path

	info, err := imaging.Info(bmp, a.Path)
	if err != nil {
		return nil, err
	}
	return &loadDICOMResult{Image: info, State: s.session.Snapshot()}, nil
}

type setRegionArgs struct {
	Region string `json:"region"`
}

func (s *Server) handleSetRegion(args json.RawMessage) (interface{}, error) {
	var a setRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.session.SetRegion(landmarks.Region(a.Region)); err != nil {
		return nil, err
	}
	return s.session.Snapshot(), nil
}

type regionInfo struct {
	Name      landmarks.Region `json:"name"`
	Count     int              `json:"count"`
	Landmarks []string         `json:"landmarks"`
	Active    bool             `json:"active"`
}

func (s *Server) handleListRegions() (interface{}, error) {
	active := s.session.Snapshot().Region
	regions := s.registry.Regions()
	out := make([]regionInfo, 0, len(regions))
	for _, r := range regions {
		names, err := s.registry.Names(r)
		if err != nil {
			return nil, err
		}
		out = append(out, regionInfo{Name: r, Count: len(names), Landmarks: names, Active: r == active})
	}
	return map[string]interface{}{"regions": out}, nil
}

type placePointArgs struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type placePointResult struct {
	annotation.PlaceResult
	Remaining    int    `json:"remaining"`
	NextLandmark string `json:"next_landmark,omitempty"`
}

func (s *Server) handlePlacePoint(args json.RawMessage) (interface{}, error) {
	var a placePointArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.X == nil || a.Y == nil {
		return nil, errors.New("x and y are required")
	}

	res, err := s.session.PlacePoint(*a.X, *a.Y)
	if err != nil {
		return nil, err
	}
	st := s.session.Snapshot()
	placed := len(st.Phases[res.Phase].Points)
	return &placePointResult{
		PlaceResult:  res,
		Remaining:    st.RequiredCount - placed,
		NextLandmark: st.NextLandmark,
	}, nil
}

type toggleLabelArgs struct {
	Index *int   `json:"index"`
	Phase string `json:"phase"`
}

func (s *Server) handleToggleLabel(args json.RawMessage) (interface{}, error) {
	var a toggleLabelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Index == nil {
		return nil, errors.New("index is required")
	}

	phase := s.session.Snapshot().ActivePhase
	if a.Phase != "" {
		p, err := annotation.ParsePhase(a.Phase)
		if err != nil {
			return nil, err
		}
		phase = p
	}

	visible, err := s.session.ToggleLabelVisibility(phase, *a.Index)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"phase":   phase,
		"index":   *a.Index,
		"visible": visible,
	}, nil
}

func (s *Server) handleCommitLine() (interface{}, error) {
	phase, err := s.session.CommitLine()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"committed": phase,
		"state":     s.session.Snapshot(),
	}, nil
}

func (s *Server) handleReset() (interface{}, error) {
	if err := s.session.Reset(); err != nil {
		return nil, err
	}
	return s.session.Snapshot(), nil
}

// === Positioning Aid Handlers ===

type snapshotArgs struct {
	X1    *int    `json:"x1"`
	Y1    *int    `json:"y1"`
	X2    *int    `json:"x2"`
	Y2    *int    `json:"y2"`
	Area  string  `json:"area"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleSnapshot(args json.RawMessage) (interface{}, error) {
	var a snapshotArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	img := s.session.Canvas()
	var region *imaging.Region
	switch {
	case a.Area != "":
		r, err := imaging.QuadrantRegion(a.Area, img.Bounds().Dx(), img.Bounds().Dy())
		if err != nil {
			return nil, err
		}
		region = r
	case a.X1 != nil || a.Y1 != nil || a.X2 != nil || a.Y2 != nil:
		if a.X1 == nil || a.Y1 == nil || a.X2 == nil || a.Y2 == nil {
			return nil, errors.New("x1, y1, x2 and y2 must be given together")
		}
		region = &imaging.Region{X1: *a.X1, Y1: *a.Y1, X2: *a.X2, Y2: *a.Y2}
	}
	return imaging.Snapshot(img, region, a.Scale)
}

type gridOverlayArgs struct {
	GridSpacing     int    `json:"grid_spacing"`
	ShowCoordinates *bool  `json:"show_coordinates"`
	GridColor       string `json:"grid_color"`
}

func (s *Server) handleGridOverlay(args json.RawMessage) (interface{}, error) {
	var a gridOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.GridSpacing == 0 {
		a.GridSpacing = 50
	}
	showCoords := true
	if a.ShowCoordinates != nil {
		showCoords = *a.ShowCoordinates
	}
	if a.GridColor == "" {
		a.GridColor = imaging.DefaultGridColor
	}
	return imaging.GridOverlay(s.session.Canvas(), a.GridSpacing, showCoords, a.GridColor)
}

type sampleIntensityArgs struct {
	Points []struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Label string `json:"label,omitempty"`
	} `json:"points"`
}

func (s *Server) handleSampleIntensity(args json.RawMessage) (interface{}, error) {
	var a sampleIntensityArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Points) == 0 {
		return nil, errors.New("at least one point is required")
	}
	bmp := s.session.Bitmap()
	if bmp == nil {
		return nil, annotation.ErrNoBitmap
	}

	points := make([]imaging.LabeledPoint, len(a.Points))
	for i, p := range a.Points {
		points[i] = imaging.LabeledPoint{X: p.X, Y: p.Y, Label: p.Label}
	}
	samples, err := imaging.SampleIntensities(bmp, points)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"samples": samples}, nil
}

// === Export Handlers ===

type exportArgs struct {
	Quality   int    `json:"quality"`
	OutputDir string `json:"output_dir"`
}

func (s *Server) handleExport(args json.RawMessage, pdf bool) (interface{}, error) {
	var a exportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Quality == 0 {
		a.Quality = s.cfg.Export.JPEGQuality
	}
	if a.OutputDir == "" {
		a.OutputDir = s.cfg.Export.Dir
	}

	img, err := s.session.ExportImage()
	if err != nil {
		return nil, err
	}

	var res *imaging.ExportResult
	if pdf {
		data, err := imaging.EncodePDF(img, a.Quality)
		if err != nil {
			return nil, err
		}
		res, err = imaging.NewExportResult(img, data, "application/pdf", imaging.PDFFileName, a.OutputDir)
		if err != nil {
			return nil, err
		}
	} else {
		data, err := imaging.EncodeJPEG(img, a.Quality)
		if err != nil {
			return nil, err
		}
		res, err = imaging.NewExportResult(img, data, "image/jpeg", imaging.JPEGFileName, a.OutputDir)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("canvas exported", "file", res.FileName, "bytes", res.SizeBytes, "path", res.Path)
	return res, nil
}
