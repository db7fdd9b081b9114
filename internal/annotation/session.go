// Package annotation implements the landmark annotation session: pinning
// named landmarks on a radiograph in order, committing the line through
// them, and gating export until the workflow is complete.
//
// A Session owns its render.Surface and repaints it as state changes. All
// methods are safe for concurrent use.
package annotation

import (
	"fmt"
	"image"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/chiroplot-mcp/internal/imaging"
	"github.com/ironsheep/chiroplot-mcp/internal/landmarks"
	"github.com/ironsheep/chiroplot-mcp/internal/render"
)

// Point is a placed landmark in canvas coordinates.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// Generation identifies a load started with BeginLoad.
type Generation uint64

// Option configures a Session.
type Option func(*Session)

// WithVariant selects the workflow variant. The default is SingleLine.
func WithVariant(v Variant) Option {
	return func(s *Session) { s.variant = v }
}

// WithRegion selects the initial region. The default is the registry's
// first region.
func WithRegion(r landmarks.Region) Option {
	return func(s *Session) { s.region = r }
}

// WithLogger sets the logger. The session id is attached to every record.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is the annotation state for one radiograph.
type Session struct {
	mu sync.Mutex

	id       string
	variant  Variant
	registry *landmarks.Registry
	surface  render.Surface
	logger   *slog.Logger

	region    landmarks.Region
	bitmap    *imaging.Bitmap
	points    [2][]Point
	visible   [2][]bool
	committed [2]bool
	phase     Phase
	gen       Generation
}

// NewSession creates a session drawing on surface. The surface is painted
// blank immediately.
func NewSession(registry *landmarks.Registry, surface render.Surface, opts ...Option) (*Session, error) {
	s := &Session{
		id:       uuid.NewString(),
		variant:  SingleLine,
		registry: registry,
		surface:  surface,
		region:   registry.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.variant.Phases < 1 || s.variant.Phases > 2 {
		return nil, fmt.Errorf("variant %q: unsupported phase count %d", s.variant.Name, s.variant.Phases)
	}
	if !registry.Has(s.region) {
		return nil, fmt.Errorf("%w: %q", landmarks.ErrUnknownRegion, s.region)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("session", s.id)

	if err := s.resetLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Variant returns the workflow variant.
func (s *Session) Variant() Variant {
	return s.variant
}

// PlaceResult reports the outcome of PlacePoint. Placed is false when the
// active sequence already holds every landmark of the region.
type PlaceResult struct {
	Point  Point `json:"point"`
	Index  int   `json:"index"`
	Phase  Phase `json:"phase"`
	Placed bool  `json:"placed"`
}

// PlacePoint pins the next unplaced landmark of the active phase at (x, y)
// and paints its marker. Coordinates are not validated against the canvas.
func (s *Session) PlacePoint(x, y float64) (PlaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.variant.RequiresBitmap && s.bitmap == nil {
		return PlaceResult{}, ErrNoBitmap
	}
	if s.doneLocked() {
		return PlaceResult{}, ErrSessionDone
	}

	seq := s.points[s.phase]
	idx := len(seq)
	label, ok := s.registry.Name(s.region, idx)
	if !ok {
		s.logger.Debug("point ignored, all landmarks placed", "phase", s.phase, "count", idx)
		return PlaceResult{Index: idx, Phase: s.phase}, nil
	}

	pt := Point{X: x, Y: y, Label: label}
	s.points[s.phase] = append(seq, pt)

	pal := PaletteFor(s.variant, s.phase)
	err := s.surface.PaintMarker(render.Marker{
		X:         x,
		Y:         y,
		Label:     label,
		Fill:      pal.Fill,
		Halo:      pal.Halo,
		ShowLabel: s.visible[s.phase][idx],
	})
	if err != nil {
		s.points[s.phase] = seq
		return PlaceResult{}, fmt.Errorf("failed to paint marker: %w", err)
	}

	s.logger.Debug("point placed", "phase", s.phase, "index", idx, "label", label, "x", x, "y", y)
	return PlaceResult{Point: pt, Index: idx, Phase: s.phase, Placed: true}, nil
}

// ToggleLabelVisibility flips the label flag of landmark index in phase and
// returns the new value. The canvas is not repainted.
func (s *Session) ToggleLabelVisibility(phase Phase, index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(phase) < 0 || int(phase) >= s.variant.Phases {
		return false, fmt.Errorf("%w: %s", ErrInvalidPhase, phase)
	}
	if index < 0 || index >= len(s.visible[phase]) {
		return false, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	if index >= len(s.points[phase]) {
		return false, fmt.Errorf("%w: %d", ErrLandmarkNotPlaced, index)
	}

	next := slices.Clone(s.visible[phase])
	next[index] = !next[index]
	s.visible[phase] = next

	s.logger.Debug("label visibility toggled", "phase", phase, "index", index, "visible", next[index])
	return next[index], nil
}

// CommitLine draws the line through the active phase's points and repaints
// every marker without its label. In the comparison variant the first
// commit advances to the Actual phase. It returns the committed phase.
func (s *Session) CommitLine() (Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doneLocked() {
		return s.phase, ErrAlreadyCommitted
	}
	if len(s.points[s.phase]) < 2 {
		return s.phase, fmt.Errorf("%w: have %d", ErrInsufficientPoints, len(s.points[s.phase]))
	}

	committed := s.phase
	s.committed[committed] = true
	if err := s.repaintLocked(); err != nil {
		s.committed[committed] = false
		return committed, err
	}
	if int(committed)+1 < s.variant.Phases {
		s.phase = committed + 1
	}

	s.logger.Info("line committed", "phase", committed, "points", len(s.points[committed]))
	return committed, nil
}

// Reset clears all points, labels and lines. The radiograph and region are
// kept.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("session reset")
	return s.resetLocked()
}

// SetRegion switches the landmark list and resets the session.
func (s *Session) SetRegion(region landmarks.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.Has(region) {
		return fmt.Errorf("%w: %q", landmarks.ErrUnknownRegion, region)
	}
	s.region = region
	s.logger.Info("region changed", "region", region, "landmarks", s.registry.Count(region))
	return s.resetLocked()
}

// BeginLoad starts a radiograph load. Only the bitmap of the most recent
// load is accepted by ApplyBitmap.
func (s *Session) BeginLoad() Generation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	return s.gen
}

// ApplyBitmap installs a decoded radiograph, resizes the canvas to it and
// resets the session. A failed decode should simply not call ApplyBitmap;
// the previous state then stays intact.
func (s *Session) ApplyBitmap(gen Generation, bmp *imaging.Bitmap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return fmt.Errorf("%w: load %d, latest %d", ErrStaleLoad, gen, s.gen)
	}
	if bmp == nil {
		return fmt.Errorf("nil bitmap")
	}
	if err := s.surface.Resize(bmp.Width, bmp.Height); err != nil {
		return fmt.Errorf("failed to resize canvas: %w", err)
	}
	s.bitmap = bmp

	s.logger.Info("radiograph loaded", "width", bmp.Width, "height", bmp.Height)
	return s.resetLocked()
}

// Bitmap returns the loaded radiograph, or nil.
func (s *Session) Bitmap() *imaging.Bitmap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bitmap
}

// Canvas returns a copy of the current canvas.
func (s *Session) Canvas() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.Image()
}

// CanExport reports whether the final line is committed.
func (s *Session) CanExport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doneLocked()
}

// ExportImage returns the canvas for export, or ErrNotCommitted.
func (s *Session) ExportImage() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.doneLocked() {
		return nil, ErrNotCommitted
	}
	return s.surface.Image(), nil
}

func (s *Session) doneLocked() bool {
	return s.committed[s.variant.Phases-1]
}

func (s *Session) resetLocked() error {
	n := s.registry.Count(s.region)
	for p := range s.points {
		s.points[p] = nil
		s.visible[p] = nil
		if p < s.variant.Phases {
			vis := make([]bool, n)
			for i := range vis {
				vis[i] = true
			}
			s.visible[p] = vis
		}
	}
	s.committed = [2]bool{}
	s.phase = Reference

	if err := s.surface.PaintBase(s.bitmap); err != nil {
		return fmt.Errorf("failed to paint canvas: %w", err)
	}
	return nil
}

// repaintLocked redraws the canvas from the radiograph: every committed
// line, then the markers of every committed phase without labels.
func (s *Session) repaintLocked() error {
	if err := s.surface.PaintBase(s.bitmap); err != nil {
		return fmt.Errorf("failed to paint canvas: %w", err)
	}
	for p := 0; p < s.variant.Phases; p++ {
		if !s.committed[p] {
			continue
		}
		pal := PaletteFor(s.variant, Phase(p))
		line := render.Polyline{Color: pal.Line, Width: render.DefaultLineWidth}
		for _, pt := range s.points[p] {
			line.Points = append(line.Points, render.Point{X: pt.X, Y: pt.Y})
		}
		if err := s.surface.StrokePolyline(line); err != nil {
			return fmt.Errorf("failed to stroke line: %w", err)
		}
	}
	for p := 0; p < s.variant.Phases; p++ {
		if !s.committed[p] {
			continue
		}
		pal := PaletteFor(s.variant, Phase(p))
		for _, pt := range s.points[p] {
			err := s.surface.PaintMarker(render.Marker{X: pt.X, Y: pt.Y, Label: pt.Label, Fill: pal.Fill, Halo: pal.Halo})
			if err != nil {
				return fmt.Errorf("failed to paint marker: %w", err)
			}
		}
	}
	return nil
}
