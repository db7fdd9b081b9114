// Package render draws the annotation canvas: the radiograph as a base
// layer, glowing landmark markers with their labels, and committed lines.
//
// Surface is implemented by Canvas, which rasterises with gogpu/gg, and by
// Recorder, which keeps the display list so callers can inspect exactly
// what was painted.
package render

import (
	"image"
	"image/color"

	"github.com/ironsheep/chiroplot-mcp/internal/imaging"
)

// DefaultWidth and DefaultHeight size the canvas before any radiograph is
// loaded.
const (
	DefaultWidth  = 320
	DefaultHeight = 320
)

// Marker geometry, in canvas pixels.
const (
	MarkerRadius = 2.0
	GlowRadius   = 8.0
	LabelOffsetX = 12.0
	LabelOffsetY = -12.0
	LabelSize    = 14.0
	LabelOpacity = 0.85
)

// DefaultLineWidth is the stroke width of a committed line.
const DefaultLineWidth = 2.0

// Point is a canvas coordinate.
type Point struct {
	X float64
	Y float64
}

// Marker is one landmark dot. Fill colours the dot and label text, Halo the
// glow and the label outline.
type Marker struct {
	X         float64
	Y         float64
	Label     string
	Fill      color.NRGBA
	Halo      color.NRGBA
	ShowLabel bool
}

// Polyline is a line through Points in order, drawn as straight segments.
type Polyline struct {
	Points []Point
	Color  color.NRGBA
	Width  float64
}

// Surface is the drawing target of an annotation session.
type Surface interface {
	// Resize changes the canvas dimensions, discarding its content.
	Resize(width, height int) error
	// PaintBase clears the canvas and draws bmp at the origin. A nil bitmap
	// leaves the canvas blank.
	PaintBase(bmp *imaging.Bitmap) error
	PaintMarker(m Marker) error
	StrokePolyline(p Polyline) error
	// Size returns the current canvas dimensions.
	Size() (width, height int)
	// Image returns a copy of the current canvas.
	Image() image.Image
}
