package render

import (
	"errors"
	"image"
	"image/draw"
	"slices"

	"github.com/ironsheep/chiroplot-mcp/internal/imaging"
)

// Recorder is a Surface that keeps the display list instead of pixels.
// Every PaintBase starts a new frame.
type Recorder struct {
	width  int
	height int

	// Base is the bitmap of the current frame, nil when blank.
	Base      *imaging.Bitmap
	Markers   []Marker
	Polylines []Polyline
	// Frames counts PaintBase calls.
	Frames int
}

// NewRecorder creates a recorder with the given canvas size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height}
}

// Resize implements Surface.
func (r *Recorder) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New("invalid dimensions")
	}
	r.width, r.height = width, height
	r.Base = nil
	r.Markers = nil
	r.Polylines = nil
	return nil
}

// Size implements Surface.
func (r *Recorder) Size() (int, int) {
	return r.width, r.height
}

// PaintBase implements Surface.
func (r *Recorder) PaintBase(bmp *imaging.Bitmap) error {
	r.Base = bmp
	r.Markers = nil
	r.Polylines = nil
	r.Frames++
	return nil
}

// PaintMarker implements Surface.
func (r *Recorder) PaintMarker(m Marker) error {
	r.Markers = append(r.Markers, m)
	return nil
}

// StrokePolyline implements Surface.
func (r *Recorder) StrokePolyline(p Polyline) error {
	p.Points = slices.Clone(p.Points)
	r.Polylines = append(r.Polylines, p)
	return nil
}

// Image implements Surface. Only the base layer is rasterised.
func (r *Recorder) Image() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	if r.Base != nil {
		draw.Draw(img, img.Bounds(), r.Base.Image(), image.Point{}, draw.Src)
	}
	return img
}
