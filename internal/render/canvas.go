package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/anthonynsimon/bild/blur"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/ironsheep/chiroplot-mcp/internal/imaging"
)

var labelFace = sync.OnceValues(func() (text.Face, error) {
	source, err := text.NewFontSource(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load label font: %w", err)
	}
	return source.Face(LabelSize), nil
})

// haloOffsets approximate a 2px text stroke.
var haloOffsets = [][2]float64{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Canvas is a raster Surface backed by a gogpu/gg context.
type Canvas struct {
	dc   *gg.Context
	face text.Face
}

// NewCanvas creates a blank canvas of the given size.
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	face, err := labelFace()
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(width, height)
	dc.Clear()
	return &Canvas{dc: dc, face: face}, nil
}

// Resize implements Surface.
func (c *Canvas) Resize(width, height int) error {
	if err := c.dc.Resize(width, height); err != nil {
		return err
	}
	c.dc.Clear()
	return nil
}

// Size implements Surface.
func (c *Canvas) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

// PaintBase implements Surface.
func (c *Canvas) PaintBase(bmp *imaging.Bitmap) error {
	c.dc.Clear()
	if bmp == nil {
		return nil
	}
	c.dc.DrawImage(gg.ImageBufFromImage(bmp.Image()), 0, 0)
	return nil
}

// PaintMarker implements Surface. The glow is a blurred disc in the halo
// colour composited under a solid dot in the fill colour.
func (c *Canvas) PaintMarker(m Marker) error {
	glow, origin := glowPatch(m.X, m.Y, m.Halo)
	c.dc.DrawImage(gg.ImageBufFromImage(glow), float64(origin.X), float64(origin.Y))

	setColor(c.dc, m.Fill)
	c.dc.DrawCircle(m.X, m.Y, MarkerRadius)
	if err := c.dc.Fill(); err != nil {
		return fmt.Errorf("failed to fill marker: %w", err)
	}

	if !m.ShowLabel || m.Label == "" {
		return nil
	}
	c.dc.SetFont(c.face)
	x, y := m.X+LabelOffsetX, m.Y+LabelOffsetY

	setColor(c.dc, m.Halo)
	for _, off := range haloOffsets {
		c.dc.DrawString(m.Label, x+off[0], y+off[1])
	}
	fill := m.Fill
	fill.A = uint8(math.Round(float64(fill.A) * LabelOpacity))
	setColor(c.dc, fill)
	c.dc.DrawString(m.Label, x, y)
	return nil
}

// StrokePolyline implements Surface. Fewer than two points draw nothing.
func (c *Canvas) StrokePolyline(p Polyline) error {
	if len(p.Points) < 2 {
		return nil
	}
	width := p.Width
	if width <= 0 {
		width = DefaultLineWidth
	}
	setColor(c.dc, p.Color)
	c.dc.SetLineWidth(width)
	c.dc.MoveTo(p.Points[0].X, p.Points[0].Y)
	for _, pt := range p.Points[1:] {
		c.dc.LineTo(pt.X, pt.Y)
	}
	if err := c.dc.Stroke(); err != nil {
		return fmt.Errorf("failed to stroke line: %w", err)
	}
	return nil
}

// Image implements Surface.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// setColor passes straight alpha through; gg.Context.SetColor would read
// the premultiplied components of an NRGBA.
func setColor(dc *gg.Context, c color.NRGBA) {
	dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

// glowPatch renders the blurred halo around (x, y) and returns it with the
// canvas position of its top-left corner.
func glowPatch(x, y float64, halo color.NRGBA) (*image.RGBA, image.Point) {
	half := int(math.Ceil(MarkerRadius + 2*GlowRadius))
	origin := image.Pt(int(math.Round(x))-half, int(math.Round(y))-half)

	patch := image.NewRGBA(image.Rect(0, 0, 2*half+1, 2*half+1))
	cx := x - float64(origin.X)
	cy := y - float64(origin.Y)
	disc := image.NewUniform(halo)
	r2 := (MarkerRadius + 1) * (MarkerRadius + 1)
	for py := 0; py < patch.Rect.Dy(); py++ {
		for px := 0; px < patch.Rect.Dx(); px++ {
			dx := float64(px) + 0.5 - cx
			dy := float64(py) + 0.5 - cy
			if dx*dx+dy*dy <= r2 {
				draw.Draw(patch, image.Rect(px, py, px+1, py+1), disc, image.Point{}, draw.Src)
			}
		}
	}
	return blur.Gaussian(patch, GlowRadius/2), origin
}
