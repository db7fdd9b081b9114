package imaging

import (
	"fmt"
	"image"
)

// Bitmap is a decoded grayscale radiograph: Width*Height intensity samples in
// row-major order. A Bitmap is never modified after decode; replacing it means
// decoding a new one.
type Bitmap struct {
	Width   int
	Height  int
	Samples []uint8
}

// NewBitmap wraps samples as a width x height bitmap. Surplus samples are
// dropped; too few samples is an error.
func NewBitmap(width, height int, samples []uint8) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid bitmap dimensions %dx%d", width, height)
	}
	n := width * height
	if len(samples) < n {
		return nil, fmt.Errorf("pixel data has %d samples, need %d for %dx%d", len(samples), n, width, height)
	}
	return &Bitmap{
		Width:   width,
		Height:  height,
		Samples: append([]uint8(nil), samples[:n]...),
	}, nil
}

// At returns the intensity at (x, y).
func (b *Bitmap) At(x, y int) (uint8, error) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return 0, fmt.Errorf("coordinates (%d,%d) outside bitmap bounds", x, y)
	}
	return b.Samples[y*b.Width+x], nil
}

// Image broadcasts the samples into an opaque RGBA image (R=G=B=sample,
// A=255), the form painted onto the canvas.
func (b *Bitmap) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, v := range b.Samples {
		img.Pix[i*4+0] = v
		img.Pix[i*4+1] = v
		img.Pix[i*4+2] = v
		img.Pix[i*4+3] = 255
	}
	return img
}
