package imaging

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var errEmptyColor = errors.New("empty color string")

// ParseHexColor parses "#RGB", "#RRGGBB" or "#RRGGBBAA" (the leading '#' is
// optional) into a non-premultiplied color.
func ParseHexColor(hex string) (color.NRGBA, error) {
	if hex == "" {
		return color.NRGBA{}, errEmptyColor
	}
	hex = strings.TrimPrefix(hex, "#")

	alpha := uint8(255)
	if len(hex) == 8 {
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in %q: %w", hex, err)
		}
		alpha = uint8(a)
		hex = hex[:6]
	}
	if len(hex) != 3 && len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color length: %q", hex)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// IntensitySample is the grayscale value of the loaded radiograph at a point.
type IntensitySample struct {
	Label     string `json:"label,omitempty"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Intensity uint8  `json:"intensity"`
	Hex       string `json:"hex"`
}

// LabeledPoint is a pixel coordinate with an optional label.
type LabeledPoint struct {
	X     int
	Y     int
	Label string
}

// SampleIntensities reads the bitmap at every point, in input order. Any
// point outside the bitmap fails the whole call.
func SampleIntensities(bmp *Bitmap, points []LabeledPoint) ([]IntensitySample, error) {
	out := make([]IntensitySample, 0, len(points))
	for _, p := range points {
		v, err := bmp.At(p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		out = append(out, IntensitySample{
			Label:     p.Label,
			X:         p.X,
			Y:         p.Y,
			Intensity: v,
			Hex:       fmt.Sprintf("#%02X%02X%02X", v, v, v),
		})
	}
	return out, nil
}
