package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// Region is a rectangle on the canvas: (X1,Y1) inclusive, (X2,Y2) exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// SnapshotResult is a PNG rendition of (part of) the canvas.
type SnapshotResult struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	OffsetX     int     `json:"offset_x"`
	OffsetY     int     `json:"offset_y"`
	Scale       float64 `json:"scale"`
	ImageBase64 string  `json:"image_base64"`
	MimeType    string  `json:"mime_type"`
}

// Snapshot encodes img as PNG, optionally cut down to region and resized by
// scale. OffsetX/OffsetY report where the snapshot starts on the canvas so a
// caller can map snapshot pixels back to canvas coordinates:
// canvasX = OffsetX + snapX/Scale.
func Snapshot(img image.Image, region *Region, scale float64) (*SnapshotResult, error) {
	bounds := img.Bounds()
	out := img
	offX, offY := 0, 0

	if region != nil {
		if region.X1 < bounds.Min.X || region.Y1 < bounds.Min.Y || region.X2 > bounds.Max.X || region.Y2 > bounds.Max.Y {
			return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside canvas bounds (%d,%d)-(%d,%d)",
				region.X1, region.Y1, region.X2, region.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
		}
		if region.X1 >= region.X2 || region.Y1 >= region.Y2 {
			return nil, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
		}
		out = imaging.Crop(img, image.Rect(region.X1, region.Y1, region.X2, region.Y2))
		offX, offY = region.X1, region.Y1
	}

	if scale <= 0 {
		scale = 1.0
	}
	if scale != 1.0 {
		newWidth := int(float64(out.Bounds().Dx()) * scale)
		newHeight := int(float64(out.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %.3f collapses snapshot to nothing", scale)
		}
		out = imaging.Resize(out, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return &SnapshotResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		OffsetX:     offX,
		OffsetY:     offY,
		Scale:       scale,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// QuadrantRegion resolves a named area of a width x height canvas
// (top-left, top-right, bottom-left, bottom-right, top-half, bottom-half,
// left-half, right-half, center).
func QuadrantRegion(name string, width, height int) (*Region, error) {
	midX := width / 2
	midY := height / 2

	switch name {
	case "top-left":
		return &Region{0, 0, midX, midY}, nil
	case "top-right":
		return &Region{midX, 0, width, midY}, nil
	case "bottom-left":
		return &Region{0, midY, midX, height}, nil
	case "bottom-right":
		return &Region{midX, midY, width, height}, nil
	case "top-half":
		return &Region{0, 0, width, midY}, nil
	case "bottom-half":
		return &Region{0, midY, width, height}, nil
	case "left-half":
		return &Region{0, 0, midX, height}, nil
	case "right-half":
		return &Region{midX, 0, width, height}, nil
	case "center":
		qW, qH := width/4, height/4
		return &Region{qW, qH, width - qW, height - qH}, nil
	default:
		return nil, fmt.Errorf("unknown area: %s", name)
	}
}
