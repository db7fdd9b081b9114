package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ErrDecode wraps every failure to turn a file into a Bitmap.
var ErrDecode = errors.New("DICOM decode failed")

// Decode parses a DICOM stream and returns its first frame as a Bitmap.
//
// Width comes from Columns (0028,0011), height from Rows (0028,0010) and the
// samples from Pixel Data (7FE0,0010), one byte per sample. Samples stored
// with more than 8 bits are rescaled linearly onto 0-255. Encapsulated
// (compressed) transfer syntaxes are rejected.
func Decode(raw []byte) (*Bitmap, error) {
	ds, err := dicom.Parse(bytes.NewReader(raw), int64(len(raw)), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	width, err := intElement(ds, tag.Columns)
	if err != nil {
		return nil, err
	}
	height, err := intElement(ds, tag.Rows)
	if err != nil {
		return nil, err
	}

	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("%w: missing pixel data: %v", ErrDecode, err)
	}
	info, ok := el.Value.GetValue().(dicom.PixelDataInfo)
	if !ok || len(info.Frames) == 0 {
		return nil, fmt.Errorf("%w: pixel data holds no frames", ErrDecode)
	}
	fr := info.Frames[0]
	if fr.Encapsulated {
		return nil, fmt.Errorf("%w: compressed pixel data is not supported", ErrDecode)
	}

	samples := toBytes(fr.NativeData.Data, fr.NativeData.BitsPerSample)
	bmp, err := NewBitmap(width, height, samples)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return bmp, nil
}

// ReadFile reads the raw bytes of path. It is the only blocking step of a
// load, so it honours ctx before and after the read.
func ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return raw, nil
}

func intElement(ds dicom.Dataset, t tag.Tag) (int, error) {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return 0, fmt.Errorf("%w: missing %s: %v", ErrDecode, t, err)
	}
	ints, ok := el.Value.GetValue().([]int)
	if !ok || len(ints) == 0 {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrDecode, t)
	}
	return ints[0], nil
}

// toBytes flattens native frame data (one slice per pixel, first sample
// used) to one byte per pixel.
func toBytes(data [][]int, bitsPerSample int) []uint8 {
	out := make([]uint8, len(data))
	if bitsPerSample <= 8 {
		for i, px := range data {
			if len(px) > 0 {
				out[i] = uint8(px[0])
			}
		}
		return out
	}

	lo, hi, seen := 0, 0, false
	for _, px := range data {
		if len(px) == 0 {
			continue
		}
		if !seen || px[0] < lo {
			lo = px[0]
		}
		if !seen || px[0] > hi {
			hi = px[0]
		}
		seen = true
	}
	span := hi - lo
	if span == 0 {
		return out
	}
	for i, px := range data {
		if len(px) > 0 {
			out[i] = uint8((px[0] - lo) * 255 / span)
		}
	}
	return out
}
