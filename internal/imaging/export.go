package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
)

// DefaultJPEGQuality matches the 0.95 quality the annotated canvas has always
// been exported with.
const DefaultJPEGQuality = 95

// Export file names.
const (
	JPEGFileName = "clinical-analysis.jpg"
	PDFFileName  = "clinical-analysis.pdf"
)

// ExportResult describes an exported canvas.
type ExportResult struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	MimeType  string `json:"mime_type"`
	FileName  string `json:"file_name"`
	SizeBytes int    `json:"size_bytes"`

	// Base64 holds the encoded document unless it was written to Path.
	Base64 string `json:"base64,omitempty"`
	Path   string `json:"path,omitempty"`
}

// EncodeJPEG encodes img as a JPEG at the given quality (1-100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePDF renders img into a single-page landscape PDF. The page measures
// the canvas in points with its long side horizontal; the raster is embedded
// as a JPEG scaled to fit and centred.
func EncodePDF(img image.Image, quality int) ([]byte, error) {
	jpg, err := EncodeJPEG(img, quality)
	if err != nil {
		return nil, err
	}

	w := float64(img.Bounds().Dx())
	h := float64(img.Bounds().Dy())
	short, long := w, h
	if short > long {
		short, long = long, short
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: short, Ht: long},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	scale := pageW / w
	if s := pageH / h; s < scale {
		scale = s
	}
	dw, dh := w*scale, h*scale

	opts := fpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("canvas", opts, bytes.NewReader(jpg))
	pdf.ImageOptions("canvas", (pageW-dw)/2, (pageH-dh)/2, dw, dh, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// NewExportResult wraps data, either inline as base64 or written into dir
// when dir is non-empty.
func NewExportResult(img image.Image, data []byte, mimeType, fileName, dir string) (*ExportResult, error) {
	res := &ExportResult{
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
		MimeType:  mimeType,
		FileName:  fileName,
		SizeBytes: len(data),
	}
	if dir == "" {
		res.Base64 = base64.StdEncoding.EncodeToString(data)
		return res, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	res.Path = path
	return res, nil
}
