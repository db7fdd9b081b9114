package imaging

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeJPEG(t *testing.T) {
	img := createInMemoryImage(64, 48, color.RGBA{200, 30, 30, 255})

	data, err := EncodeJPEG(img, DefaultJPEGQuality)
	if err != nil {
		t.Fatalf("EncodeJPEG failed: %v", err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Fatal("output does not start with a JPEG SOI marker")
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg.Decode failed: %v", err)
	}
	if decoded.Bounds().Dx() != 64 || decoded.Bounds().Dy() != 48 {
		t.Errorf("dimensions: got %v, want 64x48", decoded.Bounds())
	}
}

func TestEncodeJPEG_QualityOutOfRange(t *testing.T) {
	img := createInMemoryImage(8, 8, color.White)
	for _, q := range []int{0, -5, 101} {
		if _, err := EncodeJPEG(img, q); err != nil {
			t.Errorf("EncodeJPEG(quality=%d) failed: %v", q, err)
		}
	}
}

func TestEncodePDF(t *testing.T) {
	for _, size := range [][2]int{{320, 320}, {200, 400}, {400, 200}} {
		img := createInMemoryImage(size[0], size[1], color.Gray{128})

		data, err := EncodePDF(img, DefaultJPEGQuality)
		if err != nil {
			t.Fatalf("EncodePDF(%dx%d) failed: %v", size[0], size[1], err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			t.Errorf("EncodePDF(%dx%d): output is not a PDF", size[0], size[1])
		}
	}
}

func TestNewExportResult_Inline(t *testing.T) {
	img := createInMemoryImage(10, 5, color.White)
	data := []byte{1, 2, 3}

	res, err := NewExportResult(img, data, "image/jpeg", JPEGFileName, "")
	if err != nil {
		t.Fatalf("NewExportResult failed: %v", err)
	}
	if res.Width != 10 || res.Height != 5 || res.SizeBytes != 3 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Path != "" {
		t.Errorf("Path should be empty, got %q", res.Path)
	}
	if res.Base64 != base64.StdEncoding.EncodeToString(data) {
		t.Errorf("Base64 mismatch: %q", res.Base64)
	}
}

func TestNewExportResult_WritesFile(t *testing.T) {
	img := createInMemoryImage(10, 5, color.White)
	dir := filepath.Join(t.TempDir(), "exports")
	data := []byte("%PDF-1.3 test")

	res, err := NewExportResult(img, data, "application/pdf", PDFFileName, dir)
	if err != nil {
		t.Fatalf("NewExportResult failed: %v", err)
	}
	if res.Base64 != "" {
		t.Error("Base64 should be empty when writing to a directory")
	}
	if res.Path != filepath.Join(dir, PDFFileName) {
		t.Errorf("Path: got %q", res.Path)
	}

	written, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !bytes.Equal(written, data) {
		t.Error("written export does not match data")
	}
}
