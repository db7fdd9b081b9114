package imaging

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNewBitmapCache(t *testing.T) {
	cache := NewBitmapCache()
	if cache == nil {
		t.Fatal("NewBitmapCache returned nil")
	}
	if cache.bitmaps == nil {
		t.Fatal("NewBitmapCache did not initialize bitmaps map")
	}
}

func TestBitmapCache_Load(t *testing.T) {
	cache := NewBitmapCache()
	path := writeDICOMFile(t, 8, 10)

	bmp1, err := cache.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if bmp1.Width != 10 || bmp1.Height != 8 {
		t.Errorf("unexpected dimensions: got %dx%d, want 10x8", bmp1.Width, bmp1.Height)
	}

	// Second load should return cached bitmap
	bmp2, err := cache.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if bmp1 != bmp2 {
		t.Error("second Load did not return cached bitmap")
	}
}

func TestBitmapCache_Load_ChangedFile(t *testing.T) {
	cache := NewBitmapCache()
	path := writeDICOMFile(t, 4, 4)

	bmp1, err := cache.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	raw := buildDICOM(t, 2, 6, 8, make([]int, 12))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}
	future := time.Now().Add(time.Hour)
	_ = os.Chtimes(path, future, future)

	bmp2, err := cache.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load after change failed: %v", err)
	}
	if bmp1 == bmp2 || bmp2.Width != 6 {
		t.Error("changed file was served from cache")
	}
}

func TestBitmapCache_Load_NonExistent(t *testing.T) {
	cache := NewBitmapCache()
	_, err := cache.Load(context.Background(), "/nonexistent/path/to/study.dcm")
	if err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestBitmapCache_Load_InvalidFile(t *testing.T) {
	cache := NewBitmapCache()
	path := filepath.Join(t.TempDir(), "invalid.dcm")
	if err := os.WriteFile(path, []byte("not a dicom file"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := cache.Load(context.Background(), path); err == nil {
		t.Error("Load should fail for invalid DICOM data")
	}
	if cache.Len() != 0 {
		t.Error("failed decode must not be cached")
	}
}

func TestBitmapCache_ClearAndEvict(t *testing.T) {
	cache := NewBitmapCache()
	path := writeDICOMFile(t, 2, 2)

	if _, err := cache.Load(context.Background(), path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cache.Evict(path)
	if cache.Len() != 0 {
		t.Error("Evict did not remove bitmap from cache")
	}

	if _, err := cache.Load(context.Background(), path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Clear did not empty cache: %d bitmaps remain", cache.Len())
	}

	// Should not panic
	cache.Evict("/nonexistent/path")
}

func TestBitmapCache_ConcurrentAccess(t *testing.T) {
	cache := NewBitmapCache()
	path := writeDICOMFile(t, 16, 16)

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(context.Background(), path); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestInfo(t *testing.T) {
	path := writeDICOMFile(t, 6, 8)
	bmp, err := NewBitmapCache().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	info, err := Info(bmp, path)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Width != 8 || info.Height != 6 {
		t.Errorf("dimensions: got %dx%d, want 8x6", info.Width, info.Height)
	}
	if info.Format != "dicom" {
		t.Errorf("Format: got %s, want dicom", info.Format)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
}
