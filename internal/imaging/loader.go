package imaging

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// BitmapCache provides thread-safe caching of decoded radiographs to avoid
// redundant disk reads and DICOM parsing.
//
// Entries are keyed by the exact path string and remember the file's size and
// modification time; a file that changed on disk since it was cached is
// decoded again on the next Load.
//
// # Example Usage
//
//	cache := imaging.NewBitmapCache()
//	bmp, err := cache.Load(ctx, "/path/to/study.dcm")
//	if err != nil {
//	    return err
//	}
//	cache.Evict("/path/to/study.dcm") // Optional: free memory
type BitmapCache struct {
	mu      sync.RWMutex
	bitmaps map[string]cachedBitmap
}

type cachedBitmap struct {
	bitmap  *Bitmap
	size    int64
	modTime time.Time
}

// NewBitmapCache creates an empty cache ready for concurrent use.
func NewBitmapCache() *BitmapCache {
	return &BitmapCache{
		bitmaps: make(map[string]cachedBitmap),
	}
}

// Load returns the decoded bitmap for path, reading and decoding the file if
// it is not cached or has changed on disk.
//
// # Errors
//
//   - the file does not exist or cannot be read
//   - the file is not a DICOM stream this package can decode (wraps ErrDecode)
//   - ctx was cancelled before the read completed
func (c *BitmapCache) Load(ctx context.Context, path string) (*Bitmap, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	c.mu.RLock()
	entry, ok := c.bitmaps[path]
	c.mu.RUnlock()
	if ok && entry.size == stat.Size() && entry.modTime.Equal(stat.ModTime()) {
		return entry.bitmap, nil
	}

	raw, err := ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	bmp, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.bitmaps[path] = cachedBitmap{bitmap: bmp, size: stat.Size(), modTime: stat.ModTime()}
	c.mu.Unlock()

	return bmp, nil
}

// Clear removes all bitmaps from the cache.
func (c *BitmapCache) Clear() {
	c.mu.Lock()
	c.bitmaps = make(map[string]cachedBitmap)
	c.mu.Unlock()
}

// Evict removes a specific bitmap from the cache. Unknown paths are ignored.
func (c *BitmapCache) Evict(path string) {
	c.mu.Lock()
	delete(c.bitmaps, path)
	c.mu.Unlock()
}

// Len reports the number of cached bitmaps.
func (c *BitmapCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bitmaps)
}

// BitmapInfo describes a loaded radiograph.
type BitmapInfo struct {
	// Width is the bitmap width in pixels (DICOM Columns).
	Width int `json:"width"`

	// Height is the bitmap height in pixels (DICOM Rows).
	Height int `json:"height"`

	// Format is always "dicom".
	Format string `json:"format"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Info summarises bmp as read from path.
func Info(bmp *Bitmap, path string) (*BitmapInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return &BitmapInfo{
		Width:         bmp.Width,
		Height:        bmp.Height,
		Format:        "dicom",
		FileSizeBytes: stat.Size(),
	}, nil
}
