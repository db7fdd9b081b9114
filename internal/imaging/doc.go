// Package imaging loads radiographs and turns the annotated canvas into
// documents and inspection images for the MCP server.
//
// Radiographs are decoded from DICOM into an 8-bit grayscale Bitmap. The
// BitmapCache keeps decoded files keyed by path and re-decodes when the file
// on disk changes.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// BitmapCache is safe for concurrent use. Bitmaps are never mutated after
// decoding and may be shared freely. Snapshot, GridOverlay and the encoders
// work on copies and never draw onto their input.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Coordinates outside the bitmap
//   - Invalid region specifications (x1 >= x2 or y1 >= y2)
//   - Files that are not decodable DICOM (wrapping ErrDecode)
//   - Encoding errors during JPEG or PDF output
package imaging
