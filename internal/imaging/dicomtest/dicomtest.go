// Package dicomtest builds minimal DICOM files for tests.
package dicomtest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Build assembles a minimal explicit-VR little-endian DICOM stream with
// a single MONOCHROME2 frame. bits is 8 or 16; samples holds one value per
// pixel in row-major order.
func Build(rows, cols, bits int, samples []int) []byte {
	var ds bytes.Buffer
	writeShort(&ds, 0x0028, 0x0002, "US", u16(1))
	writeShort(&ds, 0x0028, 0x0004, "CS", []byte("MONOCHROME2 "))
	writeShort(&ds, 0x0028, 0x0010, "US", u16(rows))
	writeShort(&ds, 0x0028, 0x0011, "US", u16(cols))
	writeShort(&ds, 0x0028, 0x0100, "US", u16(bits))
	writeShort(&ds, 0x0028, 0x0101, "US", u16(bits))
	writeShort(&ds, 0x0028, 0x0102, "US", u16(bits-1))
	writeShort(&ds, 0x0028, 0x0103, "US", u16(0))

	var pix bytes.Buffer
	for _, s := range samples {
		if bits == 8 {
			pix.WriteByte(byte(s))
		} else {
			pix.Write(u16(s))
		}
	}
	if pix.Len()%2 == 1 {
		pix.WriteByte(0)
	}
	vr := "OB"
	if bits > 8 {
		vr = "OW"
	}
	writeLong(&ds, 0x7FE0, 0x0010, vr, pix.Bytes())

	var meta bytes.Buffer
	writeLong(&meta, 0x0002, 0x0001, "OB", []byte{0x00, 0x01})
	writeShort(&meta, 0x0002, 0x0010, "UI", []byte("1.2.840.10008.1.2.1\x00"))

	var out bytes.Buffer
	out.Write(make([]byte, 128))
	out.WriteString("DICM")
	writeShort(&out, 0x0002, 0x0000, "UL", u32(meta.Len()))
	out.Write(meta.Bytes())
	out.Write(ds.Bytes())
	return out.Bytes()
}

func writeShort(buf *bytes.Buffer, group, element uint16, vr string, value []byte) {
	_ = binary.Write(buf, binary.LittleEndian, group)
	_ = binary.Write(buf, binary.LittleEndian, element)
	buf.WriteString(vr)
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(value)))
	buf.Write(value)
}

func writeLong(buf *bytes.Buffer, group, element uint16, vr string, value []byte) {
	_ = binary.Write(buf, binary.LittleEndian, group)
	_ = binary.Write(buf, binary.LittleEndian, element)
	buf.WriteString(vr)
	buf.Write([]byte{0, 0})
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(value)))
	buf.Write(value)
}

func u16(v int) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(v))
	return b
}

func u32(v int) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

// WriteFile writes an 8-bit gradient study into t.TempDir() and returns its
// path.
func WriteFile(t testing.TB, rows, cols int) string {
	t.Helper()
	samples := make([]int, rows*cols)
	for i := range samples {
		samples[i] = i % 256
	}
	path := filepath.Join(t.TempDir(), "study.dcm")
	if err := os.WriteFile(path, Build(rows, cols, 8, samples), 0o644); err != nil {
		t.Fatalf("failed to write DICOM file: %v", err)
	}
	return path
}
