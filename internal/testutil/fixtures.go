// Package testutil builds image fixtures shared by the package tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Solid returns a w x h image filled with c.
func Solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// WritePNG encodes img as PNG into dir/name and returns the path.
func WritePNG(t testing.TB, dir, name string, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return write(t, dir, name, buf.Bytes())
}

// WriteJPEG encodes img as JPEG into dir/name. A non-zero taken time is
// stored as EXIF DateTimeOriginal.
func WriteJPEG(t testing.TB, dir, name string, img image.Image, taken time.Time) string {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	data := buf.Bytes()
	if !taken.IsZero() {
		data = withAPP1(data, ExifPayload(taken))
	}
	return write(t, dir, name, data)
}

func write(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ExifPayload returns an APP1 payload ("Exif\0\0" + big-endian TIFF) holding
// only an Exif IFD with DateTimeOriginal.
func ExifPayload(taken time.Time) []byte {
	const (
		ifd0Offset    = 8
		exifIFDOffset = ifd0Offset + 2 + 12 + 4
		dateOffset    = exifIFDOffset + 2 + 12 + 4
	)
	date := append([]byte(taken.Format("2006:01:02 15:04:05")), 0)

	var tiff bytes.Buffer
	be := binary.BigEndian
	tiff.WriteString("MM")
	binary.Write(&tiff, be, uint16(42))
	binary.Write(&tiff, be, uint32(ifd0Offset))

	// IFD0: pointer to the Exif IFD
	binary.Write(&tiff, be, uint16(1))
	binary.Write(&tiff, be, uint16(0x8769))
	binary.Write(&tiff, be, uint16(4))
	binary.Write(&tiff, be, uint32(1))
	binary.Write(&tiff, be, uint32(exifIFDOffset))
	binary.Write(&tiff, be, uint32(0))

	// Exif IFD: DateTimeOriginal
	binary.Write(&tiff, be, uint16(1))
	binary.Write(&tiff, be, uint16(0x9003))
	binary.Write(&tiff, be, uint16(2))
	binary.Write(&tiff, be, uint32(len(date)))
	binary.Write(&tiff, be, uint32(dateOffset))
	binary.Write(&tiff, be, uint32(0))

	tiff.Write(date)

	return append([]byte("Exif\x00\x00"), tiff.Bytes()...)
}

// withAPP1 inserts an APP1 segment right after the SOI marker.
func withAPP1(jpg, payload []byte) []byte {
	seg := []byte{0xff, 0xe1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out := make([]byte, 0, len(jpg)+len(seg))
	out = append(out, jpg[:2]...)
	out = append(out, seg...)
	return append(out, jpg[2:]...)
}
