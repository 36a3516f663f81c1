package compose

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

const exifDateLayout = "2006:01:02 15:04:05"

// CaptureDate reads DateTimeOriginal from the file's EXIF data. PNG files are
// not inspected. Any read or parse problem yields the zero time.
func CaptureDate(path string) time.Time {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return time.Time{}
	}

	f, err := os.Open(path)
	if err != nil {
		return time.Time{}
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}
	}

	raw, err := tag.StringVal()
	if err != nil {
		return time.Time{}
	}

	taken, err := time.ParseInLocation(exifDateLayout, strings.TrimSpace(strings.TrimRight(raw, "\x00")), time.Local)
	if err != nil {
		return time.Time{}
	}
	return taken
}
