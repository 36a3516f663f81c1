package preprocess

import (
	"bytes"
	"encoding/binary"
)

const (
	markerSOI  = 0xd8
	markerAPP1 = 0xe1
	markerSOS  = 0xda
)

var exifHeader = []byte("Exif\x00\x00")

// exifSegment returns the complete EXIF APP1 segment (marker and length
// included) of a JPEG, or nil if data is not a JPEG or carries no EXIF.
func exifSegment(data []byte) []byte {
	if len(data) < 4 || data[0] != 0xff || data[1] != markerSOI {
		return nil
	}

	for i := 2; i+4 <= len(data); {
		if data[i] != 0xff {
			return nil
		}
		marker := data[i+1]
		if marker == 0xff {
			// fill byte
			i++
			continue
		}
		if marker == markerSOS {
			return nil
		}

		size := int(binary.BigEndian.Uint16(data[i+2:]))
		end := i + 2 + size
		if size < 2 || end > len(data) {
			return nil
		}
		if marker == markerAPP1 && bytes.HasPrefix(data[i+4:end], exifHeader) {
			return data[i:end]
		}
		i = end
	}
	return nil
}

func insertAfterSOI(jpg, seg []byte) []byte {
	out := make([]byte, 0, len(jpg)+len(seg))
	out = append(out, jpg[:2]...)
	out = append(out, seg...)
	return append(out, jpg[2:]...)
}
