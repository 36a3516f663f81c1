package display

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Spectra6 is the colour set of the Spectra 6 e-paper film, in the order of
// spectraCodes.
var Spectra6 = color.Palette{
	color.RGBA{0x00, 0x00, 0x00, 0xff}, // black
	color.RGBA{0xff, 0xff, 0xff, 0xff}, // white
	color.RGBA{0xff, 0xff, 0x00, 0xff}, // yellow
	color.RGBA{0xff, 0x00, 0x00, 0xff}, // red
	color.RGBA{0x00, 0x00, 0xff, 0xff}, // blue
	color.RGBA{0x00, 0xff, 0x00, 0xff}, // green
}

// spectraCodes maps a Spectra6 index to the controller's pixel code. Code 4
// is unused by the film.
var spectraCodes = [...]byte{0, 1, 2, 3, 5, 6}

// Quantize maps img onto the Spectra 6 colours with Floyd-Steinberg error
// diffusion.
func Quantize(img image.Image) *image.Paletted {
	b := img.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), Spectra6)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), img, b.Min)
	return dst
}

// PackRotated turns a quantized landscape frame into the controller's
// portrait scan order: the frame is turned a quarter clockwise so every row
// of the result is one source column read bottom to top, and two pixels are
// packed per byte, high nibble first.
func PackRotated(p *image.Paletted) ([]byte, error) {
	w, h := p.Rect.Dx(), p.Rect.Dy()
	if h%2 != 0 {
		return nil, fmt.Errorf("frame height %d is not even", h)
	}

	rowBytes := h / 2
	out := make([]byte, w*rowBytes)
	for x := 0; x < w; x++ {
		row := out[x*rowBytes : (x+1)*rowBytes]
		for i := range row {
			hi := spectraCodes[p.ColorIndexAt(x, h-1-2*i)]
			lo := spectraCodes[p.ColorIndexAt(x, h-2-2*i)]
			row[i] = hi<<4 | lo
		}
	}
	return out, nil
}
