package compose

import (
	"image"

	"github.com/disintegration/imaging"
)

// CoverSize returns the size a srcW x srcH image has to be resized to so
// that it covers targetW x targetH with its aspect ratio kept. Wider images
// are scaled by height, taller ones by width.
func CoverSize(srcW, srcH, targetW, targetH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return targetW, targetH
	}

	imgRatio := float64(srcW) / float64(srcH)
	targetRatio := float64(targetW) / float64(targetH)

	var w, h int
	if imgRatio > targetRatio {
		h = targetH
		w = int(float64(targetH) * imgRatio)
	} else {
		w = targetW
		h = int(float64(targetW) / imgRatio)
	}

	// float truncation must never leave a gap
	return max(w, targetW), max(h, targetH)
}

// CoverFit resizes img with a Lanczos filter so it covers the target box and
// crops the centre to exactly targetW x targetH.
func CoverFit(img image.Image, targetW, targetH int) *image.NRGBA {
	b := img.Bounds()
	w, h := CoverSize(b.Dx(), b.Dy(), targetW, targetH)

	resized := imaging.Resize(img, w, h, imaging.Lanczos)
	return imaging.CropCenter(resized, targetW, targetH)
}

// Enhance applies a contrast factor the way photo editors express it:
// 1.0 leaves the image unchanged, 1.1 is ten percent more contrast.
func Enhance(img image.Image, factor float64) *image.NRGBA {
	if factor == 1 {
		return imaging.Clone(img)
	}
	return imaging.AdjustContrast(img, (factor-1)*100)
}

// Opaque converts img to NRGBA and drops any alpha channel, keeping the
// colour values of transparent pixels as they are.
func Opaque(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
