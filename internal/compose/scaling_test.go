package compose

import (
	"image"
	"image/color"
	"testing"

	"github.com/matjam/inkyslide/internal/testutil"
	"github.com/matjam/inkyslide/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestCoverSize(t *testing.T) {
	cases := []struct {
		srcW, srcH, dstW, dstH int
		wantW, wantH           int
	}{
		{4000, 3000, 1600, 1200, 1600, 1200}, // same aspect
		{4000, 2000, 1600, 1200, 2400, 1200}, // wider: scale by height
		{3000, 4000, 1600, 1200, 1600, 2133}, // taller: scale by width
		{800, 600, 1600, 1200, 1600, 1200},   // upscale
		{1000, 1000, 1600, 1200, 1600, 1600},
	}
	for _, tc := range cases {
		w, h := CoverSize(tc.srcW, tc.srcH, tc.dstW, tc.dstH)
		assert.Equal(t, tc.wantW, w, "%+v", tc)
		assert.Equal(t, tc.wantH, h, "%+v", tc)
		assert.GreaterOrEqual(t, w, tc.dstW)
		assert.GreaterOrEqual(t, h, tc.dstH)
	}
}

func TestCoverFitCropsCentre(t *testing.T) {
	// left third red, middle third green, right third blue
	src := image.NewRGBA(image.Rect(0, 0, 300, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 300; x++ {
			switch {
			case x < 100:
				src.Set(x, y, color.RGBA{255, 0, 0, 255})
			case x < 200:
				src.Set(x, y, color.RGBA{0, 255, 0, 255})
			default:
				src.Set(x, y, color.RGBA{0, 0, 255, 255})
			}
		}
	}

	out := CoverFit(src, 100, 100)
	assert.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds())

	c := out.NRGBAAt(50, 50)
	assert.Greater(t, c.G, uint8(200))
	assert.Less(t, c.R, uint8(50))
	assert.Less(t, c.B, uint8(50))
}

func TestOpaqueDropsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{10, 20, 30, 0})
	src.SetNRGBA(1, 0, color.NRGBA{40, 50, 60, 128})

	out := Opaque(src)
	assert.Equal(t, color.NRGBA{10, 20, 30, 255}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{40, 50, 60, 255}, out.NRGBAAt(1, 0))
}

func TestEnhanceIncreasesContrast(t *testing.T) {
	src := testutil.Solid(4, 4, color.RGBA{200, 200, 200, 255})

	same := Enhance(src, 1)
	assert.Equal(t, uint8(200), same.NRGBAAt(0, 0).R)

	more := Enhance(src, 1.1)
	assert.Greater(t, more.NRGBAAt(0, 0).R, uint8(200))
}

func TestBoxOrigin(t *testing.T) {
	const w, h, bw, bh, margin, pad = 1600, 1200, 300, 90, 25, 15

	assert.Equal(t, image.Pt(40, 40), BoxOrigin(types.CornerTopLeft, w, h, bw, bh, margin, pad))
	assert.Equal(t, image.Pt(1260, 40), BoxOrigin(types.CornerTopRight, w, h, bw, bh, margin, pad))
	assert.Equal(t, image.Pt(40, 1070), BoxOrigin(types.CornerBottomLeft, w, h, bw, bh, margin, pad))
	assert.Equal(t, image.Pt(1260, 1070), BoxOrigin(types.CornerBottomRight, w, h, bw, bh, margin, pad))
}
