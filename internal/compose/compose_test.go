package compose

import (
	"image"
	"image/color"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/inkyslide/internal/testutil"
	"github.com/matjam/inkyslide/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dark = color.RGBA{R: 30, G: 60, B: 90, A: 255}

func testOptions(variant types.OverlayVariant) Options {
	return Options{
		FontPath:      "/nonexistent/DejaVuSans-Bold.ttf",
		FontSize:      20,
		DateFontSize:  24,
		Margin:        25,
		BackgroundPad: 15,
		TextPad:       12,
		Contrast:      1.1,
		Variant:       variant,
	}
}

func newTestCompositor(variant types.OverlayVariant, seed uint64) *Compositor {
	return New(testOptions(variant), rand.New(rand.NewPCG(seed, seed)), log.New(io.Discard))
}

func testFrame() Frame {
	now := time.Date(2025, 12, 7, 9, 15, 0, 0, time.Local)
	return Frame{Counter: 42, UpdatedAt: now, StartedAt: now.Add(-50 * time.Hour)}
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

// cornerSample is a pixel inside the background padding of a box anchored at
// corner, where no glyph is ever drawn.
func cornerSample(corner types.Corner, w, h, margin int) image.Point {
	x, y := margin+2, margin+2
	if corner.Right() {
		x = w - margin - 3
	}
	if corner.Bottom() {
		y = h - margin - 3
	}
	return image.Pt(x, y)
}

func TestComposeExactDimensionsForAnyAspect(t *testing.T) {
	dir := t.TempDir()
	c := newTestCompositor(types.OverlayStatus, 1)

	sources := map[string]image.Rectangle{
		"wide.png":   image.Rect(0, 0, 400, 100),
		"tall.png":   image.Rect(0, 0, 90, 300),
		"square.png": image.Rect(0, 0, 200, 200),
		"exact.png":  image.Rect(0, 0, 160, 120),
		"tiny.png":   image.Rect(0, 0, 3, 7),
	}

	for name, r := range sources {
		path := testutil.WritePNG(t, dir, name, testutil.Solid(r.Dx(), r.Dy(), dark))
		for _, size := range []image.Point{{800, 600}, {600, 800}, {250, 122}} {
			frame, _, err := c.Compose(path, size.X, size.Y, testFrame())
			require.NoError(t, err, name)
			assert.Equal(t, image.Rect(0, 0, size.X, size.Y), frame.Bounds(), "%s -> %v", name, size)
		}
	}
}

func TestComposeFallsBackToDefaultFont(t *testing.T) {
	c := newTestCompositor(types.OverlayStatus, 1)
	assert.True(t, c.FontFallback())
}

func TestComposeStatusVariantDrawsOppositeBoxes(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteJPEG(t, dir, "photo.jpg", testutil.Solid(640, 480, dark), time.Date(2024, 11, 2, 9, 15, 0, 0, time.Local))
	const w, h, margin = 800, 600, 25

	seen := map[types.Corner]bool{}
	c := newTestCompositor(types.OverlayStatus, 7)
	for range 40 {
		frame, corner, err := c.Compose(path, w, h, testFrame())
		require.NoError(t, err)
		seen[corner] = true

		p := cornerSample(corner, w, h, margin)
		assert.True(t, isWhite(frame.At(p.X, p.Y)), "date box missing at %s", corner)

		q := cornerSample(corner.Opposite(), w, h, margin)
		assert.True(t, isWhite(frame.At(q.X, q.Y)), "status box missing at %s", corner.Opposite())

		for _, other := range types.Corners {
			if other == corner || other == corner.Opposite() {
				continue
			}
			o := cornerSample(other, w, h, margin)
			assert.False(t, isWhite(frame.At(o.X, o.Y)), "unexpected box at %s", other)
		}
	}
	assert.Len(t, seen, 4, "every corner should be picked eventually")
}

func TestComposeCounterVariantBadgeStaysBottomLeft(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePNG(t, dir, "photo.png", testutil.Solid(300, 300, dark))
	const w, h, margin = 800, 600, 25

	c := newTestCompositor(types.OverlayCounter, 3)
	for range 20 {
		frame, corner, err := c.Compose(path, w, h, testFrame())
		require.NoError(t, err)

		badge := cornerSample(types.CornerBottomLeft, w, h, margin)
		assert.True(t, isWhite(frame.At(badge.X, badge.Y)))

		p := cornerSample(corner, w, h, margin)
		assert.True(t, isWhite(frame.At(p.X, p.Y)))

		if corner != types.CornerBottomLeft && corner.Opposite() != types.CornerBottomLeft {
			o := cornerSample(corner.Opposite(), w, h, margin)
			assert.False(t, isWhite(frame.At(o.X, o.Y)), "no status block in the counter variant")
		}
	}
}

func TestComposeDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a jpeg"), 0o644))

	c := newTestCompositor(types.OverlayStatus, 1)
	frame, _, err := c.Compose(path, 100, 100, testFrame())
	assert.ErrorIs(t, err, ErrDecode)
	assert.Nil(t, frame)

	_, _, err = c.Compose(filepath.Join(dir, "missing.jpg"), 100, 100, testFrame())
	assert.ErrorIs(t, err, ErrDecode)
}

func TestCaptureDate(t *testing.T) {
	dir := t.TempDir()
	taken := time.Date(2019, 8, 14, 17, 3, 21, 0, time.Local)

	withExif := testutil.WriteJPEG(t, dir, "exif.jpg", testutil.Solid(8, 8, dark), taken)
	assert.True(t, taken.Equal(CaptureDate(withExif)))

	withoutExif := testutil.WriteJPEG(t, dir, "plain.jpg", testutil.Solid(8, 8, dark), time.Time{})
	assert.True(t, CaptureDate(withoutExif).IsZero())

	asPNG := testutil.WritePNG(t, dir, "shot.PNG", testutil.Solid(8, 8, dark))
	assert.True(t, CaptureDate(asPNG).IsZero())

	assert.True(t, CaptureDate(filepath.Join(dir, "missing.jpg")).IsZero())
}
