// Package compose turns a photo into a panel-sized frame: contrast, cover-fit,
// centre crop and the text overlays.
package compose

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/matjam/inkyslide/internal/types"
	"golang.org/x/image/font"
)

var ErrDecode = errors.New("cannot decode image")

type Options struct {
	FontPath      string
	FontSize      float64 // secondary lines, status block, badge
	DateFontSize  float64 // first line of the date block
	Margin        int     // distance of a box from the panel edge
	BackgroundPad int     // white space around the text inside a box
	TextPad       int     // space between lines
	Contrast      float64
	Variant       types.OverlayVariant
}

// Frame carries the per-cycle values shown in the overlays.
type Frame struct {
	Counter   int
	UpdatedAt time.Time // also the "now" that capture dates are compared to
	StartedAt time.Time
}

type Compositor struct {
	opts     Options
	rng      *rand.Rand
	logger   *log.Logger
	small    font.Face
	large    font.Face
	fallback bool
}

// New loads the overlay fonts. When the font cannot be loaded the built-in
// bitmap face is used instead and a warning is logged. A nil rng uses the
// global math/rand/v2 source.
func New(opts Options, rng *rand.Rand, logger *log.Logger) *Compositor {
	if logger == nil {
		logger = log.Default()
	}
	c := &Compositor{opts: opts, rng: rng, logger: logger}

	small, errSmall := loadFace(opts.FontPath, opts.FontSize)
	large, errLarge := loadFace(opts.FontPath, opts.DateFontSize)
	if err := errors.Join(errSmall, errLarge); err != nil {
		logger.Warn("Falling back to the default font", "font", opts.FontPath, "err", err)
		small, large = defaultFace(), defaultFace()
		c.fallback = true
	}
	c.small, c.large = small, large

	return c
}

// FontFallback reports whether the built-in face replaced the configured font.
func (c *Compositor) FontFallback() bool {
	return c.fallback
}

// Compose renders the photo at path into a width x height frame. It returns
// the corner the date box was drawn in.
func (c *Compositor) Compose(path string, width, height int, fr Frame) (frame *image.RGBA, corner types.Corner, err error) {
	defer func() {
		if r := recover(); r != nil {
			frame, corner = nil, ""
			err = fmt.Errorf("composing %s: %v", path, r)
		}
	}()

	src, err := imaging.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}

	fitted := CoverFit(Enhance(Opaque(src), c.opts.Contrast), width, height)

	frame = image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(frame, frame.Bounds(), fitted, fitted.Bounds().Min, draw.Src)

	dc := gg.NewContextForRGBA(frame)
	corner = c.pickCorner()

	capture := DescribeCapture(CaptureDate(path), fr.UpdatedAt)
	date := block{gap: c.opts.TextPad, lines: []line{
		{capture.Date, c.large},
		{capture.Elapsed, c.small},
	}}

	switch c.opts.Variant {
	case types.OverlayCounter:
		drawBlock(dc, date, corner, c.opts.Margin, c.opts.BackgroundPad)

		badge := block{lines: []line{{CounterBadge(fr.Counter), c.small}}}
		drawBlock(dc, badge, types.CornerBottomLeft, c.opts.Margin, c.opts.BackgroundPad)
	default:
		date.lines = append(date.lines, line{capture.DaysAgo, c.small})
		drawBlock(dc, date, corner, c.opts.Margin, c.opts.BackgroundPad)

		status := block{gap: c.opts.TextPad}
		for _, s := range StatusLines(fr.UpdatedAt, fr.StartedAt) {
			status.lines = append(status.lines, line{s, c.small})
		}
		drawBlock(dc, status, corner.Opposite(), c.opts.Margin, c.opts.BackgroundPad)
	}

	return frame, corner, nil
}

func (c *Compositor) pickCorner() types.Corner {
	if c.rng != nil {
		return types.Corners[c.rng.IntN(len(types.Corners))]
	}
	return types.Corners[rand.IntN(len(types.Corners))]
}
