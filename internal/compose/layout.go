package compose

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/matjam/inkyslide/internal/types"
	"golang.org/x/image/font"
)

type line struct {
	text string
	face font.Face
}

// block is a stack of text lines drawn on one white box.
type block struct {
	lines []line
	gap   int // vertical space between lines
}

func lineHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

// size is the extent of the text only, without the background padding.
func (b block) size() (w, h int) {
	for i, l := range b.lines {
		w = max(w, font.MeasureString(l.face, l.text).Ceil())
		h += lineHeight(l.face)
		if i > 0 {
			h += b.gap
		}
	}
	return w, h
}

// BoxOrigin returns where the text of a w x h block starts when the block is
// anchored at corner, keeping margin plus pad away from the canvas edges.
func BoxOrigin(corner types.Corner, canvasW, canvasH, w, h, margin, pad int) image.Point {
	x := margin + pad
	if corner.Right() {
		x = canvasW - w - margin - pad
	}
	y := margin + pad
	if corner.Bottom() {
		y = canvasH - h - margin - pad
	}
	return image.Pt(x, y)
}

// drawBlock paints the white background and the lines, and returns the
// background rectangle.
func drawBlock(dc *gg.Context, b block, corner types.Corner, margin, pad int) image.Rectangle {
	w, h := b.size()
	origin := BoxOrigin(corner, dc.Width(), dc.Height(), w, h, margin, pad)
	bg := image.Rect(origin.X-pad, origin.Y-pad, origin.X+w+pad, origin.Y+h+pad)

	dc.SetColor(color.White)
	dc.DrawRectangle(float64(bg.Min.X), float64(bg.Min.Y), float64(bg.Dx()), float64(bg.Dy()))
	dc.Fill()

	dc.SetColor(color.Black)
	y := origin.Y
	for _, l := range b.lines {
		dc.SetFontFace(l.face)
		dc.DrawString(l.text, float64(origin.X), float64(y+l.face.Metrics().Ascent.Ceil()))
		y += lineHeight(l.face) + b.gap
	}

	return bg
}
