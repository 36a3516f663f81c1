package display

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
)

// Null accepts frames and shows nothing.
type Null struct {
	width, height int
	shown         int
}

func NewNull(width, height int) *Null {
	return &Null{width: width, height: height}
}

func (n *Null) Name() string { return "null" }
func (n *Null) Width() int   { return n.width }
func (n *Null) Height() int  { return n.height }

func (n *Null) SetImage(image.Image) error { return nil }

func (n *Null) Show() error {
	n.shown++
	return nil
}

// Shown is the number of completed Show calls.
func (n *Null) Shown() int { return n.shown }

// Preview wraps a panel and saves every shown frame to a file, so the output
// can be inspected without looking at the hardware.
type Preview struct {
	Panel
	path   string
	frame  image.Image
	logger *log.Logger
}

func NewPreview(p Panel, path string, logger *log.Logger) *Preview {
	return &Preview{Panel: p, path: path, logger: logger}
}

func (p *Preview) SetImage(img image.Image) error {
	p.frame = img
	return p.Panel.SetImage(img)
}

// Show refreshes the wrapped panel first; the preview is only written for
// frames that made it to the panel. A preview that cannot be saved does not
// fail the refresh.
func (p *Preview) Show() error {
	if err := p.Panel.Show(); err != nil {
		return err
	}
	if p.frame == nil {
		return nil
	}
	if err := p.save(); err != nil {
		p.logger.Warn("Could not save preview", "path", p.path, "err", err)
	}
	return nil
}

func (p *Preview) save() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("creating preview directory: %w", err)
	}
	if err := imaging.Save(p.frame, p.path); err != nil {
		return fmt.Errorf("saving preview: %w", err)
	}
	return nil
}

func (p *Preview) Close() error {
	return Close(p.Panel)
}
