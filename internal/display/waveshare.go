package display

import (
	"errors"
	"fmt"
	"image"

	"github.com/charmbracelet/log"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/waveshare2in13v2"
	"periph.io/x/host/v3"
)

// Waveshare2in13v2 is the 2.13" black and white HAT, mostly useful as a
// small test panel.
type Waveshare2in13v2 struct {
	dev   *waveshare2in13v2.Dev
	port  spi.PortCloser
	frame image.Image
}

func OpenWaveshare2in13v2(logger *log.Logger) (Panel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: host init: %w", ErrNoDriver, err)
	}

	port, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("%w: opening spi: %w", ErrNoDriver, err)
	}

	dev, err := waveshare2in13v2.NewHat(port, &waveshare2in13v2.EPD2in13v2)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: %w", ErrNoDriver, err)
	}
	if err := dev.Init(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: init: %w", ErrNoDriver, err)
	}

	logger.Debug("Waveshare 2.13\" HAT initialized", "bounds", dev.Bounds())
	return &Waveshare2in13v2{dev: dev, port: port}, nil
}

func (w *Waveshare2in13v2) Name() string { return "waveshare2in13v2" }
func (w *Waveshare2in13v2) Width() int   { return w.dev.Bounds().Dx() }
func (w *Waveshare2in13v2) Height() int  { return w.dev.Bounds().Dy() }

func (w *Waveshare2in13v2) SetImage(img image.Image) error {
	w.frame = img
	return nil
}

func (w *Waveshare2in13v2) Show() error {
	if w.frame == nil {
		return errors.New("no frame set")
	}
	return w.dev.Draw(w.dev.Bounds(), w.frame, w.frame.Bounds().Min)
}

func (w *Waveshare2in13v2) Close() error {
	return w.port.Close()
}
