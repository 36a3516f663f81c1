// Package display drives the e-paper panel. Hardware bindings are tried in
// preference order and a no-op stand-in is used when none of them initialize,
// so the slideshow keeps running on a development machine.
package display

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/charmbracelet/log"
)

var (
	ErrNoDriver      = errors.New("panel not found")
	ErrUnknownDriver = errors.New("unknown panel driver")
)

// Panel is a display that takes a full frame and refreshes at once.
type Panel interface {
	Name() string
	Width() int
	Height() int
	SetImage(img image.Image) error
	Show() error
}

// Borderer is implemented by panels with a configurable border colour.
type Borderer interface {
	SetBorder(c color.Color) error
}

// Factory opens a hardware binding. It returns an error wrapping ErrNoDriver
// when the hardware is not present.
type Factory func(logger *log.Logger) (Panel, error)

type Candidate struct {
	Name string
	Open Factory
}

var registry = map[string]Factory{
	"el133uf1":         OpenEL133UF1,
	"waveshare2in13v2": OpenWaveshare2in13v2,
}

// Candidates resolves driver names to their factories, keeping the order.
func Candidates(names []string) ([]Candidate, error) {
	out := make([]Candidate, 0, len(names))
	for _, name := range names {
		f, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
		}
		out = append(out, Candidate{Name: name, Open: f})
	}
	return out, nil
}

// Detect returns the first candidate that opens successfully. Its border is
// set to white if it supports one; a failure to do so is only logged. When
// no candidate opens, fallback is returned.
func Detect(logger *log.Logger, candidates []Candidate, fallback Panel) Panel {
	for _, c := range candidates {
		p, err := c.Open(logger)
		if err != nil {
			logger.Debug("Panel driver unavailable", "driver", c.Name, "err", err)
			continue
		}

		if b, ok := p.(Borderer); ok {
			if err := b.SetBorder(color.White); err != nil {
				logger.Warn("Could not set panel border", "driver", c.Name, "err", err)
			}
		}

		logger.Info("Panel initialized", "driver", p.Name(), "width", p.Width(), "height", p.Height())
		return p
	}

	logger.Warn("No panel found, using the no-op display", "width", fallback.Width(), "height", fallback.Height())
	return fallback
}

// Close releases the panel if it holds any resources.
func Close(p Panel) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
