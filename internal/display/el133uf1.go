package display

import (
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Inky Impression 13.3" (EL133UF1 controller, Spectra 6 film).
const (
	el133Width  = 1600
	el133Height = 1200

	el133SPISpeed = 10 * physic.MegaHertz
	el133Chunk    = 4096 // spidev default buffer size

	el133PinReset = "GPIO27"
	el133PinBusy  = "GPIO17"
	el133PinDC    = "GPIO22"
	el133PinCS0   = "GPIO26"
	el133PinCS1   = "GPIO16"
)

// controller commands
const (
	cmdPSR           = 0x00
	cmdPWR           = 0x01
	cmdPOF           = 0x02
	cmdPON           = 0x04
	cmdBTSTN         = 0x05
	cmdBTSTP         = 0x06
	cmdDTM           = 0x10
	cmdDRF           = 0x12
	cmdPLL           = 0x30
	cmdCDI           = 0x50
	cmdTCON          = 0x60
	cmdTRES          = 0x61
	cmdANTM          = 0x74
	cmdAGID          = 0x86
	cmdBuckBoostVDDN = 0xb0
	cmdTFTVCOMPower  = 0xb1
	cmdENBUF         = 0xb6
	cmdBoostVDDPEN   = 0xb7
	cmdCCSET         = 0xe0
	cmdPWS           = 0xe3
	cmdCMD66         = 0xf0
)

type chipSelect int

const (
	selectCS0 chipSelect = iota
	selectCS1
	selectBoth
)

type txConn interface {
	Tx(w, r []byte) error
}

type outPin interface {
	Out(l gpio.Level) error
}

type inPin interface {
	Read() gpio.Level
}

// EL133UF1 drives the two-controller 13.3" Spectra 6 panel. Each controller
// owns one half of every scan row and has its own chip select.
type EL133UF1 struct {
	conn  txConn
	reset outPin
	dc    outPin
	cs0   outPin
	cs1   outPin
	busy  inPin
	port  io.Closer

	logger *log.Logger

	frame []byte

	sleep       func(time.Duration)
	refreshWait time.Duration
}

// OpenEL133UF1 detects the panel through the HAT EEPROM and claims the SPI
// bus and GPIO lines.
func OpenEL133UF1(logger *log.Logger) (Panel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: host init: %w", ErrNoDriver, err)
	}

	info, err := readEEPROM()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDriver, err)
	}
	if info.Width != el133Width || info.Height != el133Height {
		return nil, fmt.Errorf("%w: eeprom reports a %dx%d panel (variant %d)", ErrNoDriver, info.Width, info.Height, info.DisplayVariant)
	}

	port, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("%w: opening spi: %w", ErrNoDriver, err)
	}
	conn, err := port.Connect(el133SPISpeed, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: connecting spi: %w", ErrNoDriver, err)
	}

	pins := map[string]gpio.PinIO{}
	for _, name := range []string{el133PinReset, el133PinBusy, el133PinDC, el133PinCS0, el133PinCS1} {
		p := gpioreg.ByName(name)
		if p == nil {
			_ = port.Close()
			return nil, fmt.Errorf("%w: gpio %s not found", ErrNoDriver, name)
		}
		pins[name] = p
	}

	if err := errors.Join(
		pins[el133PinBusy].In(gpio.PullUp, gpio.NoEdge),
		pins[el133PinCS0].Out(gpio.High),
		pins[el133PinCS1].Out(gpio.High),
		pins[el133PinDC].Out(gpio.Low),
		pins[el133PinReset].Out(gpio.High),
	); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: configuring gpio: %w", ErrNoDriver, err)
	}

	logger.Debug("Inky EEPROM", "width", info.Width, "height", info.Height, "variant", info.DisplayVariant, "written", info.WrittenAt)

	d := newEL133UF1(conn, pins[el133PinReset], pins[el133PinDC], pins[el133PinCS0], pins[el133PinCS1], pins[el133PinBusy], logger)
	d.port = port
	return d, nil
}

func readEEPROM() (EEPROM, error) {
	bus, err := i2creg.Open("")
	if err != nil {
		return EEPROM{}, fmt.Errorf("opening i2c: %w", err)
	}
	defer bus.Close()

	dev := &i2c.Dev{Bus: bus, Addr: eepromAddr}
	buf := make([]byte, eepromSize)
	if err := dev.Tx([]byte{0x00, 0x00}, buf); err != nil {
		return EEPROM{}, fmt.Errorf("reading eeprom: %w", err)
	}
	return ParseEEPROM(buf)
}

func newEL133UF1(conn txConn, reset, dc, cs0, cs1 outPin, busy inPin, logger *log.Logger) *EL133UF1 {
	return &EL133UF1{
		logger:      logger,
		conn:        conn,
		reset:       reset,
		dc:          dc,
		cs0:         cs0,
		cs1:         cs1,
		busy:        busy,
		sleep:       time.Sleep,
		refreshWait: 45 * time.Second,
	}
}

func (d *EL133UF1) Name() string { return "el133uf1" }
func (d *EL133UF1) Width() int   { return el133Width }
func (d *EL133UF1) Height() int  { return el133Height }

// SetImage quantizes and packs the frame. Nothing is sent until Show.
func (d *EL133UF1) SetImage(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != el133Width || b.Dy() != el133Height {
		return fmt.Errorf("frame is %dx%d, panel is %dx%d", b.Dx(), b.Dy(), el133Width, el133Height)
	}

	packed, err := PackRotated(Quantize(img))
	if err != nil {
		return err
	}
	d.frame = packed
	return nil
}

// Show initializes the controllers, uploads both halves and runs a full
// refresh. It blocks until the panel reports idle.
func (d *EL133UF1) Show() error {
	if d.frame == nil {
		return errors.New("no frame set")
	}

	if err := d.setup(); err != nil {
		return fmt.Errorf("panel setup: %w", err)
	}

	rowBytes := el133Height / 2
	half := rowBytes / 2
	left := make([]byte, 0, len(d.frame)/2)
	right := make([]byte, 0, len(d.frame)/2)
	for row := 0; row < len(d.frame); row += rowBytes {
		left = append(left, d.frame[row:row+half]...)
		right = append(right, d.frame[row+half:row+rowBytes]...)
	}

	if err := d.command(selectCS0, cmdDTM, left...); err != nil {
		return err
	}
	if err := d.command(selectCS1, cmdDTM, right...); err != nil {
		return err
	}

	if err := d.command(selectBoth, cmdPON); err != nil {
		return err
	}
	d.waitIdle(300 * time.Millisecond)

	if err := d.command(selectBoth, cmdDRF, 0x00); err != nil {
		return err
	}
	d.waitIdle(d.refreshWait)

	if err := d.command(selectBoth, cmdPOF, 0x00); err != nil {
		return err
	}
	d.waitIdle(300 * time.Millisecond)

	return nil
}

func (d *EL133UF1) Close() error {
	if d.port == nil {
		return nil
	}
	return d.port.Close()
}

func (d *EL133UF1) setup() error {
	if err := d.reset.Out(gpio.Low); err != nil {
		return err
	}
	d.sleep(30 * time.Millisecond)
	if err := d.reset.Out(gpio.High); err != nil {
		return err
	}
	d.sleep(30 * time.Millisecond)
	d.waitIdle(300 * time.Millisecond)

	seq := []struct {
		cs   chipSelect
		cmd  byte
		data []byte
	}{
		{selectCS0, cmdANTM, []byte{0xc0, 0x1c, 0x1c, 0xcc, 0xcc, 0xcc, 0x15, 0x15, 0x55}},
		{selectBoth, cmdCMD66, []byte{0x49, 0x55, 0x13, 0x5d, 0x05, 0x10}},
		{selectBoth, cmdPSR, []byte{0xdf, 0x69}},
		{selectBoth, cmdPLL, []byte{0x08}},
		{selectBoth, cmdCDI, []byte{0xf7}},
		{selectBoth, cmdTCON, []byte{0x03, 0x03}},
		{selectBoth, cmdAGID, []byte{0x10}},
		{selectBoth, cmdPWS, []byte{0x22}},
		{selectBoth, cmdCCSET, []byte{0x01}},
		{selectBoth, cmdTRES, []byte{0x04, 0xb0, 0x03, 0x20}},
		{selectCS0, cmdPWR, []byte{0x0f, 0x00, 0x28, 0x2c, 0x28, 0x38}},
		{selectCS0, cmdENBUF, []byte{0x07}},
		{selectCS0, cmdBTSTP, []byte{0xd8, 0x18}},
		{selectCS0, cmdBoostVDDPEN, []byte{0x01}},
		{selectCS0, cmdBTSTN, []byte{0xd8, 0x18}},
		{selectCS0, cmdBuckBoostVDDN, []byte{0x01}},
		{selectCS0, cmdTFTVCOMPower, []byte{0x02}},
	}
	for _, s := range seq {
		if err := d.command(s.cs, s.cmd, s.data...); err != nil {
			return err
		}
	}
	return nil
}

func (d *EL133UF1) selected(cs chipSelect) []outPin {
	switch cs {
	case selectCS0:
		return []outPin{d.cs0}
	case selectCS1:
		return []outPin{d.cs1}
	default:
		return []outPin{d.cs0, d.cs1}
	}
}

// command sends cmd with DC low followed by data with DC high, all within one
// chip-select window.
func (d *EL133UF1) command(cs chipSelect, cmd byte, data ...byte) (err error) {
	pins := d.selected(cs)
	for _, p := range pins {
		if err := p.Out(gpio.Low); err != nil {
			return err
		}
	}
	defer func() {
		for _, p := range pins {
			err = errors.Join(err, p.Out(gpio.High))
		}
	}()

	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.conn.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("command 0x%02x: %w", cmd, err)
	}
	if len(data) == 0 {
		return nil
	}

	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for start := 0; start < len(data); start += el133Chunk {
		end := min(start+el133Chunk, len(data))
		if err := d.conn.Tx(data[start:end], nil); err != nil {
			return fmt.Errorf("data for command 0x%02x: %w", cmd, err)
		}
	}
	return nil
}

// waitIdle polls the active-low BUSY line. A timeout is logged and the
// sequence continues, the controller finishes on its own.
func (d *EL133UF1) waitIdle(timeout time.Duration) {
	const poll = 10 * time.Millisecond
	for waited := time.Duration(0); d.busy.Read() == gpio.Low; waited += poll {
		if waited >= timeout {
			d.logger.Warn("Panel busy wait timed out", "timeout", timeout)
			return
		}
		d.sleep(poll)
	}
}
