package display

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	eepromAddr = 0x50
	eepromSize = 29
)

// EEPROM is the identification block Pimoroni writes to the HAT EEPROM:
// little-endian width and height, colour, PCB and display variants, and a
// length-prefixed write timestamp.
type EEPROM struct {
	Width          int
	Height         int
	Colour         int
	PCBVariant     int
	DisplayVariant int
	WrittenAt      string
}

var errShortEEPROM = errors.New("eeprom block too short")

func ParseEEPROM(data []byte) (EEPROM, error) {
	if len(data) < 7 {
		return EEPROM{}, fmt.Errorf("%w: %d bytes", errShortEEPROM, len(data))
	}

	e := EEPROM{
		Width:          int(binary.LittleEndian.Uint16(data[0:2])),
		Height:         int(binary.LittleEndian.Uint16(data[2:4])),
		Colour:         int(data[4]),
		PCBVariant:     int(data[5]),
		DisplayVariant: int(data[6]),
	}

	if len(data) > 7 {
		n := int(data[7])
		rest := data[8:]
		if n > len(rest) {
			n = len(rest)
		}
		e.WrittenAt = string(rest[:n])
	}
	return e, nil
}
