package types

import "time"

type Corner string

const (
	CornerBottomRight Corner = "bottom-right"
	CornerTopRight    Corner = "top-right"
	CornerTopLeft     Corner = "top-left"
	CornerBottomLeft  Corner = "bottom-left"
)

// Corners lists the overlay positions in the order they are drawn from.
var Corners = []Corner{CornerBottomRight, CornerTopRight, CornerTopLeft, CornerBottomLeft}

// Opposite returns the diagonally opposite corner. Unknown values map to
// bottom-left.
func (c Corner) Opposite() Corner {
	switch c {
	case CornerBottomRight:
		return CornerTopLeft
	case CornerTopRight:
		return CornerBottomLeft
	case CornerTopLeft:
		return CornerBottomRight
	case CornerBottomLeft:
		return CornerTopRight
	default:
		return CornerBottomLeft
	}
}

func (c Corner) Right() bool {
	return c == CornerBottomRight || c == CornerTopRight
}

func (c Corner) Bottom() bool {
	return c == CornerBottomRight || c == CornerBottomLeft
}

type OverlayVariant string

const (
	OverlayStatus  OverlayVariant = "status"  // date, elapsed, days ago + update/uptime block
	OverlayCounter OverlayVariant = "counter" // date, elapsed + "#n" badge
)

type CommandType string

const (
	CommandStop   CommandType = "stop"
	CommandNext   CommandType = "next"
	CommandStatus CommandType = "status"
)

type Command struct {
	Type CommandType `json:"type"`
}

// Status is a snapshot of the slideshow as reported over the control socket.
type Status struct {
	Panel         string    `json:"panel"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Overlay       string    `json:"overlay"`
	CurrentPhoto  string    `json:"current_photo"`
	Corner        Corner    `json:"corner,omitempty"`
	Counter       int       `json:"counter"`
	Remaining     int       `json:"remaining"`
	Total         int       `json:"total"`
	StartedAt     time.Time `json:"started_at"`
	LastDisplayed time.Time `json:"last_displayed,omitzero"`
	NextAt        time.Time `json:"next_at,omitzero"`
}
