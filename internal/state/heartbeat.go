package state

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// HeartbeatLayout is ISO-8601 with minute precision.
const HeartbeatLayout = "2006-01-02T15:04"

// Heartbeat is the liveness file read by the heartbeat watchdog. Only its
// modification time matters to the watchdog; the content is informational.
type Heartbeat struct {
	path string
}

func NewHeartbeat(path string) *Heartbeat {
	return &Heartbeat{path: path}
}

func (h *Heartbeat) Path() string {
	return h.path
}

func (h *Heartbeat) Touch(now time.Time) error {
	return writeFile(h.path, []byte(now.Format(HeartbeatLayout)))
}

// Read parses the timestamp written by the last Touch.
func (h *Heartbeat) Read() (time.Time, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return time.Time{}, err
	}
	ts, err := time.ParseInLocation(HeartbeatLayout, strings.TrimSpace(string(data)), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing heartbeat: %w", err)
	}
	return ts, nil
}

// Age is the time since the file was last modified. A missing file yields an
// error satisfying errors.Is(err, os.ErrNotExist).
func (h *Heartbeat) Age(now time.Time) (time.Duration, error) {
	info, err := os.Stat(h.path)
	if err != nil {
		return 0, err
	}
	return now.Sub(info.ModTime()), nil
}
