package state

import (
	"os"
	"strconv"
	"strings"
)

// Counter is the number of display cycles so far, stored as plain text.
type Counter struct {
	path string
}

func NewCounter(path string) *Counter {
	return &Counter{path: path}
}

// Load returns the stored count, or 0 when the file is missing or unreadable.
func (c *Counter) Load() int {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (c *Counter) Save(n int) error {
	return writeFile(c.path, []byte(strconv.Itoa(n)))
}
