package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "counter.txt")
	c := NewCounter(path)

	assert.Equal(t, 0, c.Load())

	require.NoError(t, c.Save(41))
	assert.Equal(t, 41, c.Load())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "41", string(data))

	require.NoError(t, os.WriteFile(path, []byte(" 7\n"), 0o644))
	assert.Equal(t, 7, c.Load())

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	assert.Equal(t, 0, c.Load())
}

func TestHeartbeat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat")
	h := NewHeartbeat(path)

	_, err := h.Age(time.Now())
	assert.True(t, errors.Is(err, os.ErrNotExist))

	now := time.Date(2025, 12, 7, 14, 35, 41, 0, time.Local)
	require.NoError(t, h.Touch(now))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-07T14:35", string(data))

	ts, err := h.Read()
	require.NoError(t, err)
	assert.True(t, now.Truncate(time.Minute).Equal(ts), "got %v", ts)

	old := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))
	age, err := h.Age(time.Now())
	require.NoError(t, err)
	assert.InDelta(t, (3 * time.Hour).Seconds(), age.Seconds(), 5)
}
