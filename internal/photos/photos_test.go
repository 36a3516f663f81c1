package photos

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestIsEligible(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.JPG", "c.jpeg", "d.JpEg", "e.png", "f.PNG"} {
		assert.True(t, IsEligible(name), name)
	}
	for _, name := range []string{"a.gif", "b.txt", "jpg", "c.jpg.bak", ".DS_Store", "d.heic"} {
		assert.False(t, IsEligible(name), name)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.JPG")
	touch(t, dir, "a.png")
	touch(t, dir, "notes.txt")
	touch(t, dir, "c.jpeg")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755))

	paths, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.JPG"),
		filepath.Join(dir, "c.jpeg"),
	}, paths)

	n, err := Count(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestListMissingDirectory(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
