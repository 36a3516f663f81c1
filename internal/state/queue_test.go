package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticLister(paths ...string) Lister {
	return func() ([]string, error) {
		return append([]string{}, paths...), nil
	}
}

func photoSet(n int) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("/photos/%03d.jpg", i)
	}
	return paths
}

func newTestQueue(t *testing.T, list Lister) (*Queue, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache", "slideshow_state.json")
	return NewQueue(path, list, rand.New(rand.NewPCG(1, 2))), path
}

func TestFreshCycleContainsEveryPhotoOnce(t *testing.T) {
	for _, n := range []int{1, 2, 7, 50} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			paths := photoSet(n)
			q, _ := newTestQueue(t, staticLister(paths...))

			first, err := q.PopNext()
			require.NoError(t, err)
			assert.Equal(t, n, q.Total())

			seen := append([]string{first}, q.Items()...)
			assert.Len(t, seen, n)
			assert.ElementsMatch(t, paths, seen)
		})
	}
}

func TestPopNextDrainsThenReshuffles(t *testing.T) {
	paths := photoSet(3)
	q, _ := newTestQueue(t, staticLister(paths...))

	var popped []string
	for range 3 {
		p, err := q.PopNext()
		require.NoError(t, err)
		popped = append(popped, p)
	}
	assert.ElementsMatch(t, paths, popped)
	assert.Equal(t, 0, q.Len())

	_, err := q.PopNext()
	require.NoError(t, err)
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 3, q.Total())
}

func TestPersistLoadRoundTrip(t *testing.T) {
	q, path := newTestQueue(t, staticLister(photoSet(5)...))
	_, err := q.PopNext()
	require.NoError(t, err)
	require.NoError(t, q.Persist())

	loaded := NewQueue(path, staticLister(), nil)
	require.NoError(t, loaded.Load())
	assert.Equal(t, q.Items(), loaded.Items())
	assert.Equal(t, 5, loaded.Total())

	var onDisk map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Contains(t, onDisk, "total_count")
	assert.Contains(t, onDisk, "queue")
}

func TestLoadToleratesMissingAndCorruptState(t *testing.T) {
	q, path := newTestQueue(t, staticLister())
	require.NoError(t, q.Load())
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Total())

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	assert.Error(t, q.Load())
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Total())
}

func TestLoadLegacyBareList(t *testing.T) {
	q, path := newTestQueue(t, staticLister(photoSet(4)...))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`["/photos/a.jpg", "/photos/b.jpg"]`), 0o644))

	require.NoError(t, q.Load())
	assert.Equal(t, []string{"/photos/a.jpg", "/photos/b.jpg"}, q.Items())
	assert.Equal(t, 0, q.Total())

	// a zero total never matches a non-empty directory, so the legacy queue
	// is rebuilt on the next cycle
	assert.True(t, q.Reconcile(4))
	_, err := q.PopNext()
	require.NoError(t, err)
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 4, q.Total())
}

func TestReconcileForcesReshuffleOnCountChange(t *testing.T) {
	paths := photoSet(6)
	lister := staticLister(paths[:5]...)
	q, _ := newTestQueue(t, func() ([]string, error) { return lister() })

	_, err := q.PopNext()
	require.NoError(t, err)
	require.Equal(t, 4, q.Len())

	assert.False(t, q.Reconcile(5))
	assert.Equal(t, 4, q.Len())

	lister = staticLister(paths...)
	assert.True(t, q.Reconcile(6))
	assert.Equal(t, 0, q.Len())

	_, err = q.PopNext()
	require.NoError(t, err)
	assert.Equal(t, 5, q.Len())
	assert.Equal(t, 6, q.Total())
}

func TestPopNextEmptyDirectoryStalls(t *testing.T) {
	q, path := newTestQueue(t, staticLister())
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"total_count": 3, "queue": []}`), 0o644))
	require.NoError(t, q.Load())

	_, err := q.PopNext()
	assert.ErrorIs(t, err, ErrNoPhotos)
	assert.NoFileExists(t, path)
	assert.Equal(t, 0, q.Total())
}

func TestPopNextListerErrorStalls(t *testing.T) {
	boom := errors.New("directory vanished")
	q, _ := newTestQueue(t, func() ([]string, error) { return nil, boom })

	_, err := q.PopNext()
	assert.ErrorIs(t, err, ErrNoPhotos)
	assert.ErrorIs(t, err, boom)
}
