package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"
)

// ErrNoPhotos is returned by PopNext when a rescan finds nothing to show.
var ErrNoPhotos = errors.New("no eligible photos")

// Lister returns the current eligible photo paths.
type Lister func() ([]string, error)

type queueFile struct {
	TotalCount int      `json:"total_count"`
	Queue      []string `json:"queue"`
}

// Queue is the remaining part of one shuffled pass over the photo directory.
// The copy on disk is authoritative between runs; the in-memory copy is the
// only writer while the process runs.
type Queue struct {
	sync.Mutex
	path  string
	list  Lister
	rng   *rand.Rand
	total int      // size of the cycle when it was shuffled
	items []string // remaining paths, head first
}

// NewQueue creates a queue persisted at path. A nil rng uses the global
// math/rand/v2 source.
func NewQueue(path string, list Lister, rng *rand.Rand) *Queue {
	return &Queue{
		path: path,
		list: list,
		rng:  rng,
	}
}

// Load reads the persisted queue. A missing file leaves the queue empty and
// is not an error. A malformed file also leaves the queue empty; the returned
// error only describes what was ignored.
func (q *Queue) Load() error {
	q.Lock()
	defer q.Unlock()

	q.total = 0
	q.items = nil

	data, err := os.ReadFile(q.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading queue state: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		// legacy format: a bare list without a cycle total
		var legacy []string
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return fmt.Errorf("decoding legacy queue state: %w", err)
		}
		q.items = legacy
		return nil
	}

	var st queueFile
	if err := json.Unmarshal(trimmed, &st); err != nil {
		return fmt.Errorf("decoding queue state: %w", err)
	}
	q.total = st.TotalCount
	q.items = st.Queue
	return nil
}

// Reconcile discards the queue when the live number of eligible files no
// longer matches the cycle total, forcing a reshuffle on the next PopNext.
// It reports whether the queue was discarded.
func (q *Queue) Reconcile(count int) bool {
	q.Lock()
	defer q.Unlock()

	if count == q.total {
		return false
	}
	q.items = nil
	q.total = 0
	return true
}

// PopNext removes and returns the head of the queue. An empty queue is
// refilled from the lister in random order first. If the lister yields no
// photos the state file is removed and ErrNoPhotos is returned.
func (q *Queue) PopNext() (string, error) {
	q.Lock()
	defer q.Unlock()

	if len(q.items) == 0 {
		paths, err := q.list()
		if err != nil || len(paths) == 0 {
			q.total = 0
			q.items = nil
			if rmErr := os.Remove(q.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				err = errors.Join(err, rmErr)
			}
			if err != nil {
				return "", fmt.Errorf("%w: %w", ErrNoPhotos, err)
			}
			return "", ErrNoPhotos
		}

		items := make([]string, len(paths))
		copy(items, paths)
		q.shuffle(items)
		q.items = items
		q.total = len(items)
	}

	next := q.items[0]
	q.items = q.items[1:]
	return next, nil
}

func (q *Queue) shuffle(items []string) {
	swap := func(i, j int) { items[i], items[j] = items[j], items[i] }
	if q.rng != nil {
		q.rng.Shuffle(len(items), swap)
		return
	}
	rand.Shuffle(len(items), swap)
}

// Persist writes the remaining queue and the cycle total.
func (q *Queue) Persist() error {
	q.Lock()
	st := queueFile{TotalCount: q.total, Queue: append([]string{}, q.items...)}
	q.Unlock()

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding queue state: %w", err)
	}
	return writeFile(q.path, data)
}

func (q *Queue) Len() int {
	q.Lock()
	defer q.Unlock()
	return len(q.items)
}

func (q *Queue) Total() int {
	q.Lock()
	defer q.Unlock()
	return q.total
}

// Items returns a copy of the remaining paths.
func (q *Queue) Items() []string {
	q.Lock()
	defer q.Unlock()
	return append([]string{}, q.items...)
}
