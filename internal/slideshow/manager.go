// Package slideshow runs the render loop: pick the next photo, compose a
// frame, push it to the panel with retries, persist progress and sleep.
package slideshow

import (
	"context"
	"errors"
	"image"
	"math/rand/v2"
	"runtime/debug"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/inkyslide/internal/compose"
	"github.com/matjam/inkyslide/internal/config"
	"github.com/matjam/inkyslide/internal/display"
	"github.com/matjam/inkyslide/internal/metrics"
	"github.com/matjam/inkyslide/internal/photos"
	"github.com/matjam/inkyslide/internal/state"
	"github.com/matjam/inkyslide/internal/types"
)

// Compositor renders a photo into a panel-sized frame.
type Compositor interface {
	Compose(path string, width, height int, fr compose.Frame) (*image.RGBA, types.Corner, error)
}

type Manager struct {
	sync.Mutex
	cfg        config.Config
	panel      display.Panel
	compositor Compositor
	queue      *state.Queue
	counter    *state.Counter
	heartbeat  *state.Heartbeat
	metrics    metrics.Recorder
	logger     *log.Logger
	rng        *rand.Rand
	cmds       chan types.Command

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	count     int // last successfully shown frame number
	stopped   bool
	startedAt time.Time
	status    types.Status
}

type Option func(*Manager)

// WithRand makes the shuffle and corner choice reproducible.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(m *Manager) { m.metrics = r }
}

func WithCompositor(c Compositor) Option {
	return func(m *Manager) { m.compositor = c }
}

// WithClock replaces time.Now and time.After.
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(m *Manager) {
		m.now = now
		m.after = after
	}
}

// NewManager wires the queue, counter and heartbeat files from cfg to the
// given panel.
func NewManager(cfg config.Config, panel display.Panel, logger *log.Logger, opts ...Option) *Manager {
	m := &Manager{
		cfg:     cfg,
		panel:   panel,
		logger:  logger,
		metrics: metrics.Noop(),
		cmds:    make(chan types.Command, 1),
		now:     time.Now,
		after:   time.After,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = log.Default()
	}
	if m.compositor == nil {
		m.compositor = compose.New(compose.Options{
			FontPath:      cfg.FontPath,
			FontSize:      cfg.FontSize,
			DateFontSize:  cfg.DateFontSize,
			Margin:        cfg.Margin,
			BackgroundPad: cfg.BackgroundPad,
			TextPad:       cfg.TextPad,
			Contrast:      cfg.Contrast,
			Variant:       cfg.OverlayVariant(),
		}, m.rng, m.logger)
	}

	m.queue = state.NewQueue(cfg.StateFile, func() ([]string, error) {
		return photos.List(cfg.PhotoDir)
	}, m.rng)
	m.counter = state.NewCounter(cfg.CounterFile)
	m.heartbeat = state.NewHeartbeat(cfg.HeartbeatFile)

	return m
}

// Run blocks until ctx is cancelled or a stop command arrives. Nothing that
// happens inside a cycle ends the loop.
func (m *Manager) Run(ctx context.Context) {
	m.restore()
	m.logger.Info("Starting slideshow", "panel", m.panel.Name(), "photos", m.cfg.PhotoDir, "interval", m.cfg.Interval())

	for {
		delay := m.safeCycle(ctx)
		if m.isStopped() || ctx.Err() != nil {
			break
		}

		m.setNextAt(m.now().Add(delay))
		if !m.wait(ctx, delay) {
			break
		}
	}

	m.logger.Info("Slideshow stopped", "shown", m.Status().Counter)
}

// restore loads the persisted queue and counter from the previous run.
func (m *Manager) restore() {
	m.startedAt = m.now()

	if err := m.queue.Load(); err != nil {
		m.logger.Warn("Ignoring unreadable queue state", "file", m.cfg.StateFile, "err", err)
	}
	m.count = m.counter.Load()

	if m.cfg.HeartbeatOnStart {
		m.touchHeartbeat()
	}

	m.Lock()
	m.status = types.Status{
		Panel:     m.panel.Name(),
		Width:     m.panel.Width(),
		Height:    m.panel.Height(),
		Overlay:   m.cfg.Overlay,
		Counter:   m.count,
		Remaining: m.queue.Len(),
		Total:     m.queue.Total(),
		StartedAt: m.startedAt,
	}
	m.Unlock()

	m.logger.Info("Restored state", "counter", m.count, "remaining", m.queue.Len(), "total", m.queue.Total())
}

// safeCycle runs one cycle and returns how long to wait before the next.
func (m *Manager) safeCycle(ctx context.Context) (delay time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Slideshow cycle failed", "panic", r, "stack", string(debug.Stack()))
			delay = m.cfg.ErrorDelay()
		}
	}()

	return m.cycle(ctx)
}

func (m *Manager) cycle(ctx context.Context) time.Duration {
	live, err := photos.Count(m.cfg.PhotoDir)
	if err != nil {
		m.logger.Warn("Cannot count photos", "dir", m.cfg.PhotoDir, "err", err)
	}
	if total := m.queue.Total(); m.queue.Reconcile(live) && total > 0 {
		m.logger.Info("Photo set changed, reshuffling", "was", total, "now", live)
	}

	path, err := m.queue.PopNext()
	if errors.Is(err, state.ErrNoPhotos) {
		m.logger.Warn("No photos to show, waiting", "dir", m.cfg.PhotoDir, "wait", m.cfg.StallDelay(), "err", err)
		m.metrics.FrameSkipped(metrics.SkipNoPhoto)
		m.metrics.QueueRemaining(0)
		m.setQueueStatus()
		return m.cfg.StallDelay()
	}
	if err != nil {
		m.logger.Error("Cannot pick the next photo", "err", err)
		return m.cfg.ErrorDelay()
	}
	m.metrics.QueueRemaining(m.queue.Len())

	next := m.count + 1
	updatedAt := m.now()
	m.logger.Info("Preparing photo", "photo", path, "number", next, "remaining", m.queue.Len())

	frame, corner, err := m.compositor.Compose(path, m.panel.Width(), m.panel.Height(), compose.Frame{
		Counter:   next,
		UpdatedAt: updatedAt,
		StartedAt: m.startedAt,
	})
	if err != nil {
		m.logger.Error("Cannot compose photo, skipping", "photo", path, "err", err)
		m.metrics.FrameSkipped(metrics.SkipCompose)
		m.setQueueStatus()
		return m.cfg.Interval()
	}

	if !m.show(ctx, frame) {
		m.logger.Error("Giving up on photo", "photo", path, "attempts", m.cfg.RetryAttempts)
		m.metrics.FrameSkipped(metrics.SkipDisplay)
		m.setQueueStatus()
		return m.cfg.Interval()
	}

	m.count = next
	if err := m.counter.Save(m.count); err != nil {
		m.logger.Error("Cannot save display counter", "file", m.cfg.CounterFile, "err", err)
	}
	if err := m.queue.Persist(); err != nil {
		m.logger.Error("Cannot save queue state", "file", m.cfg.StateFile, "err", err)
	}
	m.touchHeartbeat()
	m.metrics.FrameDisplayed(updatedAt)

	m.Lock()
	m.status.CurrentPhoto = path
	m.status.Corner = corner
	m.status.Counter = m.count
	m.status.LastDisplayed = updatedAt
	m.Unlock()
	m.setQueueStatus()

	m.logger.Info("Photo displayed", "photo", path, "number", m.count, "corner", corner)
	return m.cfg.Interval()
}

// show pushes the frame to the panel, retrying with a fixed delay. It
// reports whether the panel accepted the frame.
func (m *Manager) show(ctx context.Context, frame image.Image) bool {
	attempts := max(m.cfg.RetryAttempts, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		err := m.panel.SetImage(frame)
		if err == nil {
			err = m.panel.Show()
		}
		if err == nil {
			return true
		}

		m.metrics.DisplayFailed()
		m.logger.Warn("Display attempt failed", "attempt", attempt, "of", attempts, "err", err)

		if attempt < attempts && !m.wait(ctx, m.cfg.RetryDelay()) {
			return false
		}
	}
	return false
}

func (m *Manager) touchHeartbeat() {
	if err := m.heartbeat.Touch(m.now()); err != nil {
		m.logger.Warn("Cannot write heartbeat", "file", m.heartbeat.Path(), "err", err)
	}
}

// wait sleeps for d. A next command cuts the sleep short; it returns false
// when the loop should end instead.
func (m *Manager) wait(ctx context.Context, d time.Duration) bool {
	timer := m.after(d)
	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer:
			return true
		case cmd := <-m.cmds:
			switch cmd.Type {
			case types.CommandStop:
				m.logger.Info("Received stop command")
				m.Lock()
				m.stopped = true
				m.Unlock()
				return false
			case types.CommandNext:
				m.logger.Info("Received next command")
				return true
			default:
				m.logger.Error("Unknown command", "type", cmd.Type)
			}
		}
	}
}

func (m *Manager) isStopped() bool {
	m.Lock()
	defer m.Unlock()
	return m.stopped
}

func (m *Manager) setQueueStatus() {
	remaining, total := m.queue.Len(), m.queue.Total()
	m.Lock()
	defer m.Unlock()
	m.status.Remaining = remaining
	m.status.Total = total
}

func (m *Manager) setNextAt(t time.Time) {
	m.Lock()
	defer m.Unlock()
	m.status.NextAt = t
}

// Status returns a snapshot for the control socket.
func (m *Manager) Status() types.Status {
	m.Lock()
	defer m.Unlock()
	return m.status
}

// EnqueueCommand hands a command to the loop. A command arriving while
// another one is pending is dropped.
func (m *Manager) EnqueueCommand(cmd types.Command) {
	select {
	case m.cmds <- cmd:
	default:
		m.logger.Warn("Dropping command, another one is pending", "type", cmd.Type)
	}
}
