package watchdog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/inkyslide/internal/notify"
	"github.com/matjam/inkyslide/internal/state"
)

type HeartbeatResult string

const (
	HeartbeatMissing   HeartbeatResult = "missing"
	HeartbeatFresh     HeartbeatResult = "fresh"
	HeartbeatInactive  HeartbeatResult = "inactive"
	HeartbeatRestarted HeartbeatResult = "restarted"
)

// HeartbeatWatchdog restarts the slideshow service when its heartbeat file
// has not been touched for longer than Threshold. A missing file means the
// slideshow has not rendered yet and is left alone, as is a service systemd
// does not report as active.
type HeartbeatWatchdog struct {
	Heartbeat *state.Heartbeat
	Threshold time.Duration
	Service   string
	Runner    Runner
	Notifier  notify.Notifier
	Logger    *log.Logger
	Now       func() time.Time
}

func (w *HeartbeatWatchdog) Check(ctx context.Context) (HeartbeatResult, error) {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}

	age, err := w.Heartbeat.Age(now())
	if errors.Is(err, os.ErrNotExist) {
		w.Logger.Info("Heartbeat file does not exist yet, nothing to do", "file", w.Heartbeat.Path())
		return HeartbeatMissing, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading heartbeat: %w", err)
	}

	w.Logger.Info("Heartbeat age", "age", age.Round(time.Second), "threshold", w.Threshold)
	if age < w.Threshold {
		return HeartbeatFresh, nil
	}

	active, _ := w.Runner.Run(ctx, "systemctl", "is-active", w.Service)
	if active != "active" {
		w.Logger.Warn("Heartbeat is stale but the service is not active, not restarting", "service", w.Service, "state", active)
		return HeartbeatInactive, nil
	}

	w.Logger.Warn("Heartbeat is stale, restarting service", "service", w.Service, "age", age.Round(time.Second))
	if _, err := w.Runner.Run(ctx, "systemctl", "restart", w.Service); err != nil {
		return "", fmt.Errorf("restarting %s: %w", w.Service, err)
	}

	if err := w.Notifier.Notify(ctx, notify.Message{
		Title:    fmt.Sprintf("[%s] slideshow restarted", hostname()),
		Body:     fmt.Sprintf("%s was restarted, the last heartbeat was %s ago.", w.Service, age.Round(time.Minute)),
		Tags:     []string{"raspi", "slideshow"},
		Priority: 4,
	}); err != nil {
		w.Logger.Error("Could not send notification", "err", err)
	}

	return HeartbeatRestarted, nil
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "raspberrypi"
	}
	return name
}
