// Package metrics counts what the render loop does so it can be scraped from
// the control socket.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Skip reasons.
const (
	SkipCompose = "compose"
	SkipDisplay = "display"
	SkipNoPhoto = "no_photos"
)

// Recorder receives render loop events. Calls happen inline with the loop and
// must not block.
type Recorder interface {
	FrameDisplayed(at time.Time)
	DisplayFailed()
	FrameSkipped(reason string)
	QueueRemaining(n int)
}

type noopRecorder struct{}

// Noop returns a recorder that discards everything.
func Noop() Recorder {
	return noopRecorder{}
}

func (noopRecorder) FrameDisplayed(time.Time) {}
func (noopRecorder) DisplayFailed()           {}
func (noopRecorder) FrameSkipped(string)      {}
func (noopRecorder) QueueRemaining(int)       {}

type Prometheus struct {
	displayed   prometheus.Counter
	failures    prometheus.Counter
	skipped     *prometheus.CounterVec
	remaining   prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// NewPrometheus registers the slideshow metrics with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		displayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inkyslide_frames_displayed_total",
			Help: "Frames that reached the panel.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inkyslide_display_failures_total",
			Help: "Failed display attempts, retries included.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inkyslide_frames_skipped_total",
			Help: "Cycles that did not show a frame, by reason.",
		}, []string{"reason"}),
		remaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inkyslide_queue_remaining",
			Help: "Photos left in the current shuffled cycle.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inkyslide_last_display_timestamp_seconds",
			Help: "Unix time of the last frame that reached the panel.",
		}),
	}

	var errs []error
	for _, c := range []prometheus.Collector{p.displayed, p.failures, p.skipped, p.remaining, p.lastSuccess} {
		errs = append(errs, reg.Register(c))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Prometheus) FrameDisplayed(at time.Time) {
	p.displayed.Inc()
	p.lastSuccess.Set(float64(at.Unix()))
}

func (p *Prometheus) DisplayFailed() {
	p.failures.Inc()
}

func (p *Prometheus) FrameSkipped(reason string) {
	p.skipped.WithLabelValues(reason).Inc()
}

func (p *Prometheus) QueueRemaining(n int) {
	p.remaining.Set(float64(n))
}
