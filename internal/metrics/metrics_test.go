package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	r := Noop()
	require.NotNil(t, r)
	r.FrameDisplayed(time.Now())
	r.DisplayFailed()
	r.FrameSkipped(SkipCompose)
	r.QueueRemaining(3)
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	at := time.Unix(1733560000, 0)
	p.DisplayFailed()
	p.DisplayFailed()
	p.FrameDisplayed(at)
	p.FrameSkipped(SkipDisplay)
	p.FrameSkipped(SkipCompose)
	p.FrameSkipped(SkipCompose)
	p.QueueRemaining(17)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.displayed))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.failures))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.skipped.WithLabelValues(SkipCompose)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.skipped.WithLabelValues(SkipDisplay)))
	assert.Equal(t, 17.0, testutil.ToFloat64(p.remaining))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(p.lastSuccess))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestPrometheusRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)

	_, err = NewPrometheus(reg)
	assert.Error(t, err)
}
