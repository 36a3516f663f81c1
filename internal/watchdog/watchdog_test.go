package watchdog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/inkyslide/internal/notify"
	"github.com/matjam/inkyslide/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	cmd := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, cmd)
	return r.outputs[cmd], r.errs[cmd]
}

type fakeNotifier struct {
	sent []notify.Message
}

func (n *fakeNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.sent = append(n.sent, msg)
	return nil
}

type fakePinger struct {
	replies []bool
	pings   int
}

func (p *fakePinger) Ping(context.Context, string) (bool, error) {
	ok := p.replies[min(p.pings, len(p.replies)-1)]
	p.pings++
	return ok, nil
}

func quiet() *log.Logger {
	return log.New(io.Discard)
}

func heartbeatAged(t *testing.T, age time.Duration) *state.Heartbeat {
	t.Helper()
	path := filepath.Join(t.TempDir(), "heartbeat")
	hb := state.NewHeartbeat(path)
	require.NoError(t, hb.Touch(time.Now()))
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, old, old))
	return hb
}

func TestHeartbeatWatchdog(t *testing.T) {
	const service = "inky-slideshow.service"

	t.Run("missing file", func(t *testing.T) {
		runner := &fakeRunner{}
		w := &HeartbeatWatchdog{
			Heartbeat: state.NewHeartbeat(filepath.Join(t.TempDir(), "none")),
			Threshold: 2 * time.Hour, Service: service,
			Runner: runner, Notifier: &fakeNotifier{}, Logger: quiet(),
		}
		res, err := w.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, HeartbeatMissing, res)
		assert.Empty(t, runner.calls)
	})

	t.Run("fresh", func(t *testing.T) {
		runner := &fakeRunner{}
		w := &HeartbeatWatchdog{
			Heartbeat: heartbeatAged(t, 30*time.Minute),
			Threshold: 2 * time.Hour, Service: service,
			Runner: runner, Notifier: &fakeNotifier{}, Logger: quiet(),
		}
		res, err := w.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, HeartbeatFresh, res)
		assert.Empty(t, runner.calls)
	})

	t.Run("stale and active", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{
			"systemctl is-active " + service: "active",
		}}
		notifier := &fakeNotifier{}
		w := &HeartbeatWatchdog{
			Heartbeat: heartbeatAged(t, 3*time.Hour),
			Threshold: 2 * time.Hour, Service: service,
			Runner: runner, Notifier: notifier, Logger: quiet(),
		}
		res, err := w.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, HeartbeatRestarted, res)
		assert.Equal(t, []string{
			"systemctl is-active " + service,
			"systemctl restart " + service,
		}, runner.calls)
		assert.Len(t, notifier.sent, 1)
	})

	t.Run("stale but inactive", func(t *testing.T) {
		runner := &fakeRunner{
			outputs: map[string]string{"systemctl is-active " + service: "inactive"},
			errs:    map[string]error{"systemctl is-active " + service: errors.New("exit status 3")},
		}
		w := &HeartbeatWatchdog{
			Heartbeat: heartbeatAged(t, 3*time.Hour),
			Threshold: 2 * time.Hour, Service: service,
			Runner: runner, Notifier: &fakeNotifier{}, Logger: quiet(),
		}
		res, err := w.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, HeartbeatInactive, res)
		assert.Len(t, runner.calls, 1)
	})
}

func newNetworkWatchdog(replies ...bool) (*NetworkWatchdog, *fakeRunner, *fakeNotifier, *[]time.Duration) {
	runner := &fakeRunner{}
	notifier := &fakeNotifier{}
	var slept []time.Duration
	w := &NetworkWatchdog{
		Gateway:  "192.168.3.1",
		Device:   "wlan0",
		Settle:   10 * time.Second,
		Pinger:   &fakePinger{replies: replies},
		Runner:   runner,
		Notifier: notifier,
		Logger:   quiet(),
		Sleep:    func(d time.Duration) { slept = append(slept, d) },
	}
	return w, runner, notifier, &slept
}

func TestNetworkWatchdog(t *testing.T) {
	w, runner, notifier, slept := newNetworkWatchdog(true)
	res, err := w.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NetworkUp, res)
	assert.Empty(t, runner.calls)
	assert.Empty(t, notifier.sent)
	assert.Empty(t, *slept)

	w, runner, notifier, slept = newNetworkWatchdog(false, true)
	res, err = w.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NetworkRecovered, res)
	assert.Equal(t, []string{"nmcli device disconnect wlan0", "nmcli device connect wlan0"}, runner.calls)
	assert.Equal(t, []time.Duration{10 * time.Second}, *slept)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, 3, notifier.sent[0].Priority)

	w, _, notifier, _ = newNetworkWatchdog(false, false)
	res, err = w.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NetworkDown, res)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0].Tags, "error")
	assert.Equal(t, 4, notifier.sent[0].Priority)
}

func TestParseThrottled(t *testing.T) {
	v, err := ParseThrottled("throttled=0x50005\n")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x50005), v)

	v, err = ParseThrottled("throttled=0")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)

	_, err = ParseThrottled("VCHI initialization failed")
	assert.Error(t, err)

	_, err = ParseThrottled("throttled=0xZZ")
	assert.Error(t, err)
}

func TestDecodeThrottled(t *testing.T) {
	f := DecodeThrottled(0x50005)
	assert.Equal(t, ThrottleFlags{
		UnderVoltageNow:  true,
		ThrottledNow:     true,
		UnderVoltagePast: true,
		ThrottledPast:    true,
	}, f)

	desc := f.Describe()
	assert.Contains(t, desc, "under-voltage")
	assert.NotContains(t, desc, "no problems")

	assert.Contains(t, DecodeThrottled(0).Describe(), "no problems")
}

func TestThrottleMonitor(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "cache", "throttled_state.json")
	runner := &fakeRunner{outputs: map[string]string{"vcgencmd get_throttled": "throttled=0x0"}}
	notifier := &fakeNotifier{}
	m := &ThrottleMonitor{StateFile: stateFile, Runner: runner, Notifier: notifier, Logger: quiet()}

	res, err := m.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ThrottleInitial, res)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0].Title, "throttled initial")
	assert.FileExists(t, stateFile)

	res, err = m.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ThrottleUnchanged, res)
	assert.Len(t, notifier.sent, 1)

	runner.outputs["vcgencmd get_throttled"] = "throttled=0x50000"
	res, err = m.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ThrottleChanged, res)
	require.Len(t, notifier.sent, 2)
	assert.Contains(t, notifier.sent[1].Body, "previous: 0x0, now: 0x50000")
	assert.Equal(t, 4, notifier.sent[1].Priority)
}

func TestThrottleMonitorCommandFailure(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"vcgencmd get_throttled": errors.New("not found")}}
	notifier := &fakeNotifier{}
	m := &ThrottleMonitor{StateFile: filepath.Join(t.TempDir(), "s.json"), Runner: runner, Notifier: notifier, Logger: quiet()}

	_, err := m.Check(context.Background())
	assert.Error(t, err)
	assert.Empty(t, notifier.sent)
}
