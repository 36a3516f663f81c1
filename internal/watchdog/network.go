package watchdog

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-ping/ping"
	"github.com/matjam/inkyslide/internal/notify"
)

// Pinger reports whether a host answers.
type Pinger interface {
	Ping(ctx context.Context, host string) (bool, error)
}

// ICMPPinger sends Count echo requests and succeeds if any reply arrives
// within Timeout.
type ICMPPinger struct {
	Count      int
	Timeout    time.Duration
	Privileged bool
}

func (p ICMPPinger) Ping(ctx context.Context, host string) (bool, error) {
	pinger, err := ping.NewPinger(host)
	if err != nil {
		return false, err
	}
	pinger.SetPrivileged(p.Privileged)
	pinger.Count = p.Count
	pinger.Timeout = p.Timeout

	stop := context.AfterFunc(ctx, pinger.Stop)
	defer stop()

	if err := pinger.Run(); err != nil {
		return false, err
	}
	return pinger.Statistics().PacketsRecv > 0, nil
}

type NetworkResult string

const (
	NetworkUp        NetworkResult = "up"
	NetworkRecovered NetworkResult = "recovered"
	NetworkDown      NetworkResult = "down"
)

// NetworkWatchdog pings the gateway and, when it does not answer, bounces
// the Wi-Fi device through NetworkManager and checks again.
type NetworkWatchdog struct {
	Gateway  string
	Device   string
	Settle   time.Duration // wait after reconnecting before the second ping
	Pinger   Pinger
	Runner   Runner
	Notifier notify.Notifier
	Logger   *log.Logger
	Sleep    func(time.Duration)
}

func (w *NetworkWatchdog) Check(ctx context.Context) (NetworkResult, error) {
	if w.ping(ctx) {
		w.Logger.Info("Gateway reachable", "gateway", w.Gateway)
		return NetworkUp, nil
	}

	w.Logger.Warn("Gateway unreachable, reconnecting Wi-Fi", "gateway", w.Gateway, "device", w.Device)
	for _, args := range [][]string{
		{"device", "disconnect", w.Device},
		{"device", "connect", w.Device},
	} {
		if _, err := w.Runner.Run(ctx, "nmcli", args...); err != nil {
			w.Logger.Error("nmcli failed", "err", err)
		}
	}

	sleep := time.Sleep
	if w.Sleep != nil {
		sleep = w.Sleep
	}
	sleep(w.Settle)

	host := hostname()
	if w.ping(ctx) {
		w.Logger.Info("Gateway reachable after reconnecting")
		w.notify(ctx, notify.Message{
			Title:    fmt.Sprintf("[%s] Wi-Fi reconnected", host),
			Body:     fmt.Sprintf("The network watchdog reconnected %s, %s answers again.", w.Device, w.Gateway),
			Tags:     []string{"raspi", "network"},
			Priority: 3,
		})
		return NetworkRecovered, nil
	}

	w.Logger.Error("Gateway still unreachable after reconnecting", "gateway", w.Gateway)
	w.notify(ctx, notify.Message{
		Title:    fmt.Sprintf("[%s] network down", host),
		Body:     fmt.Sprintf("Reconnecting %s did not bring %s back.", w.Device, w.Gateway),
		Tags:     []string{"raspi", "network", "error"},
		Priority: 4,
	})
	return NetworkDown, nil
}

func (w *NetworkWatchdog) ping(ctx context.Context) bool {
	ok, err := w.Pinger.Ping(ctx, w.Gateway)
	if err != nil {
		w.Logger.Warn("Ping failed", "gateway", w.Gateway, "err", err)
		return false
	}
	return ok
}

func (w *NetworkWatchdog) notify(ctx context.Context, msg notify.Message) {
	if err := w.Notifier.Notify(ctx, msg); err != nil {
		w.Logger.Error("Could not send notification", "err", err)
	}
}
