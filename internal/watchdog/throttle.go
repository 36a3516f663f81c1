package watchdog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/inkyslide/internal/notify"
)

// ThrottleFlags are the bits of `vcgencmd get_throttled`.
type ThrottleFlags struct {
	UnderVoltageNow   bool `json:"under_voltage_now"`
	ArmFreqCappedNow  bool `json:"arm_freq_capped_now"`
	ThrottledNow      bool `json:"throttled_now"`
	SoftTempLimitNow  bool `json:"soft_temp_limit_now"`
	UnderVoltagePast  bool `json:"under_voltage_past"`
	ArmFreqCappedPast bool `json:"arm_freq_capped_past"`
	ThrottledPast     bool `json:"throttled_past"`
	SoftTempLimitPast bool `json:"soft_temp_limit_past"`
}

func DecodeThrottled(v uint32) ThrottleFlags {
	return ThrottleFlags{
		UnderVoltageNow:   v&0x1 != 0,
		ArmFreqCappedNow:  v&0x2 != 0,
		ThrottledNow:      v&0x4 != 0,
		SoftTempLimitNow:  v&0x8 != 0,
		UnderVoltagePast:  v&0x10000 != 0,
		ArmFreqCappedPast: v&0x20000 != 0,
		ThrottledPast:     v&0x40000 != 0,
		SoftTempLimitPast: v&0x80000 != 0,
	}
}

// ParseThrottled reads the value out of "throttled=0x50005".
func ParseThrottled(output string) (uint32, error) {
	_, value, ok := strings.Cut(strings.TrimSpace(output), "=")
	if !ok {
		return 0, fmt.Errorf("unexpected vcgencmd output %q", output)
	}
	value = strings.TrimSpace(value)

	base := 10
	if rest, found := strings.CutPrefix(strings.ToLower(value), "0x"); found {
		value, base = rest, 16
	}
	v, err := strconv.ParseUint(value, base, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing throttled value: %w", err)
	}
	return uint32(v), nil
}

type namedFlag struct {
	name string
	set  bool
}

// named lists the flags by their JSON names, each current flag followed by
// its since-boot counterpart.
func (f ThrottleFlags) named() []namedFlag {
	return []namedFlag{
		{"under_voltage_now", f.UnderVoltageNow},
		{"under_voltage_past", f.UnderVoltagePast},
		{"arm_freq_capped_now", f.ArmFreqCappedNow},
		{"arm_freq_capped_past", f.ArmFreqCappedPast},
		{"throttled_now", f.ThrottledNow},
		{"throttled_past", f.ThrottledPast},
		{"soft_temp_limit_now", f.SoftTempLimitNow},
		{"soft_temp_limit_past", f.SoftTempLimitPast},
	}
}

// Active returns the names of the set flags, or "none".
func (f ThrottleFlags) Active() string {
	var set []string
	for _, nf := range f.named() {
		if nf.set {
			set = append(set, nf.name)
		}
	}
	if len(set) == 0 {
		return "none"
	}
	return strings.Join(set, ",")
}

// Describe lists the active conditions, current ones first.
func (f ThrottleFlags) Describe() string {
	now := activeConditions([]condition{
		{f.UnderVoltageNow, "under-voltage"},
		{f.ArmFreqCappedNow, "ARM frequency capped"},
		{f.ThrottledNow, "throttled"},
		{f.SoftTempLimitNow, "soft temperature limit"},
	})
	past := activeConditions([]condition{
		{f.UnderVoltagePast, "under-voltage"},
		{f.ArmFreqCappedPast, "ARM frequency capped"},
		{f.ThrottledPast, "throttled"},
		{f.SoftTempLimitPast, "soft temperature limit"},
	})

	var b strings.Builder
	b.WriteString("Now:\n")
	writeConditions(&b, now, "no problems")
	b.WriteString("\nSince boot:\n")
	writeConditions(&b, past, "nothing recorded")
	return b.String()
}

type condition struct {
	active bool
	label  string
}

func activeConditions(cs []condition) []string {
	var out []string
	for _, c := range cs {
		if c.active {
			out = append(out, c.label)
		}
	}
	return out
}

func writeConditions(b *strings.Builder, items []string, none string) {
	if len(items) == 0 {
		items = []string{none}
	}
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

// ThrottleState is the last reading, kept between runs.
type ThrottleState struct {
	Value     uint32        `json:"value"`
	Flags     ThrottleFlags `json:"flags"`
	Timestamp time.Time     `json:"timestamp"`
}

type ThrottleResult string

const (
	ThrottleInitial   ThrottleResult = "initial"
	ThrottleChanged   ThrottleResult = "changed"
	ThrottleUnchanged ThrottleResult = "unchanged"
)

// ThrottleMonitor notifies on the first reading and whenever the throttle
// value differs from the previous run. Every reading is also appended to
// HistoryFile, when set, for ThrottleReport.
type ThrottleMonitor struct {
	StateFile   string
	HistoryFile string
	Runner      Runner
	Notifier    notify.Notifier
	Logger      *log.Logger
	Now         func() time.Time
}

func (m *ThrottleMonitor) Check(ctx context.Context) (ThrottleResult, error) {
	raw, err := m.Runner.Run(ctx, "vcgencmd", "get_throttled")
	if err != nil {
		return "", err
	}
	value, err := ParseThrottled(raw)
	if err != nil {
		return "", err
	}
	flags := DecodeThrottled(value)
	m.Logger.Info("Throttle state", "raw", raw, "value", fmt.Sprintf("0x%X", value))
	m.Logger.Info("Throttle flags", "flags", flags.Active())

	prev, err := m.load()
	if err != nil {
		m.Logger.Warn("Ignoring unreadable throttle state", "file", m.StateFile, "err", err)
	}

	host := hostname()
	result := ThrottleUnchanged
	switch {
	case prev == nil:
		result = ThrottleInitial
		m.notify(ctx, notify.Message{
			Title:    fmt.Sprintf("[%s] throttled initial", host),
			Body:     fmt.Sprintf("raw: %s\n\n%s", raw, flags.Describe()),
			Tags:     []string{"raspi", "throttle"},
			Priority: 3,
		})
	case prev.Value != value || prev.Flags != flags:
		result = ThrottleChanged
		m.notify(ctx, notify.Message{
			Title:    fmt.Sprintf("[%s] throttled changed", host),
			Body:     fmt.Sprintf("previous: 0x%X, now: 0x%X\nraw: %s\n\n%s", prev.Value, value, raw, flags.Describe()),
			Tags:     []string{"raspi", "throttle", "change"},
			Priority: 4,
		})
	}

	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	reading := ThrottleState{Value: value, Flags: flags, Timestamp: now()}
	if err := m.save(reading); err != nil {
		m.Logger.Error("Could not save throttle state", "file", m.StateFile, "err", err)
	}
	if m.HistoryFile != "" {
		if err := AppendThrottleHistory(m.HistoryFile, reading); err != nil {
			m.Logger.Error("Could not append throttle history", "file", m.HistoryFile, "err", err)
		}
	}
	return result, nil
}

func (m *ThrottleMonitor) load() (*ThrottleState, error) {
	data, err := os.ReadFile(m.StateFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var st ThrottleState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (m *ThrottleMonitor) save(st ThrottleState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.StateFile), 0o755); err != nil {
		return err
	}
	return os.WriteFile(m.StateFile, data, 0o644)
}

func (m *ThrottleMonitor) notify(ctx context.Context, msg notify.Message) {
	if err := m.Notifier.Notify(ctx, msg); err != nil {
		m.Logger.Error("Could not send notification", "err", err)
	}
}
