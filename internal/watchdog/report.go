package watchdog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

var ErrNoThrottleHistory = errors.New("no throttle readings recorded")

// AppendThrottleHistory adds one reading to the JSON-lines history file.
func AppendThrottleHistory(path string, st ThrottleState) error {
	line, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadThrottleHistory reads the readings taken at or after since. Lines that
// do not parse are skipped.
func LoadThrottleHistory(path string, since time.Time) ([]ThrottleState, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var readings []ThrottleState
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var st ThrottleState
		if err := json.Unmarshal(scanner.Bytes(), &st); err != nil {
			continue
		}
		if st.Timestamp.Before(since) {
			continue
		}
		readings = append(readings, st)
	}
	return readings, scanner.Err()
}

// ThrottleReport counts how often each flag was set over a run of readings.
type ThrottleReport struct {
	Samples int
	First   time.Time
	Last    time.Time
	Counts  map[string]int
}

func SummarizeThrottle(readings []ThrottleState) (ThrottleReport, error) {
	if len(readings) == 0 {
		return ThrottleReport{}, ErrNoThrottleHistory
	}

	r := ThrottleReport{
		Samples: len(readings),
		First:   readings[0].Timestamp,
		Last:    readings[0].Timestamp,
		Counts:  map[string]int{},
	}
	for _, st := range readings {
		if st.Timestamp.Before(r.First) {
			r.First = st.Timestamp
		}
		if st.Timestamp.After(r.Last) {
			r.Last = st.Timestamp
		}
		for _, nf := range st.Flags.named() {
			if nf.set {
				r.Counts[nf.name]++
			}
		}
	}
	return r, nil
}

// Days is the span between the first and the last reading.
func (r ThrottleReport) Days() float64 {
	return r.Last.Sub(r.First).Hours() / 24
}

// Advice suggests what to look at next, based on how often power and
// temperature problems showed up.
func (r ThrottleReport) Advice() []string {
	uvNow, uvPast := r.Counts["under_voltage_now"], r.Counts["under_voltage_past"]
	thrNow, thrPast := r.Counts["throttled_now"], r.Counts["throttled_past"]
	tempNow, tempPast := r.Counts["soft_temp_limit_now"], r.Counts["soft_temp_limit_past"]

	if uvNow+uvPast+thrNow+thrPast+tempNow+tempPast == 0 {
		return []string{
			"No under-voltage, throttling or temperature limit was recorded; the power supply looks fine.",
			"If the panel still hangs, suspect the driver, the SPI link or a loose cable rather than power.",
		}
	}

	var advice []string
	uvRatio := float64(uvPast) / float64(r.Samples)
	switch {
	case uvRatio >= 0.01:
		advice = append(advice,
			fmt.Sprintf("Under-voltage is frequent (%.1f%% of readings); the supply has little headroom.", uvRatio*100),
			"Use a good 5V/3A supply with a short cable.",
			"Keep other heavy jobs away from the panel refresh (check cron and systemd timers).",
			"If that does not help, move to a board with more power headroom.",
		)
	case uvPast > 0:
		advice = append(advice,
			"Under-voltage was recorded a few times; current peaks probably dip the supply.",
			"Try a shorter, thicker cable and compare with a spare adapter.",
		)
	}
	if thrPast > 0 || tempPast > 0 {
		advice = append(advice,
			"CPU throttling or the soft temperature limit was hit; check for heavy tasks overlapping the refresh.",
			"Consider a heatsink or fan, or spread heavy scripts over the day.",
		)
	}

	return append(advice, "Keep the throttle monitor running and compare reports before and after changing the power supply or board.")
}

// Write prints the summary, the per-flag counts and the advice.
func (r ThrottleReport) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Samples : %d\n", r.Samples)
	fmt.Fprintf(bw, "Period  : %s to %s\n", r.First.Format(time.DateTime), r.Last.Format(time.DateTime))
	fmt.Fprintf(bw, "Days    : %.1f\n\n", r.Days())

	fmt.Fprintln(bw, "Readings with the flag set:")
	for _, nf := range (ThrottleFlags{}).named() {
		fmt.Fprintf(bw, "  %-22s %d\n", nf.name, r.Counts[nf.name])
	}

	fmt.Fprintln(bw, "\nNext steps:")
	for _, a := range r.Advice() {
		fmt.Fprintf(bw, "  - %s\n", a)
	}
	return bw.Flush()
}
