package compose

import (
	"fmt"
	"math"
	"time"
)

const unknownDate = "Unknown date"

// CaptureText is the content of the date overlay.
type CaptureText struct {
	Date    string // 2006-01-02
	Elapsed string // coarse bucket: years, months or "Within a month"
	DaysAgo string // exact day count relative to today
}

// DescribeCapture renders the date overlay lines for a capture time. A zero
// capture time means the date is unknown.
func DescribeCapture(capture, now time.Time) CaptureText {
	if capture.IsZero() {
		return CaptureText{Date: unknownDate, Elapsed: unknownDate, DaysAgo: unknownDate}
	}

	days := int(math.Floor(wallClock(now).Sub(wallClock(capture)).Hours() / 24))

	var elapsed string
	switch {
	case days >= 365:
		elapsed = fmt.Sprintf("%d years ago", days/365)
	case days >= 30:
		elapsed = fmt.Sprintf("%d months ago", days/30)
	default:
		elapsed = "Within a month"
	}

	var daysAgo string
	if days >= 0 {
		daysAgo = fmt.Sprintf("%d days ago (from today)", days)
	} else {
		daysAgo = fmt.Sprintf("%d days from today", -days)
	}

	return CaptureText{
		Date:    capture.Format("2006-01-02"),
		Elapsed: elapsed,
		DaysAgo: daysAgo,
	}
}

// wallClock keeps the calendar fields of t and drops its zone, so a day
// count is not shifted by a daylight saving change in between.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// StatusLines returns the update time and process uptime, both without
// seconds.
func StatusLines(updatedAt, startedAt time.Time) []string {
	return []string{
		"Updated: " + updatedAt.Format("2006-01-02 15:04"),
		"Uptime: " + FormatUptime(updatedAt.Sub(startedAt)),
	}
}

// FormatUptime formats d as "<days>d HH:MM".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	days := total / 86400
	rem := total % 86400
	return fmt.Sprintf("%dd %02d:%02d", days, rem/3600, (rem%3600)/60)
}

func CounterBadge(counter int) string {
	return fmt.Sprintf("#%d", counter)
}
