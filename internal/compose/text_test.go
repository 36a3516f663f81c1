package compose

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeCapture(t *testing.T) {
	now := time.Date(2025, 12, 7, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		capture time.Time
		want    CaptureText
	}{
		{
			name:    "400 days",
			capture: now.AddDate(0, 0, -400),
			want:    CaptureText{Date: "2024-11-02", Elapsed: "1 years ago", DaysAgo: "400 days ago (from today)"},
		},
		{
			name:    "months",
			capture: now.AddDate(0, 0, -95),
			want:    CaptureText{Date: "2025-09-03", Elapsed: "3 months ago", DaysAgo: "95 days ago (from today)"},
		},
		{
			name:    "same day",
			capture: now.Add(-2 * time.Hour),
			want:    CaptureText{Date: "2025-12-07", Elapsed: "Within a month", DaysAgo: "0 days ago (from today)"},
		},
		{
			name:    "future",
			capture: now.AddDate(0, 0, 3),
			want:    CaptureText{Date: "2025-12-10", Elapsed: "Within a month", DaysAgo: "3 days from today"},
		},
		{
			name:    "unknown",
			capture: time.Time{},
			want:    CaptureText{Date: "Unknown date", Elapsed: "Unknown date", DaysAgo: "Unknown date"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DescribeCapture(tc.capture, now))
		})
	}
}

func TestDescribeCaptureAcrossDaylightSaving(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	cases := []struct {
		name    string
		capture time.Time
		now     time.Time
		want    string
	}{
		{
			name:    "winter to summer",
			capture: time.Date(2024, 1, 10, 12, 0, 0, 0, berlin),
			now:     time.Date(2024, 7, 28, 12, 0, 0, 0, berlin),
			want:    "200 days ago (from today)",
		},
		{
			name:    "summer to winter",
			capture: time.Date(2024, 10, 26, 12, 0, 0, 0, berlin),
			now:     time.Date(2024, 10, 27, 12, 0, 0, 0, berlin),
			want:    "1 days ago (from today)",
		},
		{
			name:    "spring forward night",
			capture: time.Date(2024, 3, 30, 12, 0, 0, 0, berlin),
			now:     time.Date(2024, 3, 31, 12, 0, 0, 0, berlin),
			want:    "1 days ago (from today)",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DescribeCapture(tc.capture, tc.now).DaysAgo)
		})
	}
}

func TestDescribeCaptureFractionalFutureDay(t *testing.T) {
	now := time.Date(2025, 12, 7, 12, 0, 0, 0, time.UTC)
	// twelve hours ahead floors to -1 day
	got := DescribeCapture(now.Add(12*time.Hour), now)
	assert.Equal(t, "1 days from today", got.DaysAgo)
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "0d 00:00", FormatUptime(59*time.Second))
	assert.Equal(t, "0d 01:05", FormatUptime(time.Hour+5*time.Minute+30*time.Second))
	assert.Equal(t, "3d 23:59", FormatUptime(3*24*time.Hour+23*time.Hour+59*time.Minute+59*time.Second))
	assert.Equal(t, "0d 00:00", FormatUptime(-time.Minute))
}

func TestStatusLines(t *testing.T) {
	started := time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC)
	updated := time.Date(2025, 12, 3, 10, 30, 45, 0, time.UTC)

	assert.Equal(t, []string{
		"Updated: 2025-12-03 10:30",
		"Uptime: 2d 02:30",
	}, StatusLines(updated, started))
	assert.Equal(t, "#12", CounterBadge(12))
}
