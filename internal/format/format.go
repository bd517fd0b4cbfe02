// Package format renders durations and byte counts for terminal output
// and log fields.
package format

import (
	"fmt"
	"time"
)

// Duration renders d as a clock reading: MM:SS under an hour, HH:MM:SS
// from an hour up. Sub-second precision is dropped.
func Duration(d time.Duration) string {
	total := int64(d / time.Second)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// DurationHuman renders d in compact prose units: "2h", "1h30m", "30m",
// "45s". Meant for log lines and progress messages where a clock
// reading is overkill. Seconds are dropped once minutes appear.
func DurationHuman(d time.Duration) string {
	h := d / time.Hour
	m := d % time.Hour / time.Minute
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh%dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", d/time.Second)
	}
}

// Size renders a byte count in the largest round unit: "18 MB",
// "512 KB", "42 bytes". Unit divisions truncate. There is no GB unit;
// audio files large enough to need one stay in MB.
func Size(n int64) string {
	const (
		kb int64 = 1 << 10
		mb int64 = 1 << 20
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%d MB", n/mb)
	case n >= kb:
		return fmt.Sprintf("%d KB", n/kb)
	case n == 1:
		return "1 byte"
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
