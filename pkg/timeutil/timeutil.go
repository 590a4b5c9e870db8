// Package timeutil formats and parses clip timestamps.
package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTime formats seconds as H:MM:SS (e.g. 0:01:30, 1:11:22).
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatTimestamp formats seconds as H:MM:SS.mmm, the form passed to ffmpeg -ss.
// Milliseconds are rounded, so 12.9996 becomes 0:00:13.000.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	m := (ms % 3_600_000) / 60_000
	s := (ms % 60_000) / 1000
	return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms%1000)
}

// FormatSeconds renders a duration in seconds for ffmpeg -t, trimming
// trailing zeros ("3", "2.5", "0.125").
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

// ParseTimeToSeconds parses H:MM:SS, MM:SS, or raw seconds. The last
// component may carry a fraction ("1:02.5").
func ParseTimeToSeconds(timeStr string) (float64, error) {
	s := strings.TrimSpace(timeStr)
	parts := strings.Split(s, ":")
	if s == "" || len(parts) > 3 {
		return 0, fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got '%s'", timeStr)
	}

	var total float64
	for i, p := range parts {
		last := i == len(parts)-1
		var v float64
		if last {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return 0, fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got '%s'", timeStr)
			}
			v = f
		} else {
			n, err := strconv.Atoi(p)
			if err != nil {
				return 0, fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got '%s'", timeStr)
			}
			v = float64(n)
		}
		if v < 0 || (len(parts) > 1 && i > 0 && v >= 60) {
			return 0, fmt.Errorf("component out of range in '%s'", timeStr)
		}
		total = total*60 + v
	}
	return total, nil
}
