package srt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SecondsPerDay is the wrap-around point for time-of-day values.
const SecondsPerDay = 86400

// ParseTimecode converts HH:MM:SS,mmm (a period is accepted for the
// millisecond separator) into seconds.
func ParseTimecode(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	parts := strings.Split(strings.ReplaceAll(trimmed, ",", "."), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timecode %q", value)
	}
	hours, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
	minutes, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
	seconds, errS := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if errH != nil || errM != nil || errS != nil {
		return 0, fmt.Errorf("invalid timecode %q", value)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("invalid timecode %q", value)
	}
	return float64(hours*3600+minutes*60) + seconds, nil
}

// FormatTimeOfDay renders seconds as HH:MM:SS,mmm after wrapping into a
// single day, so negative values and values past midnight land on the clock.
// Milliseconds are rounded to the nearest value.
func FormatTimeOfDay(seconds float64) string {
	const dayMillis = SecondsPerDay * 1000
	ms := int64(math.Round(seconds*1000)) % dayMillis
	if ms < 0 {
		ms += dayMillis
	}
	hours := ms / 3_600_000
	minutes := ms / 60_000 % 60
	secs := ms / 1000 % 60
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// ParseClock converts a day anchor (HH:MM or HH:MM:SS, optionally with a
// fractional second) into seconds since midnight.
func ParseClock(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	parts := strings.Split(trimmed, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	var seconds float64
	if len(parts) == 3 {
		seconds, err = strconv.ParseFloat(strings.ReplaceAll(parts[2], ",", "."), 64)
		if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 || seconds >= 60 {
			return 0, fmt.Errorf("invalid clock time %q", value)
		}
	}
	return float64(hours*3600+minutes*60) + seconds, nil
}
