package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"spotwatch/internal/srt"
)

// ErrBadRecordingName reports a recording file name that does not follow
// CHANNEL_YYYY-MM-DD_HH-MM-SS_HH-MM-SS.srt.
var ErrBadRecordingName = errors.New("recording file name must be CHANNEL_YYYY-MM-DD_HH-MM-SS_HH-MM-SS.srt")

var recordingNamePattern = regexp.MustCompile(`^([^_]+)_(\d{4}-\d{2}-\d{2})_(\d{2}-\d{2}-\d{2})_(\d{2}-\d{2}-\d{2})\.(?i:srt)$`)

// RecordingName holds the fields encoded in a recording file name. Times are
// HH:MM:SS.
type RecordingName struct {
	ChannelCode string
	Date        string
	StartsAt    string
	EndsAt      string
}

// ParseRecordingName decodes the base name of path.
func ParseRecordingName(path string) (RecordingName, error) {
	base := filepath.Base(path)
	match := recordingNamePattern.FindStringSubmatch(base)
	if match == nil {
		return RecordingName{}, fmt.Errorf("%s: %w", base, ErrBadRecordingName)
	}
	if _, err := time.Parse(time.DateOnly, match[2]); err != nil {
		return RecordingName{}, fmt.Errorf("%s: invalid date %q: %w", base, match[2], ErrBadRecordingName)
	}
	name := RecordingName{
		ChannelCode: match[1],
		Date:        match[2],
		StartsAt:    strings.ReplaceAll(match[3], "-", ":"),
		EndsAt:      strings.ReplaceAll(match[4], "-", ":"),
	}
	for _, clock := range []string{name.StartsAt, name.EndsAt} {
		if _, err := srt.ParseClock(clock); err != nil {
			return RecordingName{}, fmt.Errorf("%s: %w", base, ErrBadRecordingName)
		}
	}
	return name, nil
}

// SpotName derives a spot name from its file path: the base name without
// the .srt extension.
func SpotName(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".srt") {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// IsSRT reports whether path has an .srt extension.
func IsSRT(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".srt")
}
