package detection

import (
	"time"

	"spotwatch/internal/srt"
)

// Kind distinguishes verbatim hits from tolerant ones.
type Kind string

const (
	KindExact Kind = "exact"
	KindFuzzy Kind = "fuzzy"
)

// KindFor maps a confidence onto its detection kind.
func KindFor(confidence float64) Kind {
	if confidence == 100 {
		return KindExact
	}
	return KindFuzzy
}

// Recording is one broadcast capture to search. DayAnchor is the HH:MM:SS
// time of day the capture began.
type Recording struct {
	ID        int64
	Content   string
	DayAnchor string
}

// Detection is one airing of a spot inside a recording. StartSeconds and
// EndSeconds count from midnight of the recording day and may exceed a day
// when the airing crosses midnight; StartTime and EndTime are wrapped onto
// the clock.
type Detection struct {
	SpotID       int64     `json:"spot_id"`
	RecordingID  int64     `json:"recording_id"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	StartSeconds float64   `json:"start_seconds"`
	EndSeconds   float64   `json:"end_seconds"`
	Confidence   float64   `json:"confidence"`
	Kind         Kind      `json:"kind"`
	CreatedAt    time.Time `json:"created_at"`
}

// Duration returns the estimated airing length in seconds.
func (d Detection) Duration() float64 {
	return d.EndSeconds - d.StartSeconds
}

// SpotTiming returns the duration (end of the last segment) and anchor
// (start of the first segment) of a parsed spot. Both are zero for an empty
// spot.
func SpotTiming(segments []srt.Segment) (duration, anchor float64) {
	if len(segments) == 0 {
		return 0, 0
	}
	return segments[len(segments)-1].EndSeconds, segments[0].StartSeconds
}

// PreparedRecording is a recording whose transcript and day anchor have
// already been parsed. Several spots can be matched against the same set.
type PreparedRecording struct {
	ID          int64
	BaseSeconds float64
	Segments    []srt.Segment
}
