package srt

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"spotwatch/internal/logging"
)

// Segment is one subtitle cue. Index is informational only; ordering is the
// order of appearance in the source text.
type Segment struct {
	Index        int
	Start        string
	End          string
	StartSeconds float64
	EndSeconds   float64
	Text         string
}

// Duration returns the cue length in seconds.
func (s Segment) Duration() float64 {
	return s.EndSeconds - s.StartSeconds
}

var timingPattern = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2},\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2},\d{3})`)

// Parse converts SRT text into segments in source order. It never fails:
// blocks with fewer than three lines, a non-integer index or no timing line
// are dropped whole, and a nil logger discards diagnostics.
func Parse(content string, logger *slog.Logger) []Segment {
	logger = logging.OrNop(logger)

	blocks := splitBlocks(content)
	segments := make([]Segment, 0, len(blocks))
	for _, lines := range blocks {
		if len(lines) < 3 {
			logger.Debug("dropping short subtitle block", logging.Int("lines", len(lines)))
			continue
		}
		index, err := strconv.Atoi(lines[0])
		if err != nil {
			logger.Debug("dropping subtitle block with invalid index", logging.String("index", lines[0]))
			continue
		}
		match := timingPattern.FindStringSubmatch(lines[1])
		if match == nil {
			logger.Debug("dropping subtitle block without timing line",
				logging.Int("index", index),
				logging.String("timing", lines[1]),
			)
			continue
		}
		segments = append(segments, NewSegment(index, match[1], match[2], strings.Join(lines[2:], "\n"), logger))
	}
	return segments
}

// NewSegment builds a segment from raw timecodes. A timecode that cannot be
// converted is logged and recorded as 0 seconds; the segment is still
// returned with its original strings.
func NewSegment(index int, start, end, text string, logger *slog.Logger) Segment {
	seg := Segment{
		Index: index,
		Start: start,
		End:   end,
		Text:  strings.TrimSpace(text),
	}
	seg.StartSeconds = secondsOrZero(start, index, logger)
	seg.EndSeconds = secondsOrZero(end, index, logger)
	return seg
}

func secondsOrZero(timecode string, index int, logger *slog.Logger) float64 {
	seconds, err := ParseTimecode(timecode)
	if err != nil {
		logging.OrNop(logger).Error("invalid subtitle timecode",
			logging.Int("index", index),
			logging.String("timecode", timecode),
			logging.Error(err),
		)
		return 0
	}
	return seconds
}

// splitBlocks normalizes line endings, drops a leading byte order mark and
// splits on empty lines. A line holding only whitespace does not end a block;
// it is dropped from the block instead. Remaining lines are trimmed.
func splitBlocks(content string) [][]string {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var (
		blocks  [][]string
		current []string
	)
	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			current = append(current, trimmed)
		}
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}
