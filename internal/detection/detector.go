package detection

import (
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"spotwatch/internal/fuzzy"
	"spotwatch/internal/logging"
	"spotwatch/internal/srt"
)

// Detector matches spots against recordings. It holds only configuration and
// is safe for concurrent use.
type Detector struct {
	matcher       fuzzy.Matcher
	clusterWindow float64
	workers       int
	logger        *slog.Logger
	now           func() time.Time
}

// Option customizes a Detector.
type Option func(*Detector)

// WithClusterWindow replaces the spot duration as the dedup window. Values
// of zero or below keep the spot duration.
func WithClusterWindow(seconds float64) Option {
	return func(d *Detector) {
		d.clusterWindow = seconds
	}
}

// WithWorkers bounds how many recordings are matched at once. Values below
// one use the CPU count.
func WithWorkers(n int) Option {
	return func(d *Detector) {
		d.workers = n
	}
}

// WithLogger sets the logger used for skipped inputs.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// WithClock overrides the source of Detection.CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// New constructs a Detector around matcher.
func New(matcher fuzzy.Matcher, opts ...Option) *Detector {
	d := &Detector{matcher: matcher, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = runtime.NumCPU()
	}
	d.logger = logging.NewComponentLogger(logging.OrNop(d.logger), "detector")
	return d
}

// Detect returns every airing of the spot found in recordings, ordered by
// recording ID then start time. An unparseable spot yields no detections.
func (d *Detector) Detect(spotID int64, spotContent string, recordings []Recording) []Detection {
	spot := d.parseSpot(spotID, spotContent)
	if len(spot) == 0 {
		return nil
	}
	return d.detectSegments(spotID, spot, d.Prepare(recordings))
}

// DetectPrepared is Detect for recordings already returned by Prepare.
func (d *Detector) DetectPrepared(spotID int64, spotContent string, recordings []PreparedRecording) []Detection {
	spot := d.parseSpot(spotID, spotContent)
	if len(spot) == 0 {
		return nil
	}
	return d.detectSegments(spotID, spot, recordings)
}

func (d *Detector) parseSpot(spotID int64, content string) []srt.Segment {
	logger := d.logger.With(logging.Int64(logging.FieldSpotID, spotID))
	spot := srt.Parse(content, logger)
	if len(spot) == 0 {
		logging.WarnWithContext(logger, "spot has no subtitle segments", "spot_empty",
			logging.String(logging.FieldImpact, "spot skipped"),
			logging.String(logging.FieldErrorHint, "check that the spot file is a valid SRT transcript"),
		)
	}
	return spot
}

// Prepare parses recordings and their day anchors. Recordings without
// segments are logged and left out; a malformed anchor is logged and
// treated as midnight.
func (d *Detector) Prepare(recordings []Recording) []PreparedRecording {
	slots := make([]*PreparedRecording, len(recordings))
	d.forEach(len(recordings), func(i int) {
		rec := recordings[i]
		logger := d.logger.With(logging.Int64(logging.FieldRecordingID, rec.ID))

		segments := srt.Parse(rec.Content, logger)
		if len(segments) == 0 {
			logging.WarnWithContext(logger, "recording has no subtitle segments", "recording_empty",
				logging.String(logging.FieldImpact, "recording skipped"),
			)
			return
		}
		base, err := srt.ParseClock(rec.DayAnchor)
		if err != nil {
			logging.WarnWithContext(logger, "invalid recording day anchor", "day_anchor_invalid",
				logging.String("day_anchor", rec.DayAnchor),
				logging.Error(err),
				logging.String(logging.FieldImpact, "times are reported relative to midnight"),
			)
			base = 0
		}
		slots[i] = &PreparedRecording{ID: rec.ID, BaseSeconds: base, Segments: segments}
	})

	prepared := make([]PreparedRecording, 0, len(recordings))
	for _, p := range slots {
		if p != nil {
			prepared = append(prepared, *p)
		}
	}
	return prepared
}

func (d *Detector) detectSegments(spotID int64, spot []srt.Segment, recordings []PreparedRecording) []Detection {
	duration, anchor := SpotTiming(spot)
	window := duration
	if d.clusterWindow > 0 {
		window = d.clusterWindow
	}
	created := d.now()

	// Recording IDs may repeat, so candidates are grouped after the join.
	slots := make([][]Detection, len(recordings))
	d.forEach(len(recordings), func(i int) {
		slots[i] = d.matchRecording(spotID, spot, anchor, duration, recordings[i], created)
	})

	groups := make(map[int64][]Detection)
	order := make([]int64, 0, len(recordings))
	for i, candidates := range slots {
		id := recordings[i].ID
		if _, seen := groups[id]; !seen {
			order = append(order, id)
			groups[id] = nil
		}
		groups[id] = append(groups[id], candidates...)
	}

	var detections []Detection
	for _, id := range order {
		detections = append(detections, Deduplicate(groups[id], window)...)
	}
	sort.SliceStable(detections, func(i, j int) bool {
		if detections[i].RecordingID != detections[j].RecordingID {
			return detections[i].RecordingID < detections[j].RecordingID
		}
		return detections[i].StartSeconds < detections[j].StartSeconds
	})
	return detections
}

func (d *Detector) matchRecording(spotID int64, spot []srt.Segment, anchor, duration float64, rec PreparedRecording, created time.Time) []Detection {
	var candidates []Detection
	for _, spotSeg := range spot {
		offset := spotSeg.StartSeconds - anchor
		for _, recSeg := range rec.Segments {
			result := d.matcher.Find(spotSeg.Text, recSeg.Text)
			if !result.Found || result.Confidence < d.matcher.Threshold {
				continue
			}
			estimatedStart := recSeg.StartSeconds - offset
			start := rec.BaseSeconds + estimatedStart
			end := start + duration
			candidates = append(candidates, Detection{
				SpotID:       spotID,
				RecordingID:  rec.ID,
				StartTime:    srt.FormatTimeOfDay(start),
				EndTime:      srt.FormatTimeOfDay(end),
				StartSeconds: start,
				EndSeconds:   end,
				Confidence:   result.Confidence,
				Kind:         KindFor(result.Confidence),
				CreatedAt:    created,
			})
		}
	}
	return candidates
}

// forEach runs fn for every index in [0, n) on at most d.workers goroutines
// and returns once all calls have finished.
func (d *Detector) forEach(n int, fn func(i int)) {
	workers := d.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	work := make(chan int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		work <- i
	}
	close(work)
	wg.Wait()
}
