package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"spotwatch/internal/config"
	"spotwatch/internal/detection"
	"spotwatch/internal/fuzzy"
	"spotwatch/internal/logging"
	"spotwatch/internal/store"
)

// ErrRunInProgress is returned when another process holds the analysis lock.
var ErrRunInProgress = errors.New("another analysis run is in progress")

// Request selects what a run analyzes. Empty fields select everything.
type Request struct {
	SpotIDs      []int64
	RecordingIDs []int64
	ChannelCodes []string
	From         string
	To           string
	// Progress, when set, is called after each spot completes. Calls are
	// serialized.
	Progress func(Progress)
}

// Progress reports a finished spot.
type Progress struct {
	Done       int
	Total      int
	SpotName   string
	Detections int
}

// SpotResult is the outcome for one spot.
type SpotResult struct {
	SpotID     int64  `json:"spot_id"`
	SpotName   string `json:"spot_name"`
	Detections int    `json:"detections"`
	Exact      int    `json:"exact"`
}

// Summary describes a finished run.
type Summary struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Spots      int           `json:"spots"`
	Recordings int           `json:"recordings"`
	Detections int           `json:"detections"`
	PerSpot    []SpotResult  `json:"per_spot"`
}

// Empty reports whether the run had nothing to analyze.
func (s Summary) Empty() bool {
	return s.Spots == 0 || s.Recordings == 0
}

// Service executes analysis runs.
type Service struct {
	cfg      *config.Config
	store    *store.Store
	logger   *slog.Logger
	newRunID func() string
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(cfg *config.Config, st *store.Store, logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		store:    st,
		logger:   logging.NewComponentLogger(logging.OrNop(logger), "analysis"),
		newRunID: uuid.NewString,
		now:      time.Now,
	}
}

// NewDetector builds a detector from the matching configuration.
func NewDetector(cfg *config.Config, logger *slog.Logger) *detection.Detector {
	return detection.New(
		fuzzy.Matcher{Threshold: cfg.Matching.Threshold, MaxDistance: cfg.Matching.MaxDistance},
		detection.WithClusterWindow(cfg.Matching.ClusterWindowSeconds),
		detection.WithWorkers(cfg.WorkerCount()),
		detection.WithLogger(logger),
	)
}

// Run analyzes the selected spots against the selected recordings. When
// either selection is empty nothing is recorded and an empty summary is
// returned. Cancellation is honoured between spots; spots already finished
// stay persisted and the run is marked cancelled.
func (s *Service) Run(ctx context.Context, req Request) (Summary, error) {
	lock := flock.New(s.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire analysis lock: %w", err)
	}
	if !locked {
		return Summary{}, ErrRunInProgress
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("failed to release analysis lock", logging.Error(err))
		}
	}()

	spots, err := s.store.ListSpots(ctx, req.SpotIDs...)
	if err != nil {
		return Summary{}, err
	}
	recordings, err := s.store.ListRecordings(ctx, store.RecordingFilter{
		IDs:          req.RecordingIDs,
		ChannelCodes: req.ChannelCodes,
		From:         req.From,
		To:           req.To,
	})
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{StartedAt: s.now(), Spots: len(spots), Recordings: len(recordings)}
	if summary.Empty() {
		s.logger.Info("nothing to analyze",
			logging.Int("spots", len(spots)),
			logging.Int("recordings", len(recordings)),
		)
		return summary, nil
	}

	summary.RunID = s.newRunID()
	ctx = logging.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, s.logger)

	if err := s.store.BeginRun(ctx, summary.RunID, len(spots), len(recordings)); err != nil {
		return summary, err
	}
	logger.Info("analysis started",
		logging.Int("spots", len(spots)),
		logging.Int("recordings", len(recordings)),
	)

	runErr := s.analyze(ctx, logger, spots, recordings, req.Progress, &summary)
	summary.Duration = s.now().Sub(summary.StartedAt)

	if err := s.store.FinishRun(ctx, summary.RunID, summary.Detections, runErr); err != nil {
		logger.Error("failed to record run outcome", logging.Error(err))
	}
	if runErr != nil {
		logging.ErrorWithContext(logger, "analysis failed", "analysis_failed",
			logging.Error(runErr),
			logging.Int("detections", summary.Detections),
		)
		return summary, runErr
	}
	logger.Info("analysis finished",
		logging.Int("detections", summary.Detections),
		logging.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (s *Service) analyze(
	ctx context.Context,
	logger *slog.Logger,
	spots []store.Spot,
	recordings []store.Recording,
	progress func(Progress),
	summary *Summary,
) error {
	detector := NewDetector(s.cfg, logger)
	prepared := detector.Prepare(toDetectionRecordings(recordings))
	recordingIDs := make([]int64, len(recordings))
	for i, rec := range recordings {
		recordingIDs[i] = rec.ID
	}

	concurrency := s.cfg.Matching.SpotConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		done     int
		results  = make([]*SpotResult, len(spots))
		sem      = make(chan struct{}, concurrency)
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for i, spot := range spots {
		select {
		case sem <- struct{}{}:
		case <-runCtx.Done():
		}
		if runCtx.Err() != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if runCtx.Err() != nil {
				return
			}

			found := detector.DetectPrepared(spot.ID, spot.Content, prepared)
			if err := s.store.ReplaceDetections(runCtx, summary.RunID, spot.ID, recordingIDs, found); err != nil {
				fail(fmt.Errorf("spot %s: %w", spot.Name, err))
				return
			}

			result := SpotResult{SpotID: spot.ID, SpotName: spot.Name, Detections: len(found)}
			for _, d := range found {
				if d.Kind == detection.KindExact {
					result.Exact++
				}
			}
			logger.Debug("spot analyzed",
				logging.Int64(logging.FieldSpotID, spot.ID),
				logging.String("spot", spot.Name),
				logging.Int("detections", result.Detections),
			)

			mu.Lock()
			defer mu.Unlock()
			results[i] = &result
			done++
			if progress != nil {
				progress(Progress{Done: done, Total: len(spots), SpotName: spot.Name, Detections: result.Detections})
			}
		}()
	}
	wg.Wait()

	for _, r := range results {
		if r == nil {
			continue
		}
		summary.PerSpot = append(summary.PerSpot, *r)
		summary.Detections += r.Detections
	}
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func toDetectionRecordings(recordings []store.Recording) []detection.Recording {
	out := make([]detection.Recording, len(recordings))
	for i, rec := range recordings {
		out[i] = detection.Recording{ID: rec.ID, Content: rec.Content, DayAnchor: rec.StartsAt}
	}
	return out
}
