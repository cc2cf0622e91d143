package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/robfig/cron/v3"

	"spotwatch/internal/analysis"
	"spotwatch/internal/config"
	"spotwatch/internal/fileutil"
	"spotwatch/internal/ingest"
	"spotwatch/internal/logging"
	"spotwatch/internal/notifications"
	"spotwatch/internal/store"
)

const failedSubdir = "failed"

// TickResult summarizes one inbox scan.
type TickResult struct {
	Spots      ingest.ImportSummary
	Recordings ingest.ImportSummary
	// Analysis is nil when the tick did not run an analysis.
	Analysis *analysis.Summary
}

// Idle reports whether the tick found nothing to do.
func (r TickResult) Idle() bool {
	return r.Analysis == nil &&
		r.Spots.Added+r.Spots.Skipped+len(r.Spots.Failures) == 0 &&
		r.Recordings.Added+r.Recordings.Skipped+len(r.Recordings.Failures) == 0
}

// Watcher imports inbox files on a cron schedule.
type Watcher struct {
	cfg      *config.Config
	importer *ingest.Importer
	analysis *analysis.Service
	notifier notifications.Service
	logger   *slog.Logger
	cron     *cron.Cron

	mu sync.Mutex
	// Work left over from a tick whose analysis could not take the lock.
	pendingAll        bool
	pendingRecordings []int64
}

// New constructs a Watcher. The schedule is validated here; the scheduler
// does not start until Start is called.
func New(cfg *config.Config, st *store.Store, svc *analysis.Service, notifier notifications.Service, logger *slog.Logger) (*Watcher, error) {
	logger = logging.NewComponentLogger(logging.OrNop(logger), "watch")
	cl := cronLogger{logger: logger}
	w := &Watcher{
		cfg:      cfg,
		importer: ingest.NewImporter(st, logger),
		analysis: svc,
		notifier: notifier,
		logger:   logger,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
	if _, err := cron.ParseStandard(cfg.Watch.Schedule); err != nil {
		return nil, fmt.Errorf("invalid watch schedule %q: %w", cfg.Watch.Schedule, err)
	}
	return w, nil
}

// Start schedules ticks until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.cfg.Watch.Schedule, func() {
		if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("watch tick failed", logging.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule watch: %w", err)
	}
	w.cron.Start()
	spots, recordings, _ := w.cfg.InboxDirs()
	w.logger.Info("watcher started",
		logging.String("schedule", w.cfg.Watch.Schedule),
		logging.String("spots_dir", spots),
		logging.String("recordings_dir", recordings),
		logging.Bool("notify_run_completed", w.cfg.Notifications.RunCompleted),
		logging.Bool("notify_errors", w.cfg.Notifications.Errors),
	)
	return nil
}

// Stop halts the scheduler and returns a context that is done once any
// running tick has finished.
func (w *Watcher) Stop() context.Context {
	done := w.cron.Stop()
	w.logger.Info("watcher stopped")
	return done
}

// RunOnce performs a single scan: import, archive, analyze, notify. Ticks
// are serialized.
func (w *Watcher) RunOnce(ctx context.Context) (TickResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var result TickResult
	spotsDir, recordingsDir, processedDir := w.cfg.InboxDirs()

	spotFiles, err := inboxFiles(spotsDir)
	if err != nil {
		return result, err
	}
	recordingFiles, err := inboxFiles(recordingsDir)
	if err != nil {
		return result, err
	}

	if len(spotFiles) > 0 {
		result.Spots, err = w.importer.ImportSpots(ctx, spotFiles)
		if err != nil {
			return result, err
		}
		w.archive(spotFiles, result.Spots, processedDir)
	}
	if len(recordingFiles) > 0 {
		result.Recordings, err = w.importer.ImportRecordings(ctx, recordingFiles, "")
		if err != nil {
			return result, err
		}
		w.archive(recordingFiles, result.Recordings, processedDir)
	}
	if failed := len(result.Spots.Failures) + len(result.Recordings.Failures); failed > 0 {
		w.notifyError(ctx, fmt.Errorf("%d inbox files could not be imported", failed), "inbox import")
	}

	w.pendingAll = w.pendingAll || result.Spots.Added > 0
	if !w.pendingAll {
		w.pendingRecordings = append(w.pendingRecordings, result.Recordings.AddedIDs...)
	}
	if !w.pendingAll && len(w.pendingRecordings) == 0 {
		return result, nil
	}

	req := analysis.Request{}
	if !w.pendingAll {
		req.RecordingIDs = w.pendingRecordings
	}
	summary, err := w.analysis.Run(ctx, req)
	if errors.Is(err, analysis.ErrRunInProgress) {
		logging.WarnWithContext(w.logger, "analysis deferred to next tick", "analysis_deferred",
			logging.Error(err),
			logging.String(logging.FieldImpact, "new files will be analyzed on the next tick"),
		)
		return result, nil
	}
	w.pendingAll = false
	w.pendingRecordings = nil
	if err != nil {
		w.notifyError(ctx, err, "analysis")
		return result, err
	}
	result.Analysis = &summary
	if err := w.notifier.NotifyRunCompleted(ctx, summary); err != nil {
		w.logger.Warn("run notification failed", logging.Error(err))
	}
	return result, nil
}

// archive moves imported and duplicate files to the processed directory and
// failed ones to its failed subdirectory so they are not retried every tick.
func (w *Watcher) archive(paths []string, summary ingest.ImportSummary, processedDir string) {
	failed := make(map[string]bool, len(summary.Failures))
	for _, f := range summary.Failures {
		failed[f.Path] = true
	}
	for _, path := range paths {
		dir := processedDir
		if failed[path] {
			dir = filepath.Join(processedDir, failedSubdir)
		}
		dst, err := fileutil.MoveInto(path, dir)
		if err != nil {
			logging.WarnWithContext(w.logger, "failed to archive inbox file", "archive_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file will be seen again next tick"),
			)
			continue
		}
		w.logger.Debug("archived inbox file", logging.String("path", path), logging.String("dest", dst))
	}
}

func (w *Watcher) notifyError(ctx context.Context, err error, label string) {
	if nerr := w.notifier.NotifyError(ctx, err, label); nerr != nil {
		w.logger.Warn("error notification failed", logging.Error(nerr))
	}
}

// inboxFiles lists the .srt files in dir, creating it when missing.
func inboxFiles(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox dir %s: %w", dir, err)
	}
	return ingest.CollectFiles([]string{dir})
}
