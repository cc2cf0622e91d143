package analysis_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/flock"

	"spotwatch/internal/analysis"
	"spotwatch/internal/store"
	"spotwatch/internal/testsupport"
)

var promo = testsupport.SRT(
	testsupport.Cue{Start: "00:00:00,000", End: "00:00:02,000", Text: "promo code alpha"},
	testsupport.Cue{Start: "00:00:02,000", End: "00:00:05,000", Text: "available in all stores"},
)

func seed(t *testing.T, st *store.Store) (spot *store.Spot, tf1, m6 *store.Recording) {
	t.Helper()
	spot = testsupport.AddSpot(t, st, "alpha", promo)
	airing := testsupport.SRT(
		testsupport.Cue{Start: "00:01:40,000", End: "00:01:42,000", Text: "promo code alpha"},
		testsupport.Cue{Start: "00:01:42,000", End: "00:01:45,000", Text: "available in all stores"},
		testsupport.Cue{Start: "00:20:00,000", End: "00:20:02,000", Text: "promo code alpha"},
	)
	tf1 = testsupport.AddRecording(t, st, "TF1_2024-03-01_06-00-00_07-00-00.srt", "TF1", "2024-03-01", "06:00:00", airing)
	m6 = testsupport.AddRecording(t, st, "M6_2024-03-01_12-00-00_13-00-00.srt", "M6", "2024-03-01", "12:00:00",
		testsupport.SRT(testsupport.Cue{Start: "00:00:10,000", End: "00:00:12,000", Text: "the evening news"}))
	return spot, tf1, m6
}

func TestRunPersistsDetectionsAndRecordsRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	spot, tf1, _ := seed(t, st)

	var progress []analysis.Progress
	svc := analysis.NewService(cfg, st, nil)
	summary, err := svc.Run(ctx, analysis.Request{Progress: func(p analysis.Progress) { progress = append(progress, p) }})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RunID == "" || summary.Spots != 1 || summary.Recordings != 2 || summary.Detections != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(summary.PerSpot) != 1 || summary.PerSpot[0].Exact != 2 {
		t.Fatalf("unexpected per-spot results %+v", summary.PerSpot)
	}
	if len(progress) != 1 || progress[0].Done != 1 || progress[0].Total != 1 {
		t.Fatalf("unexpected progress %+v", progress)
	}

	got, err := st.ListDetections(ctx, store.DetectionFilter{SpotIDs: []int64{spot.ID}})
	if err != nil {
		t.Fatalf("ListDetections: %v", err)
	}
	if len(got) != 2 || got[0].RecordingID != tf1.ID || got[0].StartTime != "06:01:40,000" || got[1].StartTime != "06:20:00,000" {
		t.Fatalf("unexpected detections %+v", got)
	}
	if got[0].RunID != summary.RunID {
		t.Fatalf("detection run id %q, want %q", got[0].RunID, summary.RunID)
	}

	run, err := st.GetRun(ctx, summary.RunID)
	if err != nil || run.Status != store.RunCompleted || run.DetectionCount != 2 {
		t.Fatalf("unexpected run %+v err=%v", run, err)
	}

	// A second run replaces rather than duplicates.
	if _, err := svc.Run(ctx, analysis.Request{}); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	again, err := st.ListDetections(ctx, store.DetectionFilter{})
	if err != nil || len(again) != 2 {
		t.Fatalf("expected 2 detections after rerun, got %d err=%v", len(again), err)
	}
}

func TestRunWithChannelFilterLeavesOtherRecordings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	seed(t, st)

	svc := analysis.NewService(cfg, st, nil)
	if _, err := svc.Run(ctx, analysis.Request{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	summary, err := svc.Run(ctx, analysis.Request{ChannelCodes: []string{"M6"}})
	if err != nil {
		t.Fatalf("Run M6: %v", err)
	}
	if summary.Recordings != 1 || summary.Detections != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	got, err := st.ListDetections(ctx, store.DetectionFilter{ChannelCodes: []string{"TF1"}})
	if err != nil || len(got) != 2 {
		t.Fatalf("TF1 detections should survive an M6-only run, got %d err=%v", len(got), err)
	}
}

func TestRunWithNothingToAnalyze(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	summary, err := analysis.NewService(cfg, st, nil).Run(context.Background(), analysis.Request{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.Empty() || summary.RunID != "" {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
	runs, err := st.ListRuns(context.Background(), 0)
	if err != nil || len(runs) != 0 {
		t.Fatalf("expected no recorded runs, got %+v err=%v", runs, err)
	}
}

func TestRunRefusesWhenLockHeld(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seed(t, st)

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock: locked=%v err=%v", locked, err)
	}
	defer lock.Unlock()

	_, err = analysis.NewService(cfg, st, nil).Run(context.Background(), analysis.Request{})
	if !errors.Is(err, analysis.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seed(t, st)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := analysis.NewService(cfg, st, nil).Run(ctx, analysis.Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
