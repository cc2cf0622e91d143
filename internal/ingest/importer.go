package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"spotwatch/internal/logging"
	"spotwatch/internal/srt"
	"spotwatch/internal/store"
)

// ErrNoSegments reports a transcript without a single parseable cue.
var ErrNoSegments = errors.New("no subtitle segments")

// Failure describes one file that could not be imported.
type Failure struct {
	Path string
	Err  error
}

// ImportSummary reports the outcome of an import batch. AddedIDs lists the
// rows created by this batch in input order.
type ImportSummary struct {
	Added    int
	Skipped  int
	AddedIDs []int64
	Failures []Failure
}

func (s *ImportSummary) fail(path string, err error) {
	s.Failures = append(s.Failures, Failure{Path: path, Err: err})
}

// Importer stores spot and recording files.
type Importer struct {
	store  *store.Store
	logger *slog.Logger
}

// NewImporter constructs an Importer writing to st.
func NewImporter(st *store.Store, logger *slog.Logger) *Importer {
	return &Importer{
		store:  st,
		logger: logging.NewComponentLogger(logging.OrNop(logger), "ingest"),
	}
}

// ImportSpots stores each file as a spot named after the file. Files that
// fail are recorded in the summary and the batch continues; only
// cancellation stops it early.
func (i *Importer) ImportSpots(ctx context.Context, paths []string) (ImportSummary, error) {
	var summary ImportSummary
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		content, err := i.readTranscript(path)
		if err != nil {
			i.reportFailure(&summary, path, err)
			continue
		}
		spot, created, err := i.store.AddSpot(ctx, SpotName(path), content)
		if err != nil {
			i.reportFailure(&summary, path, err)
			continue
		}
		i.record(&summary, spot.ID, created, "spot", spot.Name)
	}
	return summary, nil
}

// ImportRecordings stores each file as a recording described by its file
// name. channelName, when set, becomes the display name of the channels
// involved.
func (i *Importer) ImportRecordings(ctx context.Context, paths []string, channelName string) (ImportSummary, error) {
	var summary ImportSummary
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		name, err := ParseRecordingName(path)
		if err != nil {
			i.reportFailure(&summary, path, err)
			continue
		}
		content, err := i.readTranscript(path)
		if err != nil {
			i.reportFailure(&summary, path, err)
			continue
		}
		rec, created, err := i.store.AddRecording(ctx, store.Recording{
			FileName:    filepath.Base(path),
			ChannelCode: name.ChannelCode,
			ChannelName: channelName,
			RecordedOn:  name.Date,
			StartsAt:    name.StartsAt,
			EndsAt:      name.EndsAt,
			Content:     content,
		})
		if err != nil {
			i.reportFailure(&summary, path, err)
			continue
		}
		i.record(&summary, rec.ID, created, "recording", rec.FileName)
	}
	return summary, nil
}

func (i *Importer) readTranscript(path string) (string, error) {
	content, err := ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(srt.Parse(content, i.logger)) == 0 {
		return "", ErrNoSegments
	}
	return content, nil
}

func (i *Importer) record(summary *ImportSummary, id int64, created bool, kind, name string) {
	if !created {
		summary.Skipped++
		i.logger.Info(kind+" already imported", logging.String("name", name))
		return
	}
	summary.Added++
	summary.AddedIDs = append(summary.AddedIDs, id)
	i.logger.Info(kind+" imported", logging.String("name", name), logging.Int64("id", id))
}

func (i *Importer) reportFailure(summary *ImportSummary, path string, err error) {
	summary.fail(path, err)
	logging.WarnWithContext(i.logger, "import failed", "import_failed",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldImpact, "file skipped"),
	)
}

// CollectFiles expands directories in paths to the .srt files they contain
// (not recursive, sorted by name). Plain file paths are kept as given.
func CollectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", path, err)
		}
		var found []string
		for _, entry := range entries {
			if entry.Type().IsRegular() && IsSRT(entry.Name()) {
				found = append(found, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
