package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const runColumns = "id, status, started_at, finished_at, spot_count, recording_count, detection_count, error_message"

func scanRun(row scanner) (*Run, error) {
	var (
		run      Run
		status   string
		started  string
		finished sql.NullString
		errMsg   sql.NullString
	)
	if err := row.Scan(&run.ID, &status, &started, &finished,
		&run.SpotCount, &run.RecordingCount, &run.DetectionCount, &errMsg); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.StartedAt = parseTimeOrZero(started)
	run.FinishedAt = parseNullTime(finished)
	run.Error = errMsg.String
	return &run, nil
}

// BeginRun records the start of an analysis run.
func (s *Store) BeginRun(ctx context.Context, id string, spotCount, recordingCount int) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("run id is required")
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO analysis_runs (id, status, started_at, spot_count, recording_count) VALUES (?, ?, ?, ?, ?)`,
		id, RunRunning, s.timestamp(), spotCount, recordingCount,
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun closes a run. A nil runErr marks it completed; a cancelled
// context marks it cancelled; any other error marks it failed.
func (s *Store) FinishRun(ctx context.Context, id string, detectionCount int, runErr error) error {
	status := RunCompleted
	var message string
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		status, message = RunCancelled, runErr.Error()
	default:
		status, message = RunFailed, runErr.Error()
	}
	// The run's own context may already be cancelled; the bookkeeping still
	// has to land.
	res, err := s.execWithRetry(context.WithoutCancel(ensureContext(ctx)),
		`UPDATE analysis_runs SET status = ?, finished_at = ?, detection_count = ?, error_message = ? WHERE id = ?`,
		status, s.timestamp(), detectionCount, nullableString(message), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return requireAffected(res, "run", id)
}

// GetRun fetches a run by identifier.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+runColumns+` FROM analysis_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit of zero or below
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM analysis_runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}
