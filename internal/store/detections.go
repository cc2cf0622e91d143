package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"spotwatch/internal/detection"
)

const detectionSelect = `SELECT d.id, COALESCE(d.run_id, ''), d.spot_id, s.name, d.recording_id, r.file_name,
       c.code, c.name, r.recorded_on, d.start_time, d.end_time, d.start_seconds, d.end_seconds,
       d.confidence, d.kind, d.detected_at
FROM detections d
JOIN spots s ON s.id = d.spot_id
JOIN recordings r ON r.id = d.recording_id
JOIN channels c ON c.id = r.channel_id`

func scanDetection(row scanner) (*Detection, error) {
	var (
		d        Detection
		detected string
	)
	if err := row.Scan(&d.ID, &d.RunID, &d.SpotID, &d.SpotName, &d.RecordingID, &d.FileName,
		&d.ChannelCode, &d.ChannelName, &d.RecordedOn, &d.StartTime, &d.EndTime,
		&d.StartSeconds, &d.EndSeconds, &d.Confidence, &d.Kind, &detected); err != nil {
		return nil, err
	}
	d.DetectedAt = parseTimeOrZero(detected)
	return &d, nil
}

// deleteChunkSize keeps each DELETE well below SQLite's bound parameter limit.
const deleteChunkSize = 500

// ReplaceDetections stores the detections of one spot over a set of
// recordings. Existing rows for every (spotID, recording) pair in
// recordingIDs are removed first, so recordings analyzed without hits end up
// with none. Detections for other recordings are untouched.
func (s *Store) ReplaceDetections(ctx context.Context, runID string, spotID int64, recordingIDs []int64, detections []detection.Detection) error {
	ctx = ensureContext(ctx)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for chunk := range slices.Chunk(recordingIDs, deleteChunkSize) {
			args := append([]any{spotID}, int64Args(chunk)...)
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM detections WHERE spot_id = ? AND recording_id IN (`+makePlaceholders(len(chunk))+`)`,
				args...,
			); err != nil {
				return fmt.Errorf("clear detections: %w", err)
			}
		}
		if len(detections) == 0 {
			return nil
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO detections (spot_id, recording_id, run_id, start_time, end_time,
                start_seconds, end_seconds, confidence, kind, detected_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()
		for _, d := range detections {
			detectedAt := d.CreatedAt
			if detectedAt.IsZero() {
				detectedAt = s.now()
			}
			if _, err := stmt.ExecContext(ctx,
				spotID, d.RecordingID, nullableString(runID), d.StartTime, d.EndTime,
				d.StartSeconds, d.EndSeconds, d.Confidence, string(d.Kind),
				detectedAt.UTC().Format(time.RFC3339Nano),
			); err != nil {
				return fmt.Errorf("insert detection: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace detections for spot %d: %w", spotID, err)
	}
	return nil
}

// ListDetections returns detections matching filter ordered by recording
// date, channel and start time.
func (s *Store) ListDetections(ctx context.Context, filter DetectionFilter) ([]Detection, error) {
	var w where
	w.in("d.spot_id", int64Args(filter.SpotIDs))
	w.in("c.code", stringArgs(filter.ChannelCodes))
	if filter.From != "" {
		w.add("r.recorded_on >= ?", filter.From)
	}
	if filter.To != "" {
		w.add("r.recorded_on <= ?", filter.To)
	}
	if filter.Kind != "" {
		w.add("d.kind = ?", filter.Kind)
	}
	if filter.MinConfidence > 0 {
		w.add("d.confidence >= ?", filter.MinConfidence)
	}
	if filter.RunID != "" {
		w.add("d.run_id = ?", filter.RunID)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx),
		detectionSelect+w.String()+` ORDER BY r.recorded_on, c.code, d.start_seconds, d.id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list detections: %w", err)
	}
	defer rows.Close()

	var detections []Detection
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan detection: %w", err)
		}
		detections = append(detections, *d)
	}
	return detections, rows.Err()
}

// DeleteDetectionsForSpot removes every detection of a spot and reports how
// many rows were deleted.
func (s *Store) DeleteDetectionsForSpot(ctx context.Context, spotID int64) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM detections WHERE spot_id = ?`, spotID)
	if err != nil {
		return 0, fmt.Errorf("delete detections: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
