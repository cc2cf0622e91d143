package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const recordingSelect = `SELECT r.id, r.file_name, c.code, c.name, r.recorded_on, r.starts_at, r.ends_at, r.content, r.created_at
FROM recordings r JOIN channels c ON c.id = r.channel_id`

func scanRecording(row scanner) (*Recording, error) {
	var (
		rec     Recording
		created string
	)
	if err := row.Scan(&rec.ID, &rec.FileName, &rec.ChannelCode, &rec.ChannelName,
		&rec.RecordedOn, &rec.StartsAt, &rec.EndsAt, &rec.Content, &created); err != nil {
		return nil, err
	}
	rec.CreatedAt = parseTimeOrZero(created)
	return &rec, nil
}

// AddRecording stores a recording transcript, creating its channel when
// needed. ChannelName may be empty. A recording whose file name already
// exists is returned unchanged with created set to false.
func (s *Store) AddRecording(ctx context.Context, rec Recording) (stored *Recording, created bool, err error) {
	ctx = ensureContext(ctx)
	rec.FileName = strings.TrimSpace(rec.FileName)
	if rec.FileName == "" {
		return nil, false, errors.New("recording file name is required")
	}
	if strings.TrimSpace(rec.ChannelCode) == "" {
		return nil, false, errors.New("recording channel code is required")
	}

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		created = false
		err := tx.QueryRowContext(ctx, `SELECT id FROM recordings WHERE file_name = ?`, rec.FileName).Scan(&id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		channel, err := upsertChannel(ctx, tx, strings.TrimSpace(rec.ChannelCode), strings.TrimSpace(rec.ChannelName))
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO recordings (file_name, channel_id, recorded_on, starts_at, ends_at, content, created_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.FileName, channel.ID, rec.RecordedOn, rec.StartsAt, rec.EndsAt, rec.Content, s.timestamp(),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		created = err == nil
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("add recording %s: %w", rec.FileName, err)
	}
	stored, err = s.GetRecording(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// GetRecording fetches a recording by identifier.
func (s *Store) GetRecording(ctx context.Context, id int64) (*Recording, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), recordingSelect+` WHERE r.id = ?`, id)
	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recording %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get recording: %w", err)
	}
	return rec, nil
}

// ListRecordings returns recordings matching filter ordered by date, channel
// and start time.
func (s *Store) ListRecordings(ctx context.Context, filter RecordingFilter) ([]Recording, error) {
	var w where
	w.in("r.id", int64Args(filter.IDs))
	w.in("c.code", stringArgs(filter.ChannelCodes))
	if filter.From != "" {
		w.add("r.recorded_on >= ?", filter.From)
	}
	if filter.To != "" {
		w.add("r.recorded_on <= ?", filter.To)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx),
		recordingSelect+w.String()+` ORDER BY r.recorded_on, c.code, r.starts_at, r.id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	var recordings []Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		recordings = append(recordings, *rec)
	}
	return recordings, rows.Err()
}

// DeleteRecording removes a recording and its detections.
func (s *Store) DeleteRecording(ctx context.Context, id int64) error {
	res, err := s.execWithRetry(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recording: %w", err)
	}
	return requireAffected(res, "recording", id)
}
