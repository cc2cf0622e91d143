package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// UpsertChannel creates the channel when missing. A non-empty name replaces
// the stored one; a new channel without a name is labelled with its code.
func (s *Store) UpsertChannel(ctx context.Context, code, name string) (*Channel, error) {
	ctx = ensureContext(ctx)
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("channel code is required")
	}
	var channel *Channel
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		channel, err = upsertChannel(ctx, tx, code, strings.TrimSpace(name))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("upsert channel %s: %w", code, err)
	}
	return channel, nil
}

func upsertChannel(ctx context.Context, tx *sql.Tx, code, name string) (*Channel, error) {
	initial := name
	if initial == "" {
		initial = code
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO channels (code, name) VALUES (?, ?)
         ON CONFLICT(code) DO UPDATE SET name = COALESCE(NULLIF(?, ''), channels.name)`,
		code, initial, name,
	); err != nil {
		return nil, err
	}
	channel := &Channel{}
	err := tx.QueryRowContext(ctx, `SELECT id, code, name FROM channels WHERE code = ?`, code).
		Scan(&channel.ID, &channel.Code, &channel.Name)
	if err != nil {
		return nil, err
	}
	return channel, nil
}

// ListChannels returns every channel ordered by code.
func (s *Store) ListChannels(ctx context.Context) ([]Channel, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT id, code, name FROM channels ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		var c Channel
		if err := rows.Scan(&c.ID, &c.Code, &c.Name); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}

// RenameChannel changes the display name of a channel.
func (s *Store) RenameChannel(ctx context.Context, code, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("channel name is required")
	}
	res, err := s.execWithRetry(ctx, `UPDATE channels SET name = ? WHERE code = ?`, name, code)
	if err != nil {
		return fmt.Errorf("rename channel: %w", err)
	}
	return requireAffected(res, "channel", code)
}
