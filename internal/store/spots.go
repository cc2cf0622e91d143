package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const spotColumns = "id, name, content, created_at"

func scanSpot(row scanner) (*Spot, error) {
	var (
		spot    Spot
		created string
	)
	if err := row.Scan(&spot.ID, &spot.Name, &spot.Content, &created); err != nil {
		return nil, err
	}
	spot.CreatedAt = parseTimeOrZero(created)
	return &spot, nil
}

// AddSpot stores a spot transcript. When a spot with the same name already
// exists it is returned unchanged with created set to false.
func (s *Store) AddSpot(ctx context.Context, name, content string) (spot *Spot, created bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, errors.New("spot name is required")
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO spots (name, content, created_at) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING`,
		name, content, s.timestamp(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert spot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}
	spot, err = s.GetSpotByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return spot, n > 0, nil
}

// GetSpot fetches a spot by identifier.
func (s *Store) GetSpot(ctx context.Context, id int64) (*Spot, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+spotColumns+` FROM spots WHERE id = ?`, id)
	spot, err := scanSpot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("spot %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get spot: %w", err)
	}
	return spot, nil
}

// GetSpotByName fetches a spot by its unique name.
func (s *Store) GetSpotByName(ctx context.Context, name string) (*Spot, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+spotColumns+` FROM spots WHERE name = ?`, name)
	spot, err := scanSpot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("spot %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get spot: %w", err)
	}
	return spot, nil
}

// ListSpots returns spots ordered by name. When ids is non-empty only those
// spots are returned.
func (s *Store) ListSpots(ctx context.Context, ids ...int64) ([]Spot, error) {
	var w where
	w.in("id", int64Args(ids))
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+spotColumns+` FROM spots`+w.String()+` ORDER BY name`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list spots: %w", err)
	}
	defer rows.Close()

	var spots []Spot
	for rows.Next() {
		spot, err := scanSpot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spot: %w", err)
		}
		spots = append(spots, *spot)
	}
	return spots, rows.Err()
}

// DeleteSpot removes a spot and its detections.
func (s *Store) DeleteSpot(ctx context.Context, id int64) error {
	res, err := s.execWithRetry(ctx, `DELETE FROM spots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete spot: %w", err)
	}
	return requireAffected(res, "spot", id)
}
