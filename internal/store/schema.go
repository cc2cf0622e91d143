package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

// schemaSQL creates the channel, spot, recording, detection and run tables
// on an empty database.
//
//go:embed schema.sql
var schemaSQL string

// schemaVersion is stored in schema_version when the tables are created.
// There are no in-place migrations: a spotwatch database is rebuilt from the
// subtitle files it was imported from, so a version change asks the user to
// remove the file and re-import.
const schemaVersion = 1

// ErrSchemaMismatch is returned by Open when the database was created by a
// spotwatch build with a different schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// initSchema creates the tables on first open and checks the stored version
// on every later open.
func (s *Store) initSchema(ctx context.Context) error {
	version, found, err := s.storedSchemaVersion(ctx)
	if err != nil {
		return err
	}
	if !found {
		return s.withTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
				return fmt.Errorf("create tables: %w", err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
				return fmt.Errorf("record schema version: %w", err)
			}
			return nil
		})
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: %s is at version %d but this build expects %d; remove it and re-import your spots and recordings",
			ErrSchemaMismatch, s.path, version, schemaVersion)
	}
	return nil
}

// storedSchemaVersion reports the version row, or found=false for a database
// without the schema_version table.
func (s *Store) storedSchemaVersion(ctx context.Context) (version int, found bool, err error) {
	var tables int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'",
	).Scan(&tables); err != nil {
		return 0, false, fmt.Errorf("inspect database: %w", err)
	}
	if tables == 0 {
		return 0, false, nil
	}
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, true, nil
}
