// Package store persists channels, spots, recordings, detections and
// analysis runs in SQLite.
//
// Recordings belong to a channel, detections belong to a spot and a
// recording, and deleting either parent removes its detections. Detections
// are written per (spot, recording) pair: re-analyzing a spot replaces the
// rows for exactly the recordings that were analyzed and leaves the rest.
//
// The schema is created from schema.sql on first open. Schema changes bump
// schemaVersion; an older database is rejected with ErrSchemaMismatch and
// must be recreated.
package store
