// Package analysis runs stored spots against stored recordings and persists
// the detections.
//
// A run holds an exclusive file lock so only one analysis touches the
// database at a time, gets a uuid, and is recorded in the store with its
// counts and outcome. Recordings are parsed once per run and shared by every
// spot; several spots are matched concurrently. Each spot's detections are
// written for exactly the recordings that were analyzed, so narrowing a run
// to one channel or date range leaves other detections alone.
//
// Manifest runs match files listed in a YAML manifest without touching the
// database.
package analysis
