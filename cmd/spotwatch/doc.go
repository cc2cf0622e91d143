// Package main hosts the spotwatch CLI entrypoint and command graph.
//
// The Cobra command tree covers the whole workflow: importing spot and
// recording transcripts, running analyses against the database, one-off
// database-free detection, listing and exporting detections, and the
// scheduled inbox watcher. Configuration resolution, logging setup and store
// access are centralized in commandContext so subcommands only deal with
// flags and output.
package main
