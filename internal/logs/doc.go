// Package logs reads back the JSON log file written by the logging package.
//
// Tail returns the last N lines or everything after a byte offset, and can
// wait for new lines in follow mode. Entries decode those lines and Filter
// narrows them by level, component or analysis run, so the CLI can show the
// history of a single run without grepping raw JSON.
package logs
