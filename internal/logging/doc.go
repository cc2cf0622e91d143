// Package logging assembles the structured slog loggers used across spotwatch.
//
// It owns the console and JSON handlers, level parsing and output routing
// (stdout plus an optional JSON log file), and exposes helpers so analysis
// code can tag log lines with run, spot and recording identifiers. A no-op
// logger is provided for tests and for library code that receives a nil
// logger.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same keys.
package logging
