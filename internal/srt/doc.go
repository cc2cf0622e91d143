// Package srt parses time-coded subtitle transcripts into ordered segments.
//
// Parsing never fails: structurally malformed blocks (missing index, garbled
// timing line, too few lines) are dropped, while a block whose timecodes
// cannot be converted to seconds is kept with zero offsets and the problem is
// logged. The package also owns the timecode helpers shared by the detector
// and the reports: HH:MM:SS,mmm conversion in both directions and the
// HH:MM:SS day-anchor clock.
package srt
