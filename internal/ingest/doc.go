// Package ingest turns SRT files on disk into stored spots and recordings.
//
// Spot files are named after the spot. Recording files follow
// CHANNEL_YYYY-MM-DD_HH-MM-SS_HH-MM-SS.srt, which carries the channel code,
// the broadcast date and the capture start and end times; the start time is
// the day anchor used by detection. Transcripts are decoded from UTF-8,
// UTF-16 with a byte order mark, or Windows-1252.
package ingest
