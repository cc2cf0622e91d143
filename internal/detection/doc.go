// Package detection locates occurrences of a spot inside broadcast
// recordings.
//
// Every spot segment is searched for in every recording segment. A hit
// estimates where the whole spot started by subtracting the segment's offset
// within the spot, then shifts that estimate onto the recording's day anchor
// to obtain a broadcast time of day. Hits that describe the same physical
// airing are collapsed so each airing yields exactly one Detection.
//
// Detect never fails. Spots or recordings without parseable segments are
// logged and contribute nothing.
package detection
