// Package fuzzy finds a short text inside a longer one while tolerating
// transcription errors.
//
// A Matcher first looks for a case-insensitive verbatim occurrence and
// reports it with confidence 100. Otherwise it slides a window the length of
// the needle across the haystack and scores each window with the
// difflib sequence ratio; the best window wins when it reaches the threshold.
package fuzzy

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// DefaultThreshold is the minimum confidence accepted as a match.
	DefaultThreshold = 85.0
	// DefaultMaxDistance is the edit distance reserved for a future
	// distance-based mode.
	DefaultMaxDistance = 2
	// ExactConfidence is reported for verbatim occurrences.
	ExactConfidence = 100.0
)

// Matcher holds the match configuration. The zero value accepts any window
// with a positive score; use Default for the standard threshold.
type Matcher struct {
	Threshold float64
	// MaxDistance is carried through configuration but not consulted.
	MaxDistance int
}

// Result is the outcome of Find. Text is the needle for exact hits and the
// lowercased best window for fuzzy ones.
type Result struct {
	Found      bool
	Text       string
	Confidence float64
}

// NotFound is the result reported when nothing reaches the threshold.
var NotFound = Result{}

// Exact reports whether the result came from a verbatim occurrence.
func (r Result) Exact() bool {
	return r.Found && r.Confidence == ExactConfidence
}

// Default returns a matcher with the standard threshold.
func Default() Matcher {
	return Matcher{Threshold: DefaultThreshold, MaxDistance: DefaultMaxDistance}
}

// Ratio scores two strings from 0 to 100 ignoring case: twice the number of
// matched characters divided by the combined length. Two empty strings score
// 100.
func (m Matcher) Ratio(a, b string) float64 {
	seq := difflib.NewMatcher(chars(strings.ToLower(a)), chars(strings.ToLower(b)))
	return seq.Ratio() * 100
}

// Find locates needle in haystack.
func (m Matcher) Find(needle, haystack string) Result {
	n := strings.ToLower(strings.TrimSpace(needle))
	h := strings.ToLower(strings.TrimSpace(haystack))

	if strings.Contains(h, n) {
		return Result{Found: true, Text: needle, Confidence: ExactConfidence}
	}

	needleChars := chars(n)
	hayChars := chars(h)
	size := len(needleChars)
	if size > len(hayChars) {
		return NotFound
	}

	// The needle is fixed, so one sequence matcher is reused and only the
	// window side changes.
	seq := difflib.NewMatcher(needleChars, nil)
	best, bestAt := 0.0, -1
	for i := 0; i+size <= len(hayChars); i++ {
		seq.SetSeq2(hayChars[i : i+size])
		if score := seq.Ratio() * 100; score > best {
			best, bestAt = score, i
		}
	}
	if bestAt < 0 || best < m.Threshold {
		return NotFound
	}
	return Result{
		Found:      true,
		Text:       strings.Join(hayChars[bestAt:bestAt+size], ""),
		Confidence: best,
	}
}

// chars splits s into one element per character so that ratios and window
// sizes count characters rather than bytes.
func chars(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "")
}
