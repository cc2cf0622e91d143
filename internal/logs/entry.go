package logs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"spotwatch/internal/logging"
)

// timeKey matches the key the JSON file handler writes timestamps under.
const timeKey = "ts"

// Entry is one decoded JSON log line.
type Entry struct {
	Time      time.Time
	Level     slog.Level
	Message   string
	Component string
	RunID     string
	Attrs     map[string]any
	// Raw is the original line; set for lines that are not JSON objects too.
	Raw string
}

// ParseEntry decodes a JSON log line. Lines that are not JSON are returned
// with ok false and only Raw set.
func ParseEntry(line string) (Entry, bool) {
	entry := Entry{Raw: line}
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return entry, false
	}
	if v, ok := fields[timeKey].(string); ok {
		entry.Time, _ = time.Parse(time.RFC3339Nano, v)
	}
	if v, ok := fields[slog.LevelKey].(string); ok {
		_ = entry.Level.UnmarshalText([]byte(v))
	}
	entry.Message, _ = fields[slog.MessageKey].(string)
	entry.Component, _ = fields[logging.FieldComponent].(string)
	entry.RunID, _ = fields[logging.FieldRunID].(string)
	for _, key := range []string{timeKey, slog.LevelKey, slog.MessageKey, logging.FieldComponent, logging.FieldRunID} {
		delete(fields, key)
	}
	entry.Attrs = fields
	return entry, true
}

// Filter selects entries. Zero fields match everything.
type Filter struct {
	MinLevel  slog.Level
	Component string
	RunID     string
}

// Match reports whether entry passes the filter. Non-JSON lines only pass an
// empty filter.
func (f Filter) Match(entry Entry, parsed bool) bool {
	if !parsed {
		return f == Filter{}
	}
	if entry.Level < f.MinLevel {
		return false
	}
	if f.Component != "" && !strings.EqualFold(entry.Component, f.Component) {
		return false
	}
	if f.RunID != "" && !strings.HasPrefix(entry.RunID, f.RunID) {
		return false
	}
	return true
}

// Apply parses lines and keeps those matching the filter.
func (f Filter) Apply(lines []string) []Entry {
	var out []Entry
	for _, line := range lines {
		entry, parsed := ParseEntry(line)
		if f.Match(entry, parsed) {
			out = append(out, entry)
		}
	}
	return out
}

// Format renders an entry as a single console line with attributes sorted by
// key.
func (e Entry) Format() string {
	if e.Message == "" && e.Time.IsZero() {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s ", e.Level.String())
	if e.Component != "" {
		fmt.Fprintf(&b, "[%s] ", e.Component)
	}
	b.WriteString(e.Message)
	if e.RunID != "" {
		fmt.Fprintf(&b, " %s=%s", logging.FieldRunID, e.RunID)
	}
	for _, key := range slices.Sorted(maps.Keys(e.Attrs)) {
		fmt.Fprintf(&b, " %s=%v", key, e.Attrs[key])
	}
	return b.String()
}
