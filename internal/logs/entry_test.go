package logs_test

import (
	"log/slog"
	"strings"
	"testing"

	"spotwatch/internal/logs"
)

var sampleLines = []string{
	`{"ts":"2024-03-01T06:00:00Z","level":"info","msg":"analysis started","component":"analysis","run_id":"abc-123","spots":2}`,
	`{"ts":"2024-03-01T06:00:01Z","level":"debug","msg":"spot analyzed","component":"analysis","run_id":"abc-123","spot":"alpha"}`,
	`{"ts":"2024-03-01T06:05:00Z","level":"warn","msg":"import failed","component":"ingest","path":"x.srt"}`,
	`not json at all`,
}

func TestParseEntry(t *testing.T) {
	entry, ok := logs.ParseEntry(sampleLines[0])
	if !ok {
		t.Fatal("expected JSON line to parse")
	}
	if entry.Level != slog.LevelInfo || entry.Message != "analysis started" || entry.Component != "analysis" || entry.RunID != "abc-123" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.Attrs["spots"] != float64(2) {
		t.Fatalf("unexpected attrs %+v", entry.Attrs)
	}
	if _, ok := entry.Attrs["msg"]; ok {
		t.Fatal("expected standard keys to be removed from attrs")
	}

	if _, ok := logs.ParseEntry(sampleLines[3]); ok {
		t.Fatal("expected plain text to be rejected")
	}
}

func TestFilterApply(t *testing.T) {
	tests := []struct {
		name   string
		filter logs.Filter
		want   []string
	}{
		{"everything", logs.Filter{MinLevel: slog.LevelDebug}, []string{"analysis started", "spot analyzed", "import failed"}},
		{"empty filter keeps raw lines", logs.Filter{}, []string{"analysis started", "import failed", ""}},
		{"run prefix", logs.Filter{MinLevel: slog.LevelDebug, RunID: "abc"}, []string{"analysis started", "spot analyzed"}},
		{"component", logs.Filter{Component: "INGEST"}, []string{"import failed"}},
		{"warnings", logs.Filter{MinLevel: slog.LevelWarn}, []string{"import failed"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.filter.Apply(sampleLines)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d entries, want %d: %+v", len(got), len(tc.want), got)
			}
			for i, msg := range tc.want {
				if got[i].Message != msg {
					t.Fatalf("entry %d message %q, want %q", i, got[i].Message, msg)
				}
			}
		})
	}
}

func TestEntryFormat(t *testing.T) {
	entry, _ := logs.ParseEntry(sampleLines[2])
	line := entry.Format()
	for _, want := range []string{"WARN", "[ingest]", "import failed", "path=x.srt"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}

	raw, _ := logs.ParseEntry(sampleLines[3])
	if raw.Format() != "not json at all" {
		t.Fatalf("expected raw passthrough, got %q", raw.Format())
	}
}
