package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spotwatch/internal/config"
	"spotwatch/internal/logging"
)

func TestNewFromConfigWritesConsoleAndJSONFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	var console bytes.Buffer
	logger, err := logging.NewFromConfig(&cfg, &console)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("analysis finished", logging.Int("detections", 3))

	if !strings.Contains(console.String(), "analysis finished detections=3") {
		t.Fatalf("unexpected console output %q", console.String())
	}

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("log file line is not JSON: %v (%q)", err, data)
	}
	if record["msg"] != "analysis finished" || record["level"] != "info" {
		t.Fatalf("unexpected JSON record %#v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key in %#v", record)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")
	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("message with caller")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestConsoleLoggerPrefixesComponentAndQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "detector")
	component.Warn("skipping recording", logging.Int64(logging.FieldRecordingID, 7), logging.String("reason", "no segments"), logging.Bool("partial", true), logging.Error(errors.New("boom")))

	line := buf.String()
	for _, want := range []string{"WARN  detector: skipping recording", "recording_id=7", `reason="no segments"`, "partial=true", "error=boom"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix, got %q", line)
	}
}

func TestConsoleLoggerMovesHintsToSecondLine(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "recording has no segments", "recording_empty",
		logging.String(logging.FieldErrorHint, "check the file encoding"),
		logging.String(logging.FieldImpact, "recording skipped"),
	)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", buf.String())
	}
	if strings.Contains(lines[0], "error_hint") || !strings.Contains(lines[0], "event_type=recording_empty") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "hint: check the file encoding") || !strings.Contains(lines[1], "impact: recording skipped") {
		t.Fatalf("unexpected hint line %q", lines[1])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected no colour codes without Color, got %q", buf.String())
	}
}

func TestConsoleLoggerShortensRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("started", logging.String(logging.FieldRunID, "0123456789abcdef"))
	if !strings.Contains(buf.String(), "run_id=01234567 ") && !strings.HasSuffix(strings.TrimSpace(buf.String()), "run_id=01234567") {
		t.Fatalf("expected shortened run id in %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextAddsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "recording has no segments", "recording_empty", logging.String(logging.FieldImpact, "recording skipped"))

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[logging.FieldEventType] != "recording_empty" {
		t.Fatalf("expected event_type, got %#v", record)
	}
	if record[logging.FieldImpact] != "recording skipped" {
		t.Fatalf("explicit impact should win, got %#v", record[logging.FieldImpact])
	}
	if record[logging.FieldErrorHint] == nil {
		t.Fatalf("expected default error_hint, got %#v", record)
	}
}

func TestWithContextAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithRunID(context.Background(), "run-123")
	logging.WithContext(ctx, logger).Info("started")
	if !strings.Contains(buf.String(), "run_id=run-123") {
		t.Fatalf("expected run id in %q", buf.String())
	}

	if _, ok := logging.RunIDFromContext(context.Background()); ok {
		t.Fatal("expected no run id on empty context")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 0) {
		t.Fatal("nop logger should not be enabled")
	}
	logging.OrNop(nil).Info("ignored")
}
