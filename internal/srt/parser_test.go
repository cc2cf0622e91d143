package srt_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"spotwatch/internal/srt"
)

func TestParseTwoBlocks(t *testing.T) {
	content := "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n2\n00:00:03,000 --> 00:00:04,000\nWorld\n"

	segments := srt.Parse(content, nil)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	want := []struct {
		index      int
		start, end float64
		text       string
	}{
		{1, 1.0, 2.0, "Hello"},
		{2, 3.0, 4.0, "World"},
	}
	for i, w := range want {
		got := segments[i]
		if got.Index != w.index || got.StartSeconds != w.start || got.EndSeconds != w.end || got.Text != w.text {
			t.Fatalf("segment %d = %+v, want %+v", i, got, w)
		}
	}
	if segments[0].Start != "00:00:01,000" || segments[0].End != "00:00:02,000" {
		t.Fatalf("expected original timecodes preserved, got %q/%q", segments[0].Start, segments[0].End)
	}
}

func TestParseEmptyContent(t *testing.T) {
	for _, content := range []string{"", "   ", "\n\n\n"} {
		if got := srt.Parse(content, nil); len(got) != 0 {
			t.Fatalf("Parse(%q) = %d segments, want 0", content, len(got))
		}
	}
}

func TestParseDropsMalformedBlocks(t *testing.T) {
	content := strings.Join([]string{
		"1\n00:00:01,000 --> 00:00:02,000",             // too few lines
		"x\n00:00:01,000 --> 00:00:02,000\nbad index", // non-integer index
		"3\n0:0:1,0 --> 0:0:2,0\nbad timing",          // timing pattern mismatch
		"4\n00:00:05,500 --> 00:00:06,250\nkept",
	}, "\n\n")

	segments := srt.Parse(content, nil)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d: %+v", len(segments), segments)
	}
	if segments[0].Index != 4 || segments[0].StartSeconds != 5.5 || segments[0].EndSeconds != 6.25 {
		t.Fatalf("unexpected segment %+v", segments[0])
	}
}

func TestParseMultilineTextAndWindowsLineEndings(t *testing.T) {
	content := "\ufeff1\r\n00:00:01,000-->00:00:02,500\r\n  first line  \r\nsecond line\r\n\r\n"

	segments := srt.Parse(content, nil)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].Text != "first line\nsecond line" {
		t.Fatalf("unexpected text %q", segments[0].Text)
	}
	if segments[0].Duration() != 1.5 {
		t.Fatalf("unexpected duration %v", segments[0].Duration())
	}
}

func TestParseWhitespaceOnlyLineDoesNotSplitBlock(t *testing.T) {
	content := "1\n00:00:01,000 --> 00:00:02,000\n   \nHello\n\n2\n00:00:03,000 --> 00:00:04,000\nfirst\n\t\nsecond\n"

	segments := srt.Parse(content, nil)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segments), segments)
	}
	if segments[0].Text != "Hello" || segments[1].Text != "first\nsecond" {
		t.Fatalf("unexpected texts %q / %q", segments[0].Text, segments[1].Text)
	}
}

func TestParsePreservesSourceOrder(t *testing.T) {
	content := "5\n00:00:10,000 --> 00:00:11,000\nlater index first\n\n2\n00:00:01,000 --> 00:00:02,000\nearlier"

	segments := srt.Parse(content, nil)
	if len(segments) != 2 || segments[0].Index != 5 || segments[1].Index != 2 {
		t.Fatalf("expected source order to be kept, got %+v", segments)
	}
}

func TestNewSegmentDegradesInvalidTimecodes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	seg := srt.NewSegment(9, "garbage", "00:00:02,000", " text ", logger)
	if seg.StartSeconds != 0 || seg.EndSeconds != 2 {
		t.Fatalf("unexpected seconds %+v", seg)
	}
	if seg.Start != "garbage" || seg.Text != "text" {
		t.Fatalf("unexpected segment %+v", seg)
	}
	if !strings.Contains(buf.String(), "invalid subtitle timecode") {
		t.Fatalf("expected error to be logged, got %q", buf.String())
	}
}
