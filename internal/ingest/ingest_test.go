package ingest_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"spotwatch/internal/ingest"
	"spotwatch/internal/testsupport"
)

func TestParseRecordingName(t *testing.T) {
	tests := []struct {
		in      string
		want    ingest.RecordingName
		wantErr bool
	}{
		{
			in:   "/data/TF1_2024-03-01_06-00-00_07-30-00.srt",
			want: ingest.RecordingName{ChannelCode: "TF1", Date: "2024-03-01", StartsAt: "06:00:00", EndsAt: "07:30:00"},
		},
		{
			in:   "FRANCE2_2024-12-31_23-00-00_01-00-00.SRT",
			want: ingest.RecordingName{ChannelCode: "FRANCE2", Date: "2024-12-31", StartsAt: "23:00:00", EndsAt: "01:00:00"},
		},
		{in: "TF1_2024-03-01_06-00-00.srt", wantErr: true},
		{in: "TF1_2024-13-01_06-00-00_07-00-00.srt", wantErr: true},
		{in: "TF1_2024-03-01_25-00-00_07-00-00.srt", wantErr: true},
		{in: "TF1_2024-03-01_06-00-00_07-00-00.txt", wantErr: true},
		{in: "_2024-03-01_06-00-00_07-00-00.srt", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ingest.ParseRecordingName(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ingest.ErrBadRecordingName) {
				t.Errorf("ParseRecordingName(%q) error = %v, want ErrBadRecordingName", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseRecordingName(%q) = %+v, %v; want %+v", tc.in, got, err, tc.want)
		}
	}
}

func TestSpotName(t *testing.T) {
	cases := map[string]string{
		"/spots/Promo Alpha.srt": "Promo Alpha",
		"summer.SRT":             "summer",
		"noext":                  "noext",
		"archive.tar.srt":        "archive.tar",
	}
	for in, want := range cases {
		if got := ingest.SpotName(in); got != want {
			t.Errorf("SpotName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"utf8", []byte("café"), "café"},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("café")...), "café"},
		{"utf16le bom", []byte{0xFF, 0xFE, 'c', 0, 'a', 0, 'f', 0, 0xE9, 0}, "café"},
		{"utf16be bom", []byte{0xFE, 0xFF, 0, 'c', 0, 'a', 0, 'f', 0, 0xE9}, "café"},
		{"windows-1252", []byte{'c', 'a', 'f', 0xE9, ' ', 0x80}, "café €"},
	}
	for _, tc := range tests {
		got, err := ingest.Decode(tc.raw)
		if err != nil {
			t.Fatalf("%s: Decode error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: Decode = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestImportSpotsAndRecordings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	dir := t.TempDir()
	ctx := context.Background()

	valid := testsupport.SRT(testsupport.Cue{Start: "00:00:00,000", End: "00:00:02,000", Text: "promo code alpha"})
	spotPath := testsupport.WriteFile(t, filepath.Join(dir, "spots", "alpha.srt"), valid)
	emptyPath := testsupport.WriteFile(t, filepath.Join(dir, "spots", "empty.srt"), "nothing here")

	importer := ingest.NewImporter(st, nil)
	summary, err := importer.ImportSpots(ctx, []string{spotPath, emptyPath, filepath.Join(dir, "missing.srt")})
	if err != nil {
		t.Fatalf("ImportSpots: %v", err)
	}
	if summary.Added != 1 || len(summary.Failures) != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !errors.Is(summary.Failures[0].Err, ingest.ErrNoSegments) {
		t.Fatalf("expected ErrNoSegments, got %v", summary.Failures[0].Err)
	}

	again, err := importer.ImportSpots(ctx, []string{spotPath})
	if err != nil || again.Skipped != 1 || again.Added != 0 {
		t.Fatalf("expected re-import to skip, got %+v err=%v", again, err)
	}

	recPath := testsupport.WriteFile(t, filepath.Join(dir, "rec", "TF1_2024-03-01_06-00-00_07-00-00.srt"), valid)
	badName := testsupport.WriteFile(t, filepath.Join(dir, "rec", "capture.srt"), valid)
	files, err := ingest.CollectFiles([]string{filepath.Join(dir, "rec")})
	if err != nil || len(files) != 2 {
		t.Fatalf("CollectFiles = %v, %v", files, err)
	}

	recSummary, err := importer.ImportRecordings(ctx, []string{recPath, badName}, "TF1 National")
	if err != nil {
		t.Fatalf("ImportRecordings: %v", err)
	}
	if recSummary.Added != 1 || len(recSummary.AddedIDs) != 1 || len(recSummary.Failures) != 1 {
		t.Fatalf("unexpected summary %+v", recSummary)
	}
	if !errors.Is(recSummary.Failures[0].Err, ingest.ErrBadRecordingName) {
		t.Fatalf("expected ErrBadRecordingName, got %v", recSummary.Failures[0].Err)
	}

	rec, err := st.GetRecording(ctx, recSummary.AddedIDs[0])
	if err != nil {
		t.Fatalf("GetRecording: %v", err)
	}
	if rec.ChannelCode != "TF1" || rec.ChannelName != "TF1 National" || rec.StartsAt != "06:00:00" || rec.RecordedOn != "2024-03-01" {
		t.Fatalf("unexpected recording %+v", rec)
	}
}

func TestImportStopsOnCancellation(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ingest.NewImporter(st, nil).ImportSpots(ctx, []string{"a.srt"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
