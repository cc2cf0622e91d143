package report_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"spotwatch/internal/report"
	"spotwatch/internal/store"
)

func det(spot, channel, date, file string, start, confidence float64) store.Detection {
	kind := "fuzzy"
	if confidence == 100 {
		kind = "exact"
	}
	return store.Detection{
		SpotName: spot, ChannelName: channel, RecordedOn: date, FileName: file,
		StartSeconds: start, EndSeconds: start + 20, Confidence: confidence, Kind: kind,
	}
}

var sample = []store.Detection{
	det("beta", "TF1", "2024-03-02", "tf1-b.srt", 500, 90),
	det("alpha", "TF1", "2024-03-01", "tf1-a.srt", 300, 100),
	det("alpha", "M6", "2024-03-03", "m6.srt", 100, 90),
	det("alpha", "TF1", "2024-03-01", "tf1-a.srt", 100, 95),
}

func TestBySpot(t *testing.T) {
	got := report.BySpot(sample)
	want := []report.SpotSummary{
		{Spot: "alpha", Detections: 3, Channels: 2, MeanConfidence: 95, FirstDate: "2024-03-01", LastDate: "2024-03-03"},
		{Spot: "beta", Detections: 1, Channels: 1, MeanConfidence: 90, FirstDate: "2024-03-02", LastDate: "2024-03-02"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BySpot = %+v, want %+v", got, want)
	}
}

func TestByChannel(t *testing.T) {
	got := report.ByChannel(sample)
	want := []report.ChannelSummary{
		{Channel: "M6", Detections: 1, Spots: 1, MeanConfidence: 90},
		{Channel: "TF1", Detections: 3, Spots: 2, MeanConfidence: 95},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ByChannel = %+v, want %+v", got, want)
	}
}

func TestDetailedOrdersByDateChannelStart(t *testing.T) {
	got := report.Detailed(sample)
	var starts []float64
	for _, d := range got {
		starts = append(starts, d.StartSeconds)
	}
	if !reflect.DeepEqual(starts, []float64{100, 300, 500, 100}) {
		t.Fatalf("unexpected order %v", starts)
	}
	if got[3].ChannelName != "M6" || sample[0].SpotName != "beta" {
		t.Fatal("Detailed must not reorder its input")
	}
}

func TestRenderFormats(t *testing.T) {
	sheet := report.DetailSheet(report.Detailed(sample[:1]))
	if sheet.Rows[0][6] != "20" || sheet.Rows[0][7] != "FUZZY" || sheet.Rows[0][8] != "90%" {
		t.Fatalf("unexpected detail row %v", sheet.Rows[0])
	}

	tests := []struct {
		format report.Format
		want   []string
	}{
		{report.FormatTable, []string{"Details", "beta", "╭"}},
		{report.FormatCSV, []string{"Spot,Channel,Date,Recording", "beta,TF1,2024-03-02,tf1-b.srt"}},
		{report.FormatMarkdown, []string{"| Spot |", "| beta |"}},
		{report.FormatHTML, []string{"<table", ">beta</td>"}},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		if err := report.Render(&buf, sheet, tc.format); err != nil {
			t.Fatalf("%s: Render: %v", tc.format, err)
		}
		for _, want := range tc.want {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("%s: expected %q in output:\n%s", tc.format, want, buf.String())
			}
		}
	}
}

func TestParseFormatAndView(t *testing.T) {
	if f, err := report.ParseFormat("MD"); err != nil || f != report.FormatMarkdown {
		t.Fatalf("ParseFormat(MD) = %q, %v", f, err)
	}
	if f, err := report.ParseFormat(""); err != nil || f != report.FormatTable {
		t.Fatalf("ParseFormat(\"\") = %q, %v", f, err)
	}
	if _, err := report.ParseFormat("xlsx"); err == nil {
		t.Fatal("expected error for xlsx")
	}
	views, err := report.ParseView("all")
	if err != nil || len(views) != 3 {
		t.Fatalf("ParseView(all) = %v, %v", views, err)
	}
	if _, err := report.ParseView("weekly"); err == nil {
		t.Fatal("expected error for unknown view")
	}
}

func TestRenderAllWritesEverySheet(t *testing.T) {
	var buf bytes.Buffer
	if err := report.RenderAll(&buf, report.Sheets(sample, report.AllViews), report.FormatTable); err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	for _, title := range []string{"By spot", "By channel", "Details"} {
		if !strings.Contains(buf.String(), title) {
			t.Errorf("expected %q section", title)
		}
	}
}
