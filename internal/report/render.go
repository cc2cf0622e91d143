package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"spotwatch/internal/store"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case FormatTable, FormatCSV, FormatMarkdown, FormatHTML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported report format %q (want table, csv, markdown or html)", value)
	}
}

// View names one of the report views.
type View string

const (
	ViewSpots    View = "spots"
	ViewChannels View = "channels"
	ViewDetails  View = "details"
)

// AllViews lists the views in report order.
var AllViews = []View{ViewSpots, ViewChannels, ViewDetails}

// ParseView validates a view name; "all" expands to every view.
func ParseView(value string) ([]View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(value))); v {
	case "", "all":
		return AllViews, nil
	case ViewSpots, ViewChannels, ViewDetails:
		return []View{v}, nil
	default:
		return nil, fmt.Errorf("unsupported report view %q (want spots, channels, details or all)", value)
	}
}

// Sheet is a titled grid ready for rendering. Numeric marks columns that
// are right-aligned in tables.
type Sheet struct {
	Title   string
	Headers []string
	Numeric []bool
	Rows    [][]string
}

// SpotSheet renders the by-spot view.
func SpotSheet(rows []SpotSummary) Sheet {
	sheet := Sheet{
		Title:   "By spot",
		Headers: []string{"Spot", "Detections", "Channels", "Mean confidence", "First aired", "Last aired"},
		Numeric: []bool{false, true, true, true, false, false},
	}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []string{
			r.Spot, strconv.Itoa(r.Detections), strconv.Itoa(r.Channels), percent(r.MeanConfidence), r.FirstDate, r.LastDate,
		})
	}
	return sheet
}

// ChannelSheet renders the by-channel view.
func ChannelSheet(rows []ChannelSummary) Sheet {
	sheet := Sheet{
		Title:   "By channel",
		Headers: []string{"Channel", "Detections", "Distinct spots", "Mean confidence"},
		Numeric: []bool{false, true, true, true},
	}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []string{
			r.Channel, strconv.Itoa(r.Detections), strconv.Itoa(r.Spots), percent(r.MeanConfidence),
		})
	}
	return sheet
}

// DetailSheet renders one row per detection in the given order.
func DetailSheet(detections []store.Detection) Sheet {
	sheet := Sheet{
		Title:   "Details",
		Headers: []string{"Spot", "Channel", "Date", "Recording", "Start", "End", "Duration (s)", "Kind", "Confidence"},
		Numeric: []bool{false, false, false, false, false, false, true, false, true},
	}
	for _, d := range detections {
		sheet.Rows = append(sheet.Rows, []string{
			d.SpotName, d.ChannelName, d.RecordedOn, d.FileName, d.StartTime, d.EndTime,
			humanize.FtoaWithDigits(d.Duration(), 1), strings.ToUpper(d.Kind), percent(d.Confidence),
		})
	}
	return sheet
}

// Sheets builds the requested views from detections.
func Sheets(detections []store.Detection, views []View) []Sheet {
	sheets := make([]Sheet, 0, len(views))
	for _, v := range views {
		switch v {
		case ViewSpots:
			sheets = append(sheets, SpotSheet(BySpot(detections)))
		case ViewChannels:
			sheets = append(sheets, ChannelSheet(ByChannel(detections)))
		case ViewDetails:
			sheets = append(sheets, DetailSheet(Detailed(detections)))
		}
	}
	return sheets
}

func percent(value float64) string {
	return humanize.FtoaWithDigits(value, 1) + "%"
}

// Render writes sheet to w in the requested format.
func Render(w io.Writer, sheet Sheet, format Format) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if format != FormatCSV {
		tw.SetTitle(sheet.Title)
	}

	header := make(table.Row, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range sheet.Rows {
		r := make(table.Row, len(sheet.Headers))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(sheet.Headers))
	for i := range sheet.Headers {
		align := text.AlignLeft
		if i < len(sheet.Numeric) && sheet.Numeric[i] {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	var out string
	switch format {
	case FormatCSV:
		out = tw.RenderCSV()
	case FormatMarkdown:
		out = tw.RenderMarkdown()
	case FormatHTML:
		out = tw.RenderHTML()
	case FormatTable, "":
		out = tw.Render()
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
	if _, err := io.WriteString(w, out+"\n"); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderAll writes sheets one after another separated by a blank line.
func RenderAll(w io.Writer, sheets []Sheet, format Format) error {
	for i, sheet := range sheets {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := Render(w, sheet, format); err != nil {
			return err
		}
	}
	return nil
}
