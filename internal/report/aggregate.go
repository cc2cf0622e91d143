package report

import (
	"sort"
	"strings"

	"spotwatch/internal/store"
)

// SpotSummary is one row of the by-spot view.
type SpotSummary struct {
	Spot           string  `json:"spot"`
	Detections     int     `json:"detections"`
	Channels       int     `json:"channels"`
	MeanConfidence float64 `json:"mean_confidence"`
	FirstDate      string  `json:"first_date"`
	LastDate       string  `json:"last_date"`
}

// ChannelSummary is one row of the by-channel view.
type ChannelSummary struct {
	Channel        string  `json:"channel"`
	Detections     int     `json:"detections"`
	Spots          int     `json:"spots"`
	MeanConfidence float64 `json:"mean_confidence"`
}

// BySpot groups detections per spot name, ordered by name.
func BySpot(detections []store.Detection) []SpotSummary {
	type acc struct {
		summary  SpotSummary
		channels map[string]struct{}
		total    float64
	}
	groups := make(map[string]*acc)
	for _, d := range detections {
		g, ok := groups[d.SpotName]
		if !ok {
			g = &acc{
				summary:  SpotSummary{Spot: d.SpotName, FirstDate: d.RecordedOn, LastDate: d.RecordedOn},
				channels: make(map[string]struct{}),
			}
			groups[d.SpotName] = g
		}
		g.summary.Detections++
		g.total += d.Confidence
		g.channels[d.ChannelName] = struct{}{}
		if d.RecordedOn < g.summary.FirstDate {
			g.summary.FirstDate = d.RecordedOn
		}
		if d.RecordedOn > g.summary.LastDate {
			g.summary.LastDate = d.RecordedOn
		}
	}

	out := make([]SpotSummary, 0, len(groups))
	for _, g := range groups {
		g.summary.Channels = len(g.channels)
		g.summary.MeanConfidence = g.total / float64(g.summary.Detections)
		out = append(out, g.summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Spot < out[j].Spot })
	return out
}

// ByChannel groups detections per channel name, ordered by name.
func ByChannel(detections []store.Detection) []ChannelSummary {
	type acc struct {
		summary ChannelSummary
		spots   map[string]struct{}
		total   float64
	}
	groups := make(map[string]*acc)
	for _, d := range detections {
		g, ok := groups[d.ChannelName]
		if !ok {
			g = &acc{summary: ChannelSummary{Channel: d.ChannelName}, spots: make(map[string]struct{})}
			groups[d.ChannelName] = g
		}
		g.summary.Detections++
		g.total += d.Confidence
		g.spots[d.SpotName] = struct{}{}
	}

	out := make([]ChannelSummary, 0, len(groups))
	for _, g := range groups {
		g.summary.Spots = len(g.spots)
		g.summary.MeanConfidence = g.total / float64(g.summary.Detections)
		out = append(out, g.summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}

// Detailed returns a copy of detections ordered by recording date, channel
// name and start time.
func Detailed(detections []store.Detection) []store.Detection {
	out := append([]store.Detection(nil), detections...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.RecordedOn != b.RecordedOn {
			return a.RecordedOn < b.RecordedOn
		}
		if c := strings.Compare(a.ChannelName, b.ChannelName); c != 0 {
			return c < 0
		}
		return a.StartSeconds < b.StartSeconds
	})
	return out
}
