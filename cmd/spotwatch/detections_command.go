package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spotwatch/internal/detection"
	"spotwatch/internal/store"
)

// detectionFilterFlags are the filters shared by detections and report.
type detectionFilterFlags struct {
	spots         []string
	channels      []string
	from, to      string
	kind          string
	minConfidence float64
	runID         string
}

func (f *detectionFilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.spots, "spot", nil, "Spot IDs or names")
	cmd.Flags().StringSliceVar(&f.channels, "channel", nil, "Channel codes")
	cmd.Flags().StringVar(&f.from, "from", "", "First recording date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last recording date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.kind, "kind", "", "Only exact or fuzzy detections")
	cmd.Flags().Float64Var(&f.minConfidence, "min-confidence", 0, "Minimum confidence (0-100)")
	cmd.Flags().StringVar(&f.runID, "run", "", "Only detections written by this run")
}

func (f *detectionFilterFlags) list(cmd *cobra.Command, st *store.Store) ([]store.Detection, error) {
	if err := validateDateRange(f.from, f.to); err != nil {
		return nil, err
	}
	kind := strings.ToLower(strings.TrimSpace(f.kind))
	switch detection.Kind(kind) {
	case "", detection.KindExact, detection.KindFuzzy:
	default:
		return nil, fmt.Errorf("invalid --kind %q (want exact or fuzzy)", f.kind)
	}
	spotIDs, err := resolveSpotIDs(cmd.Context(), st, f.spots)
	if err != nil {
		return nil, err
	}
	return st.ListDetections(cmd.Context(), store.DetectionFilter{
		SpotIDs:       spotIDs,
		ChannelCodes:  f.channels,
		From:          f.from,
		To:            f.to,
		Kind:          kind,
		MinConfidence: f.minConfidence,
		RunID:         f.runID,
	})
}

func newDetectionsCommand(ctx *commandContext) *cobra.Command {
	var (
		filters detectionFilterFlags
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "detections",
		Short: "List stored detections",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				detections, err := filters.list(cmd, st)
				if err != nil {
					return err
				}
				if asJSON {
					if detections == nil {
						detections = []store.Detection{}
					}
					return writeJSON(cmd, detections)
				}
				rows := make([][]string, len(detections))
				for i, d := range detections {
					rows[i] = []string{
						d.RecordedOn,
						d.ChannelCode,
						d.SpotName,
						d.StartTime,
						d.EndTime,
						strings.ToUpper(d.Kind),
						humanize.FtoaWithDigits(d.Confidence, 1) + "%",
					}
				}
				printTable(cmd.OutOrStdout(), "No detections",
					[]string{"Date", "Channel", "Spot", "Start", "End", "Kind", "Confidence"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				)
				return nil
			})
		},
	}
	filters.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
