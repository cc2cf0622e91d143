package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spotwatch/internal/store"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				stats, err := st.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, stats)
				}
				rows := [][]string{
					{"Channels", humanize.Comma(int64(stats.Channels))},
					{"Spots", humanize.Comma(int64(stats.Spots))},
					{"Recordings", humanize.Comma(int64(stats.Recordings))},
					{"Detections", humanize.Comma(int64(stats.Detections))},
					{"  exact", humanize.Comma(int64(stats.ExactDetections))},
					{"  fuzzy", humanize.Comma(int64(stats.FuzzyDetections))},
				}
				if stats.Detections > 0 {
					rows = append(rows, []string{"Mean confidence", humanize.FtoaWithDigits(stats.AverageConfidence, 1) + "%"})
				}
				if stats.FirstRecording != "" {
					rows = append(rows, []string{"Recorded", fmt.Sprintf("%s to %s", stats.FirstRecording, stats.LastRecording)})
				}
				if run := stats.LastRun; run != nil {
					rows = append(rows, []string{"Last run", fmt.Sprintf("%s (%s, %s)", run.ID, run.Status, humanize.Time(run.StartedAt))})
				}
				printTable(cmd.OutOrStdout(), "", []string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
