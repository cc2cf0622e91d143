package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spotwatch/internal/analysis"
	"spotwatch/internal/config"
	"spotwatch/internal/logging"
	"spotwatch/internal/notifications"
	"spotwatch/internal/store"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var (
		spotRefs     []string
		recordingIDs []string
		channels     []string
		from, to     string
		asJSON       bool
		notify       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Match stored spots against stored recordings",
		Long: "Runs detection for the selected spots (default: all) against the selected\n" +
			"recordings (default: all) and replaces the stored detections for every\n" +
			"analyzed spot and recording pair.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateDateRange(from, to); err != nil {
				return err
			}
			recIDs, err := parseIDs(recordingIDs)
			if err != nil {
				return err
			}
			return ctx.deps(cmd, func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				spotIDs, err := resolveSpotIDs(cmd.Context(), st, spotRefs)
				if err != nil {
					return err
				}
				progress, finish := newProgressReporter(cmd.ErrOrStderr())
				summary, runErr := analysis.NewService(cfg, st, logger).Run(cmd.Context(), analysis.Request{
					SpotIDs:      spotIDs,
					RecordingIDs: recIDs,
					ChannelCodes: channels,
					From:         from,
					To:           to,
					Progress:     progress,
				})
				finish()

				if notify {
					notifier := notifications.NewService(cfg)
					var nerr error
					if runErr != nil {
						nerr = notifier.NotifyError(cmd.Context(), runErr, "analysis")
					} else {
						nerr = notifier.NotifyRunCompleted(cmd.Context(), summary)
					}
					if nerr != nil {
						logger.Warn("notification failed", logging.Error(nerr))
					}
				}
				if runErr != nil {
					return runErr
				}
				if asJSON {
					return writeJSON(cmd, summary)
				}
				printAnalysisSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&spotRefs, "spot", nil, "Spot IDs or names to analyze (default all)")
	cmd.Flags().StringSliceVar(&recordingIDs, "recording", nil, "Recording IDs to analyze (default all)")
	cmd.Flags().StringSliceVar(&channels, "channel", nil, "Only recordings of these channel codes")
	cmd.Flags().StringVar(&from, "from", "", "First recording date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last recording date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the run summary as JSON")
	cmd.Flags().BoolVar(&notify, "notify", false, "Send the configured notifications when the run ends")
	return cmd
}

func printAnalysisSummary(out io.Writer, summary analysis.Summary) {
	if summary.Empty() {
		fmt.Fprintf(out, "Nothing to analyze (%d %s, %d %s)\n",
			summary.Spots, plural(summary.Spots, "spot"),
			summary.Recordings, plural(summary.Recordings, "recording"))
		return
	}
	rows := make([][]string, len(summary.PerSpot))
	for i, r := range summary.PerSpot {
		rows[i] = []string{
			r.SpotName,
			strconv.Itoa(r.Detections),
			strconv.Itoa(r.Exact),
			strconv.Itoa(r.Detections - r.Exact),
		}
	}
	printTable(out, "No spots analyzed",
		[]string{"Spot", "Detections", "Exact", "Fuzzy"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	)
	fmt.Fprintf(out, "Run %s: %s %s across %s %s in %s\n",
		summary.RunID,
		humanize.Comma(int64(summary.Detections)), plural(summary.Detections, "detection"),
		humanize.Comma(int64(summary.Recordings)), plural(summary.Recordings, "recording"),
		summary.Duration.Round(time.Millisecond),
	)
}
