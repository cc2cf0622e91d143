package main

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spotwatch/internal/store"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent analysis runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				runs, err := st.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					if runs == nil {
						runs = []store.Run{}
					}
					return writeJSON(cmd, runs)
				}
				rows := make([][]string, len(runs))
				for i, run := range runs {
					duration := ""
					if run.FinishedAt != nil {
						duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
					}
					rows[i] = []string{
						run.ID,
						string(run.Status),
						humanize.Time(run.StartedAt),
						duration,
						strconv.Itoa(run.SpotCount),
						strconv.Itoa(run.RecordingCount),
						humanize.Comma(int64(run.DetectionCount)),
						run.Error,
					}
				}
				printTable(cmd.OutOrStdout(), "No runs",
					[]string{"Run", "Status", "Started", "Took", "Spots", "Recordings", "Detections", "Error"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
