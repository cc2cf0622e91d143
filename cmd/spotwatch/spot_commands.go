package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spotwatch/internal/config"
	"spotwatch/internal/detection"
	"spotwatch/internal/ingest"
	"spotwatch/internal/srt"
	"spotwatch/internal/store"
)

func newSpotCommand(ctx *commandContext) *cobra.Command {
	spotCmd := &cobra.Command{
		Use:   "spot",
		Short: "Manage advertising spots",
	}

	spotCmd.AddCommand(newSpotImportCommand(ctx))
	spotCmd.AddCommand(newSpotListCommand(ctx))
	spotCmd.AddCommand(newSpotRemoveCommand(ctx))

	return spotCmd
}

func newSpotImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import PATH...",
		Short: "Import spot transcripts (.srt files or directories of them)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := ingest.CollectFiles(args)
			if err != nil {
				return err
			}
			return ctx.deps(cmd, func(_ *config.Config, st *store.Store, logger *slog.Logger) error {
				summary, err := ingest.NewImporter(st, logger).ImportSpots(cmd.Context(), files)
				if err != nil {
					return err
				}
				return reportImport(cmd.OutOrStdout(), "spot", summary)
			})
		},
	}
}

// spotRow is the list/JSON view of a spot.
type spotRow struct {
	store.Spot
	Segments        int     `json:"segments"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func newSpotListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored spots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				spots, err := st.ListSpots(cmd.Context())
				if err != nil {
					return err
				}
				views := make([]spotRow, len(spots))
				for i, spot := range spots {
					segments := srt.Parse(spot.Content, nil)
					duration, _ := detection.SpotTiming(segments)
					views[i] = spotRow{Spot: spot, Segments: len(segments), DurationSeconds: duration}
				}
				if asJSON {
					return writeJSON(cmd, views)
				}
				rows := make([][]string, len(views))
				for i, v := range views {
					rows[i] = []string{
						strconv.FormatInt(v.ID, 10),
						v.Name,
						strconv.Itoa(v.Segments),
						humanize.FtoaWithDigits(v.DurationSeconds, 1) + "s",
						formatTime(v.CreatedAt),
					}
				}
				printTable(cmd.OutOrStdout(), "No spots",
					[]string{"ID", "Name", "Segments", "Duration", "Added"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
				)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newSpotRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID|NAME...",
		Short: "Remove spots and their detections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				ids, err := resolveSpotIDs(cmd.Context(), st, args)
				if err != nil {
					return err
				}
				for _, id := range ids {
					if err := st.DeleteSpot(cmd.Context(), id); err != nil {
						if errors.Is(err, store.ErrNotFound) {
							return fmt.Errorf("spot %d not found", id)
						}
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed spot %d\n", id)
				}
				return nil
			})
		},
	}
}
