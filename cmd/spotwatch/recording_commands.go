package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"spotwatch/internal/config"
	"spotwatch/internal/ingest"
	"spotwatch/internal/store"
)

func newRecordingCommand(ctx *commandContext) *cobra.Command {
	recordingCmd := &cobra.Command{
		Use:   "recording",
		Short: "Manage broadcast recordings",
	}

	recordingCmd.AddCommand(newRecordingImportCommand(ctx))
	recordingCmd.AddCommand(newRecordingListCommand(ctx))
	recordingCmd.AddCommand(newRecordingRemoveCommand(ctx))

	return recordingCmd
}

func newRecordingImportCommand(ctx *commandContext) *cobra.Command {
	var channelName string

	cmd := &cobra.Command{
		Use:   "import PATH...",
		Short: "Import recordings named CHANNEL_YYYY-MM-DD_HH-MM-SS_HH-MM-SS.srt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := ingest.CollectFiles(args)
			if err != nil {
				return err
			}
			return ctx.deps(cmd, func(_ *config.Config, st *store.Store, logger *slog.Logger) error {
				summary, err := ingest.NewImporter(st, logger).ImportRecordings(cmd.Context(), files, channelName)
				if err != nil {
					return err
				}
				return reportImport(cmd.OutOrStdout(), "recording", summary)
			})
		},
	}
	cmd.Flags().StringVar(&channelName, "channel-name", "", "Display name for the channel of the imported recordings")
	return cmd
}

func newRecordingListCommand(ctx *commandContext) *cobra.Command {
	var (
		channels []string
		from, to string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateDateRange(from, to); err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				recordings, err := st.ListRecordings(cmd.Context(), store.RecordingFilter{
					ChannelCodes: channels,
					From:         from,
					To:           to,
				})
				if err != nil {
					return err
				}
				if asJSON {
					if recordings == nil {
						recordings = []store.Recording{}
					}
					return writeJSON(cmd, recordings)
				}
				rows := make([][]string, len(recordings))
				for i, rec := range recordings {
					rows[i] = []string{
						strconv.FormatInt(rec.ID, 10),
						rec.ChannelCode,
						rec.RecordedOn,
						rec.StartsAt,
						rec.EndsAt,
						rec.FileName,
					}
				}
				printTable(cmd.OutOrStdout(), "No recordings",
					[]string{"ID", "Channel", "Date", "Start", "End", "File"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&channels, "channel", nil, "Only recordings of these channel codes")
	cmd.Flags().StringVar(&from, "from", "", "First recording date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last recording date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newRecordingRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID...",
		Short: "Remove recordings and their detections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				for _, id := range ids {
					if err := st.DeleteRecording(cmd.Context(), id); err != nil {
						if errors.Is(err, store.ErrNotFound) {
							return fmt.Errorf("recording %d not found", id)
						}
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed recording %d\n", id)
				}
				return nil
			})
		},
	}
}
