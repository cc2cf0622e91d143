package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"spotwatch/internal/analysis"
	"spotwatch/internal/config"
	"spotwatch/internal/notifications"
	"spotwatch/internal/store"
	"spotwatch/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Import and analyze inbox files on a schedule",
		Long: "Scans the inbox spot and recording directories on the configured cron\n" +
			"schedule, imports new .srt files, archives them and analyzes what changed.\n" +
			"Runs until interrupted unless --once is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.deps(cmd, func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				w, err := watch.New(cfg, st, analysis.NewService(cfg, st, logger), notifications.NewService(cfg), logger)
				if err != nil {
					return err
				}
				if once {
					result, err := w.RunOnce(cmd.Context())
					if err != nil {
						return err
					}
					printTickResult(cmd, result)
					return nil
				}

				if err := w.Start(cmd.Context()); err != nil {
					return err
				}
				<-cmd.Context().Done()
				<-w.Stop().Done()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Scan the inbox once and exit")
	return cmd
}

func printTickResult(cmd *cobra.Command, result watch.TickResult) {
	out := cmd.OutOrStdout()
	if result.Idle() {
		fmt.Fprintln(out, "Inbox empty")
		return
	}
	_ = reportImport(out, "spot", result.Spots)
	_ = reportImport(out, "recording", result.Recordings)
	if result.Analysis != nil {
		printAnalysisSummary(out, *result.Analysis)
	}
}
