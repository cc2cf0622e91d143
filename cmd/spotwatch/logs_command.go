package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spotwatch/internal/logging"
	"spotwatch/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines     int
		follow    bool
		runID     string
		component string
		level     string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the spotwatch log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			filter := logs.Filter{
				RunID:     strings.TrimSpace(runID),
				Component: strings.TrimSpace(component),
			}
			if level != "" {
				if err := filter.MinLevel.UnmarshalText([]byte(level)); err != nil {
					return fmt.Errorf("invalid --level %q: use debug, info, warn or error", level)
				}
			} else if filter.RunID != "" || filter.Component != "" {
				filter.MinLevel = slog.LevelDebug
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)

			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, entry := range filter.Apply(result.Lines) {
				fmt.Fprintln(out, entry.Format())
			}
			if !follow {
				return nil
			}

			offset := result.Offset
			for {
				result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: offset, Follow: true, Wait: time.Second})
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				offset = result.Offset
				for _, entry := range filter.Apply(result.Lines) {
					fmt.Fprintln(out, entry.Format())
				}
				if cmd.Context().Err() != nil {
					return nil
				}
			}
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to read")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&runID, "run", "", "Only show entries for this analysis run (prefix match)")
	cmd.Flags().StringVar(&component, "component", "", "Only show entries from this component")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level to show")
	return cmd
}
