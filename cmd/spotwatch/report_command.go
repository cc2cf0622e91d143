package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"spotwatch/internal/report"
	"spotwatch/internal/store"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var (
		filters    detectionFilterFlags
		viewFlag   string
		formatFlag string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize detections by spot, by channel, or in detail",
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := report.ParseView(viewFlag)
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				detections, err := filters.list(cmd, st)
				if err != nil {
					return err
				}
				sheets := report.Sheets(detections, views)

				var out io.Writer = cmd.OutOrStdout()
				if outputPath != "" {
					file, err := os.Create(outputPath)
					if err != nil {
						return fmt.Errorf("create report: %w", err)
					}
					defer file.Close()
					out = file
				}
				if err := report.RenderAll(out, sheets, format); err != nil {
					return err
				}
				if outputPath != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s report to %s\n", format, outputPath)
				}
				return nil
			})
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVar(&viewFlag, "view", "all", "spots, channels, details or all")
	cmd.Flags().StringVar(&formatFlag, "format", "table", "table, csv, markdown or html")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	return cmd
}
