package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spotwatch/internal/analysis"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var (
		spotFiles     []string
		recordingArgs []string
		manifestPath  string
		threshold     float64
		window        float64
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Find spots in recording files without touching the database",
		Long: "Matches spot files against recording files directly. Recordings take their\n" +
			"day anchor from the file name convention or an explicit FILE@HH:MM:SS.\n" +
			"A YAML manifest can list the files instead of flags.",
		Example: "  spotwatch detect --spot promo.srt --recording TF1_2024-03-01_06-00-00_07-00-00.srt\n" +
			"  spotwatch detect --spot promo.srt --recording capture.srt@06:00:00\n" +
			"  spotwatch detect --manifest week10.yaml --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := buildManifest(manifestPath, spotFiles, recordingArgs)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("threshold") || cmd.Flags().Changed("window") {
				if manifest.Matching == nil {
					manifest.Matching = &analysis.ManifestMatching{}
				}
				if cmd.Flags().Changed("threshold") {
					manifest.Matching.Threshold = &threshold
				}
				if cmd.Flags().Changed("window") {
					manifest.Matching.ClusterWindowSeconds = &window
				}
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			detections, err := analysis.RunManifest(cmd.Context(), cfg, manifest, logger)
			if err != nil {
				return err
			}
			if asJSON {
				if detections == nil {
					detections = []analysis.ManifestDetection{}
				}
				return writeJSON(cmd, detections)
			}
			rows := make([][]string, len(detections))
			for i, d := range detections {
				rows[i] = []string{
					d.Spot,
					d.Recording,
					d.StartTime,
					d.EndTime,
					strings.ToUpper(string(d.Kind)),
					humanize.FtoaWithDigits(d.Confidence, 1) + "%",
				}
			}
			printTable(cmd.OutOrStdout(), "No detections",
				[]string{"Spot", "Recording", "Start", "End", "Kind", "Confidence"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			)
			if len(rows) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", humanize.Comma(int64(len(rows))), plural(len(rows), "detection"))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&spotFiles, "spot", nil, "Spot .srt file (repeatable)")
	cmd.Flags().StringArrayVar(&recordingArgs, "recording", nil, "Recording .srt file, optionally FILE@HH:MM:SS (repeatable)")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "YAML manifest listing spots and recordings")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Override the fuzzy match threshold (0-100)")
	cmd.Flags().Float64Var(&window, "window", 0, "Override the dedup window in seconds (0 uses the spot duration)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func buildManifest(path string, spots, recordings []string) (*analysis.Manifest, error) {
	if path != "" {
		if len(spots) > 0 || len(recordings) > 0 {
			return nil, errors.New("--manifest cannot be combined with --spot or --recording")
		}
		return analysis.LoadManifest(path)
	}
	if len(spots) == 0 || len(recordings) == 0 {
		return nil, errors.New("at least one --spot and one --recording are required (or use --manifest)")
	}
	m := &analysis.Manifest{Spots: spots}
	for _, arg := range recordings {
		m.Recordings = append(m.Recordings, analysis.ParseRecordingArg(arg))
	}
	return m, nil
}
