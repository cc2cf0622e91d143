package main

import (
	"io"

	"github.com/schollz/progressbar/v3"

	"spotwatch/internal/analysis"
	"spotwatch/internal/logging"
)

// newProgressReporter returns an analysis progress callback drawing a bar on
// w, or nil when w is not a terminal. The returned finish func clears the bar.
func newProgressReporter(w io.Writer) (func(analysis.Progress), func()) {
	if !logging.IsTerminal(w) {
		return nil, func() {}
	}
	var bar *progressbar.ProgressBar
	report := func(p analysis.Progress) {
		if bar == nil {
			bar = progressbar.NewOptions(p.Total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription("analyzing"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Describe(p.SpotName)
		_ = bar.Set(p.Done)
	}
	finish := func() {
		if bar != nil {
			_ = bar.Finish()
		}
	}
	return report, finish
}
