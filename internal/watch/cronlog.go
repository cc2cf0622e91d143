package watch

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// cronLogger routes scheduler diagnostics into slog. Routine scheduler
// chatter is logged at debug level.
type cronLogger struct {
	logger *slog.Logger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("scheduler "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("scheduler "+msg, append(keysAndValues, "error", err)...)
}
