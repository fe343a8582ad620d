package runtime

import (
	"log/slog"

	"github.com/arborui/arbor/pkg/expr"
)

// Sink is where diagnostic and user-visible action output surfaces.
// consoleLog actions go to Log, alert actions to Alert. Neither mutates
// state, and neither is ever a blocking error dialog: a mis-configured
// action must not halt the handler.
type Sink interface {
	Log(message any)
	Alert(message any)
}

// LogSink surfaces both channels through a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates the default sink, writing to the given logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Log(message any) {
	s.logger.Info("console", "message", expr.Stringify(message))
}

func (s *LogSink) Alert(message any) {
	s.logger.Warn("alert", "message", expr.Stringify(message))
}
