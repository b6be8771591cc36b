package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// LogLevel mirrors the levels exposed on the command line.
type LogLevel = log.Level

const (
	LogInfo  = log.InfoLevel
	LogDebug = log.DebugLevel
)

// newLogger creates a logger with timestamp formatting, writing to w
// and filtering at the given level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion
// with the elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
