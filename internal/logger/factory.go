package logger

import (
	"io"

	"github.com/charmbracelet/log"
)

// Printer creates a bare logger for user-facing output on w: no timestamp, no level
// filtering below Info, so Print and Info lines always reach the user.
func Printer(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: false,
		Formatter:       log.TextFormatter,
		Level:           log.InfoLevel,
	})
}
