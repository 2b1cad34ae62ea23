// Package logging builds the application logger: rotating file output in the
// sigweave log directory, plus human-readable stderr output when verbose mode
// is on.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	// LogDir receives sigweave.log; empty disables file output.
	LogDir string
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// Verbose additionally mirrors log output to stderr.
	Verbose bool
}

// New builds the application logger.
func New(opts Options) *log.Logger {
	var writers []io.Writer
	if opts.LogDir != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(opts.LogDir, "sigweave.log"),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
		})
	}
	if opts.Verbose || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	logger := log.NewWithOptions(io.MultiWriter(writers...), log.Options{
		ReportTimestamp: true,
		Level:           parseLevel(opts.Level),
	})
	return logger
}

func parseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
