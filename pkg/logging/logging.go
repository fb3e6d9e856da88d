/*
Package logging configures the process-wide charmbracelet logger.
*/
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var logFile *os.File

// Config selects the level and, optionally, a file to log to.
type Config struct {
	Level        string
	File         string
	ReportCaller bool
}

/*
Init applies cfg to the default logger. With a file set, logs go to both
stderr and the file, without colors in the file.
*/
func Init(cfg Config) error {
	if cfg.Level != "" {
		level, err := log.ParseLevel(cfg.Level)

		if err != nil {
			return fmt.Errorf("unknown log level %q: %w", cfg.Level, err)
		}

		log.SetLevel(level)
	}

	log.SetReportCaller(cfg.ReportCaller)
	log.SetReportTimestamp(true)
	log.SetTimeFormat(time.TimeOnly)

	if cfg.File == "" {
		return nil
	}

	file, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)

	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
	}

	Close()
	logFile = file
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	log.Info("logging to file", "path", cfg.File)

	return nil
}

// Close restores stderr output and closes the log file, if any.
func Close() {
	if logFile == nil {
		return
	}

	log.SetOutput(os.Stderr)
	_ = logFile.Close()
	logFile = nil
}
