// Package logging configures the process-wide zerolog logger. Records go
// to a log file under the state directory, and to stderr unless an
// interactive session owns the terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvStateDir overrides the XDG state directory holding the log file
const EnvStateDir = "BPACK_STATE_DIR"

// levels maps -v counts to zerolog levels; anything past the end is trace
var levels = []zerolog.Level{
	zerolog.WarnLevel,
	zerolog.InfoLevel,
	zerolog.DebugLevel,
}

var (
	mu      sync.Mutex
	logFile *os.File
)

// SetupLogger logs to stderr and the log file at the level -v asks for
func SetupLogger(verbosity int) {
	configure(verbosity, true)
}

// SetupFileOnly keeps the level but stops writing to stderr.
func SetupFileOnly(verbosity int) {
	configure(verbosity, false)
}

func configure(verbosity int, console bool) {
	zerolog.SetGlobalLevel(levelFor(verbosity))

	var out []io.Writer
	if console {
		out = append(out, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		})
	}
	path := LogFilePath()
	f, fileErr := reopen(path)
	if fileErr == nil {
		out = append(out, f)
	}

	switch len(out) {
	case 0:
		log.Logger = zerolog.Nop()
		return
	case 1:
		log.Logger = zerolog.New(out[0]).With().Timestamp().Logger()
	default:
		log.Logger = zerolog.New(zerolog.MultiLevelWriter(out...)).With().Timestamp().Logger()
	}
	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", path).Msg("Logging to the console only")
	}
	log.Debug().Int("verbosity", verbosity).Str("logFile", path).Bool("console", console).Msg("Logger initialized")
}

func levelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity < 0:
		return levels[0]
	case verbosity < len(levels):
		return levels[verbosity]
	default:
		return zerolog.TraceLevel
	}
}

// LogFilePath is $BPACK_STATE_DIR/bpack.log, or bpack/bpack.log under the
// XDG state home
func LogFilePath() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return filepath.Join(dir, "bpack.log")
	}
	return filepath.Join(xdg.StateHome, "bpack", "bpack.log")
}

// reopen swaps the open log file for path, closing the previous handle
func reopen(path string) (*os.File, error) {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil && logFile.Name() == path {
		return logFile, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	return f, nil
}

// GetLogger returns the global logger tagged with a component name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// LogOperationStart logs the start of operation and returns a func that
// logs its completion with the elapsed time
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Operation started")
	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
