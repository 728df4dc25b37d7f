package util

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	appLogger   zerolog.Logger
	appLoggerMu sync.RWMutex
)

func init() {
	appLogger = zerolog.New(os.Stdout).With().Timestamp().Str("app", "clinic-admin").Logger()
}

// InitLogger configures the process logger. Outside release mode a human readable console
// writer is used; in release mode JSON lines go to stdout.
func InitLogger(level, ginMode string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if ginMode != "release" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).Level(lvl).With().Timestamp().Str("app", "clinic-admin").Logger()
	SetLogger(logger)
	return logger
}

// Logger returns the process logger.
func Logger() zerolog.Logger {
	appLoggerMu.RLock()
	defer appLoggerMu.RUnlock()
	return appLogger
}

// SetLogger replaces the process logger. Tests use it to capture output.
func SetLogger(l zerolog.Logger) {
	appLoggerMu.Lock()
	defer appLoggerMu.Unlock()
	appLogger = l
}
