// Package logging builds the logr.Logger used across snc-bounds.
//
// Three output formats are supported: "json" and "console" are backed by zap
// through zapr, "pretty" by tint through logr's slog bridge. Verbosity
// follows logr: V(DEBUG) for per-iteration optimizer traces, V(TRACE) for
// per-evaluation traces.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/lmittmann/tint"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels.
const (
	DEBUG = 1
	TRACE = 2
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatPretty  = "pretty"
)

var (
	mu     sync.RWMutex
	global = logr.Discard()
)

// Log returns the process-wide logger.
func Log() logr.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// SetLogger replaces the process-wide logger.
func SetLogger(l logr.Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = l
}

// ParseLevel maps a level name to a logr verbosity.
func ParseLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return 0, nil
	case "debug":
		return DEBUG, nil
	case "trace":
		return TRACE, nil
	default:
		return 0, fmt.Errorf("unknown log level %q, want info, debug or trace", level)
	}
}

// NewLogger returns a logger writing to w in the given format at the given
// level.
func NewLogger(level, format string, w io.Writer) (logr.Logger, error) {
	verbosity, err := ParseLevel(level)
	if err != nil {
		return logr.Discard(), err
	}

	switch strings.ToLower(format) {
	case "", FormatJSON:
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapLogger(zapcore.NewJSONEncoder(encoderConfig), verbosity, w), nil
	case FormatConsole:
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		return zapLogger(zapcore.NewConsoleEncoder(encoderConfig), verbosity, w), nil
	case FormatPretty:
		handler := tint.NewHandler(w, &tint.Options{
			Level:      slog.Level(-verbosity),
			TimeFormat: time.TimeOnly,
		})
		return logr.FromSlogHandler(handler), nil
	default:
		return logr.Discard(), fmt.Errorf("unknown log format %q, want json, console or pretty", format)
	}
}

func zapLogger(encoder zapcore.Encoder, verbosity int, w io.Writer) logr.Logger {
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(zapcore.Level(-verbosity)))
	return zapr.NewLogger(zap.New(core))
}

// NewTestLogger installs a debug-level console logger on stderr as the
// process-wide logger and returns it.
func NewTestLogger() logr.Logger {
	l, _ := NewLogger("debug", FormatConsole, os.Stderr)
	SetLogger(l)
	return l
}
