// Package logger holds the slog logger shared by the API server, the web frontend and the
// terminal client.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var Log *slog.Logger

// service tags every record once a binary has named itself.
var service string

func init() {
	// usable before main has read the config, and in tests
	Initialize("info", false)
}

// Initialize logs to stdout, as the two servers do.
func Initialize(level string, useJSON bool) {
	InitializeTo(os.Stdout, level, useJSON)
}

// InitializeTo is Initialize with an explicit destination. The terminal client logs to
// stderr so that its command output stays clean.
func InitializeTo(w io.Writer, level string, useJSON bool) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true,
	}

	if useJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	Log = slog.New(handler)
	if service != "" {
		Log = Log.With("service", service)
	}
	slog.SetDefault(Log)
}

// SetService names the running binary (portal-api, frontend, portal) on every later record.
// Call it before Initialize.
func SetService(name string) {
	service = name
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
