package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"loud":    slog.LevelInfo,
	} {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestInitializeTo(t *testing.T) {
	t.Cleanup(func() {
		SetService("")
		Initialize("info", false)
	})

	var buf bytes.Buffer
	SetService("portal")
	InitializeTo(&buf, "warn", true)

	Log.Info("dropped")
	Log.Warn("session expired", "email", "me@example.com")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec), buf.String())
	assert.Equal(t, "session expired", rec["msg"])
	assert.Equal(t, "portal", rec["service"])
	assert.Equal(t, "me@example.com", rec["email"])
}
