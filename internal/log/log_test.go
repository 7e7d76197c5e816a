package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestInitWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn", false)

	L().Info("hidden")
	Actor(nil, "Camera1").Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "actor=Camera1")
}

func TestInitWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "info", true)
	With("run", "abc").Info("hello")
	assert.Contains(t, buf.String(), `"run":"abc"`)
}
