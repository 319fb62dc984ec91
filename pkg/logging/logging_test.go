package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "json")

	logger.Debug("Hidden")
	logger.Info("Command processed", "tag", "create_group")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Command processed", line["msg"])
	assert.Equal(t, "create_group", line["tag"])
}

func TestNew_TextWithoutColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo, "text").Warn("Command failed", "kind", "no-match")

	out := buf.String()
	assert.Contains(t, out, "Command failed")
	assert.Contains(t, out, "kind=no-match")
	assert.NotContains(t, out, "\x1b[")
}
