package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZerolog_ForwardsToSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	zl := NewZerolog(logger, "influx")
	zl.Warn().Str("bucket", "aet_imports").Int("points", 3).Msg("write failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "write failed", entry["msg"])
	assert.Equal(t, "influx", entry["component"])
	assert.Equal(t, "aet_imports", entry["bucket"])
	assert.Equal(t, float64(3), entry["points"])
}

func TestNewZerolog_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	zl := NewZerolog(logger, "db")

	zl.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	zl.Error().Msg("boom")
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestSlogWriter_NonJSON(t *testing.T) {
	var buf bytes.Buffer
	w := &slogWriter{logger: slog.New(slog.NewTextHandler(&buf, nil))}

	n, err := w.Write([]byte("plain text"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Contains(t, buf.String(), "plain text")
}
