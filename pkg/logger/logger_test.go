package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/breakwatch/pkg/config"
)

func newTestLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&config.Config{
		Env:       "development",
		LogLevel:  level,
		LogFormat: "json",
	}, buf)
}

func decodeLine(t *testing.T, line string) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	return entry
}

func TestNewSetsGlobalLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := newTestLogger(&buf, tt.level)
			require.NotNil(t, log)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, "debug")

	log.Component("collector").WithFields(map[string]interface{}{
		"requested": 10,
		"fetched":   7,
	}).Info("batch fetch completed")

	entry := decodeLine(t, strings.TrimSpace(buf.String()))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "batch fetch completed", entry["message"])
	assert.Equal(t, "collector", entry["module"])
	assert.Equal(t, "breakwatch", entry["app"])
	assert.Equal(t, "development", entry["env"])
	assert.EqualValues(t, 10, entry["requested"])
	assert.EqualValues(t, 7, entry["fetched"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, "info")

	log.WithError(errors.New("connection refused")).Warnf("fetch %s failed", "RELIANCE.NS")

	entry := decodeLine(t, strings.TrimSpace(buf.String()))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "connection refused", entry["error"])
	assert.Equal(t, "fetch RELIANCE.NS failed", entry["message"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, "warn")

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	log.Errorf("shown %d", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "shown", decodeLine(t, lines[0])["message"])
	assert.Equal(t, "shown 2", decodeLine(t, lines[1])["message"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&config.Config{Env: "development", LogLevel: "info", LogFormat: "console"}, &buf)

	log.Info("console line")

	out := buf.String()
	assert.Contains(t, out, "console line")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"), "console output must not be JSON")
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	require.NotNil(t, log)

	// Must not panic
	log.WithField("k", "v").Info("discarded")
	log.Errorf("discarded %d", 1)
}
