package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	return NewSlogLogger(slog.New(handler)), &buf
}

func TestSlogLogger_Levels_WriteExpectedOutput(t *testing.T) {
	log, buf := newTestLogger(t)

	log.Debug("dbg", map[string]interface{}{"a": 1})
	log.Info("inf", map[string]interface{}{"b": 2})
	log.Warn("wrn", map[string]interface{}{"c": 3})
	log.Error("err", map[string]interface{}{"d": 4})

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		attr  string
	}{
		{"DEBUG", "dbg", "a=1"},
		{"INFO", "inf", "b=2"},
		{"WARN", "wrn", "c=3"},
		{"ERROR", "err", "d=4"},
	}

	for _, tc := range tests {
		assert.Contains(t, out, "level="+tc.level)
		assert.Contains(t, out, "msg="+tc.msg)
		assert.Contains(t, out, tc.attr)
	}
}

func TestSlogLogger_FieldsInKeyOrder(t *testing.T) {
	log, buf := newTestLogger(t)

	log.Info("API Request", map[string]interface{}{"url": "/users/me", "method": "GET", "body": ""})

	assert.Contains(t, buf.String(), `body="" method=GET url=/users/me`)
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("component", "gateway").Info("hello", nil)

	assert.Contains(t, buf.String(), "component=gateway")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNew_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer

	log := New(&buf, "warn", true)
	log.Info("dropped", nil)
	log.Warn("kept", map[string]interface{}{"status_code": 401})

	var entry map[string]interface{}

	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.InDelta(t, 401, entry["status_code"], 0)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("anything"))
}
