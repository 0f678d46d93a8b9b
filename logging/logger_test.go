package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*PersonaMeshLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewLogger(&LoggerConfig{Level: level, Format: "json", Output: buf}), buf
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLevel("WARN"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel(" error "))
	assert.Equal(t, LogLevelInfo, ParseLevel("info"))
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"))
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestWithContextAttachesAttributes(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	logger.WithComponent("router").
		WithSession("sess-1", 3).
		WithContext("mode", "task").
		Info("routing decision")

	out := buf.String()
	assert.Contains(t, out, `"component":"router"`)
	assert.Contains(t, out, `"session_id":"sess-1"`)
	assert.Contains(t, out, `"turn":3`)
	assert.Contains(t, out, `"mode":"task"`)
}

func TestWithContextDoesNotMutateParent(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	_ = logger.WithContext("key", "value")
	logger.Info("plain entry")

	assert.NotContains(t, buf.String(), `"key":"value"`)
}

func TestLogCorrection(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	logger.LogCorrection("memory cleared due to overload or instability", 0.4)

	out := buf.String()
	assert.Contains(t, out, "Self-correction applied")
	assert.Contains(t, out, `"stability_score":0.4`)
}

func TestLogHandlerCallFailure(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	logger.LogHandlerCall("task", "agent_task", 0, false, assert.AnError)

	out := buf.String()
	assert.Contains(t, out, "Handler dispatch failed")
	assert.Contains(t, out, `"level":"ERROR"`)
}

func TestTextFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "text", Output: buf})

	logger.Info("turn complete")

	require.NotEmpty(t, buf.String())
	assert.True(t, strings.Contains(buf.String(), "turn complete"))
}

func TestNoOpLoggerImplementsLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
}
