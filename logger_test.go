// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package eapi

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureLog redirects the standard logger for the duration of fn and
// returns what was written.
func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)
	fn()
	return buf.String()
}

// TestLogLevelString tests log level names
func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "NONE", LogLevelNone.String())
	assert.Equal(t, "UNKNOWN(42)", LogLevel(42).String())
}

// TestDefaultLoggerLevelFiltering tests threshold behavior
func TestDefaultLoggerLevelFiltering(t *testing.T) {
	logger := NewDefaultLogger(LogLevelWarn)

	out := captureLog(t, func() {
		logger.Debug("debug message")
		logger.Info("info message")
	})
	assert.Empty(t, out)

	out = captureLog(t, func() {
		logger.Warn("warn message")
		logger.Error("error message")
	})
	assert.Contains(t, out, "[WARN] warn message")
	assert.Contains(t, out, "[ERROR] error message")
}

// TestDefaultLoggerNone tests that LogLevelNone silences everything
func TestDefaultLoggerNone(t *testing.T) {
	logger := NewDefaultLogger(LogLevelNone)
	out := captureLog(t, func() {
		logger.Error("should not appear")
	})
	assert.Empty(t, out)
}

// TestDefaultLoggerKeyValues tests structured pair formatting
func TestDefaultLoggerKeyValues(t *testing.T) {
	logger := NewDefaultLogger(LogLevelDebug)

	out := captureLog(t, func() {
		logger.Info("client created", "host", "192.168.1.1", "transport", "https")
	})
	assert.Contains(t, out, "[INFO] client created host=192.168.1.1 transport=https")

	// Odd-length pairs mark the missing value explicitly
	out = captureLog(t, func() {
		logger.Info("oops", "key")
	})
	assert.Contains(t, out, "key=<MISSING>")
}

// TestSanitizeLogValue tests control character handling and truncation
func TestSanitizeLogValue(t *testing.T) {
	assert.Equal(t, "line1 line2", sanitizeLogValue("line1\nline2"))
	assert.Equal(t, "tab here", sanitizeLogValue("tab\there"))
	assert.Equal(t, "bell.", sanitizeLogValue("bell\x07"))
	assert.Equal(t, "42", sanitizeLogValue(42))

	long := strings.Repeat("x", MaxLogValueLength+10)
	sanitized := sanitizeLogValue(long)
	assert.Contains(t, sanitized, "...[TRUNCATED]")
	assert.Len(t, sanitized, MaxLogValueLength+len("...[TRUNCATED]"))
}

// TestNoOpLogger tests that the no-op logger accepts all calls
func TestNoOpLogger(t *testing.T) {
	logger := &NoOpLogger{}
	out := captureLog(t, func() {
		logger.Debug("a")
		logger.Info("b", "k", "v")
		logger.Warn("c")
		logger.Error("d")
	})
	assert.Empty(t, out)
}

// TestClientDebugLogRedactsSecret tests that request logging never leaks the
// enable secret
func TestClientDebugLogRedactsSecret(t *testing.T) {
	conn := &fakeConn{replies: []fakeReply{
		reply(jsonResults(t, "{}", "{}")),
	}}
	client := newTestClient(t, conn,
		EnableSecret("super-secret"),
		WithLogger(NewDefaultLogger(LogLevelDebug)))

	out := captureLog(t, func() {
		_, err := client.RunCommands(context.Background(), []string{"show version"})
		assert.NoError(t, err)
	})
	assert.NotContains(t, out, "super-secret")
	assert.Contains(t, out, "<removed>")
}
