package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PrettyOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(WithWriter(&buf), WithLevel(slog.LevelInfo))
	l.Info("hello", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "hello")
	assert.Contains(t, output, "key")
	assert.Contains(t, output, "value")
}

func TestNew_DefaultLevelIsWarn(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(WithWriter(&buf))
	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_DebugLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(WithWriter(&buf), WithDebug(true))
	l.Debug("debug msg")
	assert.Contains(t, buf.String(), "debug msg")

	var quiet bytes.Buffer
	q := New(WithWriter(&quiet), WithLevel(slog.LevelError), WithDebug(false))
	q.Warn("hidden")
	assert.Empty(t, quiet.String())
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(WithWriter(&buf), WithJSON(true), WithLevel(slog.LevelInfo))
	l.With("request_id", "abc").Info("structured", "count", 42)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &parsed))
	assert.Equal(t, "structured", parsed["msg"])
	assert.Equal(t, "abc", parsed["request_id"])
	assert.EqualValues(t, 42, parsed["count"])
}

func TestNew_MultipleWriters(t *testing.T) {
	t.Parallel()

	var first, second bytes.Buffer
	l := New(WithWriters(&first, &second), WithPrefix("task"))
	l.Error("multi")

	assert.Contains(t, first.String(), "multi")
	assert.Contains(t, second.String(), "multi")
	assert.True(t, strings.Contains(first.String(), "task"))
}

func TestNop(t *testing.T) {
	t.Parallel()

	l := Nop()
	assert.NotPanics(t, func() {
		l.Debug("msg")
		l.With("key", "value").Error("msg")
	})
	assert.False(t, l.Handler().Enabled(context.Background(), slog.LevelError))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected slog.Level
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "TRACE", expected: slog.LevelDebug},
		{input: " info ", expected: slog.LevelInfo},
		{input: "Warn", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()

			level, parseError := ParseLevel(testCase.input)
			require.NoError(t, parseError)
			assert.Equal(t, testCase.expected, level)
		})
	}

	_, parseError := ParseLevel("loud")
	assert.Error(t, parseError)
}
