// internal/util/logger_test.go
package util

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, slog.LevelWarn)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.With("component", "ledger").Warn("kept", "identity", "alice")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "ledger", entry["component"])
	assert.Equal(t, "alice", entry["identity"])
	assert.Contains(t, entry, "source")
}

func TestIsError(t *testing.T) {
	assert.True(t, IsError(ErrInvalidAmount, ErrInvalidArgument))
	assert.True(t, IsError(ErrSameCategory, ErrInvalidArgument))
	assert.False(t, IsError(ErrNotFound, ErrInvalidArgument))
	assert.False(t, IsError(nil, ErrNotFound))
}
