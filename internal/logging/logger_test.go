package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesUnderProjectDir(t *testing.T) {
	projectDir := t.TempDir()
	logger, err := New(projectDir, "debug")
	require.NoError(t, err)

	logger.Printf("discover: query=%q\n", "Paris")
	logger.Component("remote").Warn().Str("op", "plan").Msg("slow response")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(projectDir, ".waypoint", "logs", "waypoint.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `discover: query=\"Paris\"`)
	assert.Contains(t, string(data), `"component":"remote"`)
	assert.Contains(t, string(data), `"op":"plan"`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, "warn")
	logger.Printf("hidden")
	logger.Error().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Printf("ignored")
	assert.NoError(t, logger.Close())
	assert.NotNil(t, logger.Component("x"))
}

func TestTailReturnsRecentEntries(t *testing.T) {
	projectDir := t.TempDir()
	logger, err := New(projectDir, "info")
	require.NoError(t, err)
	for _, msg := range []string{"one", "two", "three"} {
		logger.Component("trip").Info().Msg(msg)
	}
	logger.Error().Str("error", "boom").Msg("plan failed")
	require.NoError(t, logger.Close())

	entries := Tail(logger.Path(), 2)
	require.Len(t, entries, 2)
	assert.Equal(t, "three", entries[0].Message)
	assert.Equal(t, "trip", entries[0].Component)
	assert.Equal(t, "error", entries[1].Level)
	assert.Contains(t, entries[1].String(), "plan failed: boom")
}

func TestTailToleratesMissingAndPlainFiles(t *testing.T) {
	assert.Nil(t, Tail(filepath.Join(t.TempDir(), "absent.log"), 5))
	assert.Nil(t, Tail("", 5))

	path := filepath.Join(t.TempDir(), "plain.log")
	require.NoError(t, os.WriteFile(path, []byte("not json\n\n"), 0o644))
	entries := Tail(path, 5)
	require.Len(t, entries, 1)
	assert.Equal(t, "not json", entries[0].Message)
	assert.Equal(t, "      not json", entries[0].String())
}
