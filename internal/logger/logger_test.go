package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gookit/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelsFor(t *testing.T) {
	info := levelsFor("info")
	assert.Contains(t, info, slog.ErrorLevel)
	assert.Contains(t, info, slog.InfoLevel)
	assert.NotContains(t, info, slog.DebugLevel)

	debug := levelsFor("DEBUG")
	assert.Contains(t, debug, slog.DebugLevel)
}

func TestNewAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("earlier line\n"), 0o644))

	l, err := New("info", path)
	require.NoError(t, err)

	l.Infof("[%s] Checking for latest tweet...", "saylor")
	l.Debugf("hidden")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "earlier line\n")
	assert.Contains(t, out, "[saylor] Checking for latest tweet...")
	assert.NotContains(t, out, "hidden")
}
