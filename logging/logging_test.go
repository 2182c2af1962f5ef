package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Aqumen-Tech/aqumenlib/config"
)

func TestFilePath(t *testing.T) {
	ts := time.Date(2024, 3, 15, 9, 5, 7, 0, time.UTC)
	assert.Equal(t, filepath.Join("logs", "prod_20240315_090507.log"), FilePath("logs", "prod", ts))
	assert.Equal(t, filepath.Join("logs", "default_20240315_090507.log"), FilePath("logs", "", ts))
}

func TestNewLevels(t *testing.T) {
	l, _, err := New(config.Logging{Level: "warn", Console: true}, "test")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, _, err = New(config.Logging{Level: "loud"}, "test")
	assert.Error(t, err)
}

func TestNewWritesFile(t *testing.T) {
	dir := t.TempDir()
	l, closer, err := New(config.Logging{Level: "debug", LogDir: dir}, "unit")
	require.NoError(t, err)
	l.Info("curve built", zap.String("curve", "USD-SOFR"))
	require.NoError(t, closer())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "unit_"))
	b, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"curve":"USD-SOFR"`)
}

func TestInitAndSlog(t *testing.T) {
	flush, err := Init(config.Logging{Level: "info", Console: false}, "test")
	require.NoError(t, err)
	defer zap.ReplaceGlobals(zap.NewNop())
	assert.True(t, zap.L().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, zap.L().Core().Enabled(zapcore.DebugLevel))

	s := Slog(zap.L())
	require.NotNil(t, s)
	s.Info("bridged", "k", 1)
	_ = flush()
}

func TestInitCloseReleasesFile(t *testing.T) {
	dir := t.TempDir()
	closeLog, err := Init(config.Logging{Level: "info", LogDir: dir}, "close")
	require.NoError(t, err)
	zap.L().Info("before close")
	require.NoError(t, closeLog())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	path := filepath.Join(dir, entries[0].Name())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "before close")

	// A second close reports the file as already closed.
	assert.ErrorIs(t, closeLog(), os.ErrClosed)

	zap.L().Info("after close")
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "after close")
}
