package telemetry_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalyx/presencerelay/internal/setup/config"
	"github.com/robalyx/presencerelay/internal/setup/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetLoggersRotatesSessions(t *testing.T) {
	t.Parallel()

	logDir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	for i, name := range []string{"old-1", "old-2", "old-3", "old-4"} {
		dir := filepath.Join(logDir, name)
		require.NoError(t, os.Mkdir(dir, 0o755))

		modTime := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(dir, modTime, modTime))
	}

	manager := telemetry.NewManager(logDir, &config.Debug{LogLevel: "debug", MaxLogsToKeep: 3}, &config.Telemetry{})
	assert.False(t, manager.Tracing())

	logger, dbLogger, err := manager.GetLoggers()
	require.NoError(t, err)

	logger.Info("hello")
	dbLogger.Info("query")
	require.NoError(t, logger.Sync())

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	assert.Len(t, names, 3)
	assert.NotContains(t, names, "old-1")
	assert.NotContains(t, names, "old-2")
	assert.Contains(t, names, "old-4")

	data, err := os.ReadFile(filepath.Join(manager.GetCurrentSessionDir(), "main.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), manager.GetInstanceID())

	require.NoError(t, manager.Stop(t.Context()))
}

func TestGetLoggersInvalidLevel(t *testing.T) {
	t.Parallel()

	manager := telemetry.NewManager(t.TempDir(), &config.Debug{LogLevel: "loud", MaxLogsToKeep: 1}, &config.Telemetry{})

	_, _, err := manager.GetLoggers()
	require.Error(t, err)
}

func TestErrorCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		function string
		expected string
	}{
		{"github.com/robalyx/presencerelay/internal/database/models.(*LinkModel).Create", "database"},
		{"github.com/robalyx/presencerelay/internal/steam.(*Manager).Run", "steam"},
		{"github.com/robalyx/presencerelay/internal/presence.(*Dispatcher).handle", "presence"},
		{"main.main", "application"},
	}

	for _, tt := range tests {
		entry := zapcore.Entry{Caller: zapcore.EntryCaller{Defined: true, Function: tt.function}}
		assert.Equal(t, tt.expected, telemetry.ErrorCategory(entry), tt.function)
	}
}
