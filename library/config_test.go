package library

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearLibraryEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LIBRARY_FILE", "LIBRARY_BACKEND", "LIBRARY_RESET_ON_CORRUPT", "LIBRARY_LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearLibraryEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "library_gui.json", cfg.File)
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearLibraryEnv(t)
	t.Setenv("LIBRARY_FILE", "/tmp/desk.db")
	t.Setenv("LIBRARY_BACKEND", "SQLite")
	t.Setenv("LIBRARY_RESET_ON_CORRUPT", "true")
	t.Setenv("LIBRARY_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Config{File: "/tmp/desk.db", Backend: BackendSQLite, ResetOnCorrupt: true, LogLevel: slog.LevelDebug}, cfg)
}

func TestLoadConfigFromDotEnv(t *testing.T) {
	clearLibraryEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LIBRARY_FILE=from-dotenv.json\nLIBRARY_LOG_LEVEL=info\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("LIBRARY_FILE")
		os.Unsetenv("LIBRARY_LOG_LEVEL")
	})

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.json", cfg.File)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, BackendJSON, cfg.Backend)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	clearLibraryEnv(t)
	t.Setenv("LIBRARY_BACKEND", "postgres")
	_, err := LoadConfig(missing)
	assert.Error(t, err)

	clearLibraryEnv(t)
	t.Setenv("LIBRARY_RESET_ON_CORRUPT", "maybe")
	_, err = LoadConfig(missing)
	assert.Error(t, err)
}
