package library

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	// DefaultFile is the ledger file used when nothing else is configured.
	DefaultFile = "library_gui.json"
)

// Config selects where and how the ledger is stored.
type Config struct {
	File           string
	Backend        string
	ResetOnCorrupt bool
	LogLevel       slog.Level
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		File:     DefaultFile,
		Backend:  BackendJSON,
		LogLevel: slog.LevelWarn,
	}
}

// LoadConfig applies LIBRARY_* environment variables over the defaults. A
// .env file in the working directory is read first when present; variables
// already set in the environment win over it.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}

	cfg := DefaultConfig()
	if v := os.Getenv("LIBRARY_FILE"); v != "" {
		cfg.File = v
	}
	if v := os.Getenv("LIBRARY_BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("LIBRARY_RESET_ON_CORRUPT"); v != "" {
		reset, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("LIBRARY_RESET_ON_CORRUPT: %w", err)
		}
		cfg.ResetOnCorrupt = reset
	}
	if v := os.Getenv("LIBRARY_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("LIBRARY_LOG_LEVEL: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

// Validate rejects an empty file path or an unknown backend.
func (c Config) Validate() error {
	if strings.TrimSpace(c.File) == "" {
		return fmt.Errorf("ledger file path is empty")
	}
	switch c.Backend {
	case BackendJSON, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendJSON, BackendSQLite)
	}
}

// OpenStore builds the store named by the config. The returned close func
// releases the SQLite handle and is a no-op for the JSON file.
func (c Config) OpenStore() (Store, func() error, error) {
	switch c.Backend {
	case BackendSQLite:
		s, err := NewSQLiteStore(c.File)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return NewJSONStore(c.File), func() error { return nil }, nil
	}
}
