package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

type Config struct {
	VaultPath    string
	RewriteLinks bool
	History      bool
	HistoryPath  string // empty means <vault>/.titlesync/history.db
	DebounceMS   int
	LogLevel     string
}

func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		VaultPath:    filepath.Join(home, "notes"),
		RewriteLinks: true,
		History:      true,
		DebounceMS:   200,
		LogLevel:     "info",
	}
}

// HistoryFile returns the rename journal location.
func (c Config) HistoryFile() string {
	if c.HistoryPath != "" {
		return c.HistoryPath
	}
	return filepath.Join(c.VaultPath, ".titlesync", "history.db")
}

// Debounce returns the watcher quiet period.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.VaultPath == "" {
		return fmt.Errorf("vault_path is empty")
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMS)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}
