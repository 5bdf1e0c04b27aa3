package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors Config with pointer fields so we can distinguish
// "not set" from zero values when merging TOML.
type fileConfig struct {
	VaultPath    *string `toml:"vault_path"`
	RewriteLinks *bool   `toml:"rewrite_links"`
	History      *bool   `toml:"history"`
	HistoryPath  *string `toml:"history_path"`
	DebounceMS   *int    `toml:"debounce_ms"`
	LogLevel     *string `toml:"log_level"`
}

// ConfigDir returns the titlesync config directory, respecting XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "titlesync")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "titlesync")
}

// ConfigPath returns the full path to config.toml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadFile reads config.toml and merges non-nil fields into cfg.
// Returns true if the file existed, false otherwise.
func LoadFile(cfg *Config) (bool, error) {
	return LoadPath(cfg, ConfigPath())
}

// LoadPath is LoadFile for an explicit file.
func LoadPath(cfg *Config, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return true, fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.VaultPath != nil {
		cfg.VaultPath = ExpandHome(*fc.VaultPath)
	}
	if fc.RewriteLinks != nil {
		cfg.RewriteLinks = *fc.RewriteLinks
	}
	if fc.History != nil {
		cfg.History = *fc.History
	}
	if fc.HistoryPath != nil {
		cfg.HistoryPath = ExpandHome(*fc.HistoryPath)
	}
	if fc.DebounceMS != nil {
		cfg.DebounceMS = *fc.DebounceMS
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}

	return true, nil
}

// SaveFile sets vault_path in the config file at path. Other keys already in
// the file are kept as they are.
func SaveFile(path, vaultPath string) error {
	var fc fileConfig
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return err
	default:
		if err := toml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	fc.VaultPath = ptr(collapseHome(vaultPath))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(fc); err != nil {
		return errors.Join(err, f.Close())
	}
	return f.Close()
}

func ptr[T any](v T) *T {
	return &v
}

// collapseHome stores paths under the home dir with ~ for readability.
func collapseHome(path string) string {
	home, _ := os.UserHomeDir()
	if home != "" && strings.HasPrefix(path, home+string(os.PathSeparator)) {
		return "~" + path[len(home):]
	}
	return path
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, _ := os.UserHomeDir()
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
