package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the application's combined configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Remote  RemoteConfig  `toml:"remote"`
	Sync    SyncConfig    `toml:"sync"`
}

// StorageConfig covers the local SQLite store and document cache.
type StorageConfig struct {
	DataDir          string `toml:"data_dir"`
	DebounceMS       int    `toml:"debounce_ms"`
	AutosaveSchedule string `toml:"autosave_schedule"`
}

// RemoteConfig covers the optional shared MongoDB store.
type RemoteConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// SyncConfig covers peer broadcast sessions.
type SyncConfig struct {
	ListenAddr string `toml:"listen_addr"`
	Advertise  bool   `toml:"advertise"`
}

// NewDefault returns a Config with default values.
func NewDefault() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Storage: StorageConfig{
			DataDir:          filepath.Join(home, ".lessondeck"),
			DebounceMS:       500,
			AutosaveSchedule: "@every 1m",
		},
		Remote: RemoteConfig{
			Database: "lessondeck",
		},
		Sync: SyncConfig{
			ListenAddr: ":8787",
			Advertise:  true,
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is
// not an error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := NewDefault()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}
	cfg.validate()
	return cfg, nil
}

// Debounce returns the write-coalescing interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Storage.DebounceMS) * time.Millisecond
}

// DBPath returns the SQLite file location under the data dir.
func (c *Config) DBPath() string {
	return filepath.Join(c.Storage.DataDir, "lessondeck.db")
}

// DocumentsDir returns the imported-document cache directory.
func (c *Config) DocumentsDir() string {
	return filepath.Join(c.Storage.DataDir, "documents")
}

// validate resets out-of-range values to defaults.
func (c *Config) validate() {
	defaults := NewDefault()
	if c.Storage.DebounceMS < 300 {
		// The write discipline depends on a real quiet period.
		c.Storage.DebounceMS = defaults.Storage.DebounceMS
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = defaults.Storage.DataDir
	}
	if c.Storage.AutosaveSchedule == "" {
		c.Storage.AutosaveSchedule = defaults.Storage.AutosaveSchedule
	}
	if c.Sync.ListenAddr == "" {
		c.Sync.ListenAddr = defaults.Sync.ListenAddr
	}
}
