package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for outline-sync.
type Config struct {
	// Local data directory holding the Documents, Attachments and
	// KeyValueStore roots. Defaults to ~/.outline-sync/data.
	LocalDir string `env:"OUTLINE_LOCAL_DIR"`

	// Mounted remote container. When empty or missing, remote sync is
	// reported as unavailable.
	RemoteDir string `env:"OUTLINE_REMOTE_DIR"`

	// Path of the bbolt state file. Defaults to ~/.outline-sync/state.db.
	StateDB string `env:"OUTLINE_STATE_DB"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// LogLevel overrides the environment's default level.
	LogLevel string `env:"LOG_LEVEL"`

	// How often the transfer loop runs while remote sync is on.
	SyncInterval time.Duration `env:"SYNC_INTERVAL" envDefault:"5m"`

	// Upper bound for one bulk migration. Zero means no limit.
	MigrationTimeout time.Duration `env:"MIGRATION_TIMEOUT" envDefault:"0s"`

	// Run a transfer pass shortly after files change on either side.
	WatchChanges  bool          `env:"WATCH_CHANGES" envDefault:"true"`
	WatchDebounce time.Duration `env:"WATCH_DEBOUNCE" envDefault:"2s"`
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.LocalDir == "" {
		dir, err := DefaultLocalDir()
		if err != nil {
			return nil, err
		}

		cfg.LocalDir = dir
	}

	// Store path checks compare string prefixes, which only works with
	// absolute paths.
	for _, p := range []*string{&cfg.LocalDir, &cfg.RemoteDir, &cfg.StateDB} {
		if *p == "" {
			continue
		}

		abs, err := filepath.Abs(*p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s to absolute path: %w", *p, err)
		}

		*p = abs
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.SyncInterval <= 0 {
		return fmt.Errorf("SYNC_INTERVAL must be positive, got %s", c.SyncInterval)
	}

	if c.MigrationTimeout < 0 {
		return fmt.Errorf("MIGRATION_TIMEOUT must not be negative, got %s", c.MigrationTimeout)
	}

	if c.WatchDebounce < 0 {
		return fmt.Errorf("WATCH_DEBOUNCE must not be negative, got %s", c.WatchDebounce)
	}

	if c.RemoteDir != "" && (within(c.RemoteDir, c.LocalDir) || within(c.LocalDir, c.RemoteDir)) {
		return fmt.Errorf("OUTLINE_REMOTE_DIR and OUTLINE_LOCAL_DIR must not overlap")
	}

	return nil
}

// within reports whether p is dir or lies below it.
func within(p, dir string) bool {
	return p == dir || strings.HasPrefix(p, dir+string(os.PathSeparator))
}

// DefaultLocalDir returns ~/.outline-sync/data.
func DefaultLocalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(home, ".outline-sync", "data"), nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
