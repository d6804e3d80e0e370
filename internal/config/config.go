// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/skilldeck/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete skilldeck configuration.
type Config struct {
	Version string `toml:"version"`

	// DefaultTool is the tool backend shown when the TUI starts
	DefaultTool string `toml:"default_tool"`

	// Manager holds the connection settings for the manager daemon
	Manager ManagerConfig `toml:"manager"`

	// Poll holds the job polling settings
	Poll PollConfig `toml:"poll"`

	// Tools declares the known tool backends
	Tools []ToolConfig `toml:"tools"`

	// Store holds local persistence settings
	Store StoreConfig `toml:"store"`

	// UI holds presentation settings
	UI UIConfig `toml:"ui"`
}

// ManagerConfig contains manager daemon connection settings.
type ManagerConfig struct {
	// BaseURL of the daemon API (default: http://127.0.0.1:8790)
	BaseURL string `toml:"base_url"`

	// TimeoutSeconds for non-streaming requests (default: 15)
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// PollConfig contains job polling settings.
type PollConfig struct {
	// IntervalMS between job status fetches while a job is active
	// (default: 1200)
	IntervalMS int `toml:"interval_ms"`
}

// ToolConfig declares one tool backend.
type ToolConfig struct {
	// Name identifies the backend to the daemon (e.g. "claude", "codex")
	Name string `toml:"name"`

	// ConfigPath is where the tool keeps its configuration file; watched
	// so the status view updates when the file appears or disappears
	ConfigPath string `toml:"config_path"`
}

// StoreConfig contains local persistence settings.
type StoreConfig struct {
	// PinsPath is the SQLite database holding pinned-project state
	// (default: ~/.skilldeck/pins.db)
	PinsPath string `toml:"pins_path"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is "dark", "light", or "auto"
	Theme string `toml:"theme"`

	// CompactMode uses a denser layout
	CompactMode bool `toml:"compact_mode"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Version:     "1.0.0",
		DefaultTool: "claude",
		Manager: ManagerConfig{
			BaseURL:        "http://127.0.0.1:8790",
			TimeoutSeconds: 15,
		},
		Poll: PollConfig{
			IntervalMS: 1200,
		},
		Tools: []ToolConfig{
			{Name: "claude", ConfigPath: filepath.Join(home, ".claude", "settings.json")},
			{Name: "codex", ConfigPath: filepath.Join(home, ".codex", "config.toml")},
		},
		Store: StoreConfig{
			PinsPath: filepath.Join(home, ".skilldeck", "pins.db"),
		},
		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the skilldeck configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".skilldeck"), nil
}

// ConfigPath returns the path of the TOML configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOADING AND SAVING
// =============================================================================

// Load reads the configuration file, applies environment overrides, and
// validates the result. A missing file yields the defaults.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over the given config.
func LoadTOML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return toml.Unmarshal(data, cfg)
}

// LoadFromPath loads and validates configuration from an explicit path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the default TOML path.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0o600)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies SKILLDECK_* environment variables on top of
// the loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SKILLDECK_MANAGER_URL"); v != "" {
		c.Manager.BaseURL = v
	}
	if v := os.Getenv("SKILLDECK_DEFAULT_TOOL"); v != "" {
		c.DefaultTool = v
	}
	if v := os.Getenv("SKILLDECK_POLL_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			c.Poll.IntervalMS = ms
		}
	}
	if v := os.Getenv("SKILLDECK_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if u, err := url.Parse(c.Manager.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return ValidationError{Field: "manager.base_url", Message: "must be a valid http(s) URL"}
	}
	if c.Manager.TimeoutSeconds <= 0 {
		return ValidationError{Field: "manager.timeout_seconds", Message: "must be positive"}
	}
	if c.Poll.IntervalMS < 100 {
		return ValidationError{Field: "poll.interval_ms", Message: "must be at least 100"}
	}
	if len(c.Tools) == 0 {
		return ValidationError{Field: "tools", Message: "at least one tool backend is required"}
	}
	if _, ok := c.Tool(c.DefaultTool); !ok {
		return ValidationError{Field: "default_tool", Message: "unknown tool " + strconv.Quote(c.DefaultTool)}
	}
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		return ValidationError{Field: "ui.theme", Message: `must be "dark", "light", or "auto"`}
	}
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalMS) * time.Millisecond
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Manager.TimeoutSeconds) * time.Second
}

// Tool looks up a tool backend by name.
func (c *Config) Tool(name string) (ToolConfig, bool) {
	for _, t := range c.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolConfig{}, false
}

// ToolNames returns the declared backend names in declaration order.
func (c *Config) ToolNames() []string {
	names := make([]string, len(c.Tools))
	for i, t := range c.Tools {
		names[i] = t.Name
	}
	return names
}

// =============================================================================
// GLOBAL CONFIGURATION
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets global config state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
