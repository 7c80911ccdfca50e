package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides
const (
	EnvConfig   = "PEOPLEDIR_CONFIG"
	EnvAPIURL   = "PEOPLEDIR_API_URL"
	EnvAPIToken = "PEOPLEDIR_API_TOKEN"
	EnvRole     = "PEOPLEDIR_ROLE"
)

const DefaultAPIURL = "http://localhost:8080"

// Config is the peopledir configuration file
type Config struct {
	API         APIConfig         `yaml:"api"`
	Cache       CacheConfig       `yaml:"cache"`
	Directory   DirectoryConfig   `yaml:"directory"`
	Hierarchy   HierarchyConfig   `yaml:"hierarchy"`
	State       StateConfig       `yaml:"state"`
	Export      ExportConfig      `yaml:"export"`
	Permissions PermissionsConfig `yaml:"permissions"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// APIConfig locates the employee backend
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	Timeout string `yaml:"timeout"`
}

// CacheConfig tunes the per-view result caches
type CacheConfig struct {
	TTL string `yaml:"ttl"`
}

// DirectoryConfig tunes the directory listing
type DirectoryConfig struct {
	PageSize        int    `yaml:"page_size"`
	Debounce        string `yaml:"debounce"`
	SuggestionLimit int    `yaml:"suggestion_limit"`
	SortBy          string `yaml:"sort_by"`
	SortOrder       string `yaml:"sort_order"` // asc, desc
}

// HierarchyConfig tunes org chart loading
type HierarchyConfig struct {
	DefaultDepth int    `yaml:"default_depth"` // levels fetched for a new root, root included
	LoadDepth    int    `yaml:"load_depth"`    // levels fetched below an expanded node
	RootID       string `yaml:"root_id"`       // employee shown when no root is given
}

// StateConfig locates the client state database
type StateConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ExportConfig selects where exports are written
type ExportConfig struct {
	Driver string   `yaml:"driver"` // fs, s3
	FSRoot string   `yaml:"fs_root"`
	S3     S3Config `yaml:"s3"`
	Fields []string `yaml:"fields"`
}

// S3Config configures the S3 export driver
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	Prefix       string `yaml:"prefix"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// PermissionsConfig names the role whose flags the client shows
type PermissionsConfig struct {
	Role       string `yaml:"role"`
	PolicyFile string `yaml:"policy_file"`
}

// LoggingConfig configures zap
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty logs to stderr
}

// MetricsConfig enables the prometheus listener of the MCP server
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration
func Default() *Config {
	dataDir := filepath.Join(dataHome(), "peopledir")
	return &Config{
		API: APIConfig{
			BaseURL: DefaultAPIURL,
			Timeout: "30s",
		},
		Cache: CacheConfig{TTL: "120s"},
		Directory: DirectoryConfig{
			PageSize:        20,
			Debounce:        "300ms",
			SuggestionLimit: 8,
			SortOrder:       "asc",
		},
		Hierarchy: HierarchyConfig{
			DefaultDepth: 3,
			LoadDepth:    1,
		},
		State: StateConfig{
			DatabasePath: filepath.Join(dataDir, "state.db"),
		},
		Export: ExportConfig{
			Driver: "fs",
			FSRoot: filepath.Join(dataDir, "exports"),
			Fields: []string{"id", "firstName", "lastName", "email", "department", "position", "location", "status"},
		},
		Permissions: PermissionsConfig{Role: "employee"},
		Logging:     LoggingConfig{Level: "info"},
	}
}

// Path returns the config file location: PEOPLEDIR_CONFIG, else
// $XDG_CONFIG_HOME/peopledir/config.yaml
func Path() string {
	if env := os.Getenv(EnvConfig); env != "" {
		return ExpandHome(env)
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(homeDir(), ".config")
	}
	return filepath.Join(base, "peopledir", "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.State.DatabasePath = ExpandHome(cfg.State.DatabasePath)
	cfg.Export.FSRoot = ExpandHome(cfg.Export.FSRoot)
	cfg.Logging.File = ExpandHome(cfg.Logging.File)
	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv(EnvAPIURL); url != "" {
		c.API.BaseURL = url
	}
	if token := os.Getenv(EnvAPIToken); token != "" {
		c.API.Token = token
	}
	if role := os.Getenv(EnvRole); role != "" {
		c.Permissions.Role = role
	}
}

// APITimeout returns the request timeout, 30s when unset or invalid
func (c *Config) APITimeout() time.Duration {
	return parseDuration(c.API.Timeout, 30*time.Second)
}

// CacheTTL returns the cache TTL, 120s when unset or invalid
func (c *Config) CacheTTL() time.Duration {
	return parseDuration(c.Cache.TTL, 120*time.Second)
}

// DebounceWindow returns the search debounce, 300ms when unset or invalid
func (c *Config) DebounceWindow() time.Duration {
	return parseDuration(c.Directory.Debounce, 300*time.Millisecond)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func dataHome() string {
	if env := os.Getenv("XDG_DATA_HOME"); env != "" {
		return env
	}
	return filepath.Join(homeDir(), ".local", "share")
}
