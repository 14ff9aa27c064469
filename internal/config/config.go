// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
type Config struct {
	Table   TableConfig   `toml:"table"`
	Storage StorageConfig `toml:"storage"`
	LLM     LLMConfig     `toml:"llm"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// TableConfig holds the event table settings.
type TableConfig struct {
	Pagination       string `toml:"pagination"` // "local", "manual", "cursor"
	Sorting          string `toml:"sorting"`    // "local", "manual"
	Filtering        string `toml:"filtering"`  // "local", "manual"
	PageSize         int    `toml:"page_size"`
	PageSizes        []int  `toml:"page_sizes"`
	DefaultSort      string `toml:"default_sort"` // column key, sorted descending
	DownloadFileName string `toml:"download_file_name"`
	ExportDir        string `toml:"export_dir"`
	DelegateExport   bool   `toml:"delegate_export"` // stream exports from the store
	SkeletonRows     int    `toml:"skeleton_rows"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "latte"
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider string `toml:"provider"` // "ollama", "openai", "lmstudio"
	Model    string `toml:"model"`    // e.g., "llama3.2"
	BaseURL  string `toml:"base_url"` // e.g., "http://localhost:11434"
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `toml:"level"` // "debug", "info", "warn", "error"
	File       string `toml:"file"`  // empty discards logs
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	Compress   bool   `toml:"compress"`
}

// Mode names accepted in [table].
const (
	ModeLocal  = "local"
	ModeManual = "manual"
	ModeCursor = "cursor"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Table: TableConfig{
			Pagination:       ModeLocal,
			Sorting:          ModeLocal,
			Filtering:        ModeLocal,
			PageSize:         10,
			PageSizes:        []int{10, 30, 50},
			DefaultSort:      "startsAt",
			DownloadFileName: "events",
			ExportDir:        ".",
			SkeletonRows:     5,
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "llama3.2",
			BaseURL:  "http://localhost:11434",
		},
		UI: UIConfig{
			Theme: "mocha",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "marquee.db"
	}
	return filepath.Join(home, ".local", "share", "marquee", "marquee.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "marquee", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Table.ExportDir = expandPath(cfg.Table.ExportDir)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	// MARQUEE_MANUAL flips all three table modes at once.
	if v := os.Getenv("MARQUEE_MANUAL"); v != "" {
		manual, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing MARQUEE_MANUAL: %w", err)
		}
		mode := ModeLocal
		if manual {
			mode = ModeManual
		}
		cfg.Table.Pagination, cfg.Table.Sorting, cfg.Table.Filtering = mode, mode, mode
	}
	if v := os.Getenv("MARQUEE_PAGINATION"); v != "" {
		cfg.Table.Pagination = v
	}
	if v := os.Getenv("MARQUEE_SORTING"); v != "" {
		cfg.Table.Sorting = v
	}
	if v := os.Getenv("MARQUEE_FILTERING"); v != "" {
		cfg.Table.Filtering = v
	}
	if v := os.Getenv("MARQUEE_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing MARQUEE_PAGE_SIZE: %w", err)
		}
		cfg.Table.PageSize = n
	}
	if v := os.Getenv("MARQUEE_EXPORT_DIR"); v != "" {
		cfg.Table.ExportDir = v
	}

	if v := os.Getenv("MARQUEE_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("MARQUEE_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("MARQUEE_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}

	if v := os.Getenv("MARQUEE_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}

	if v := os.Getenv("MARQUEE_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}

	if v := os.Getenv("MARQUEE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MARQUEE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	t := c.Table
	if !slices.Contains([]string{ModeLocal, ModeManual, ModeCursor}, t.Pagination) {
		return fmt.Errorf("invalid pagination mode: %q", t.Pagination)
	}
	if !slices.Contains([]string{ModeLocal, ModeManual}, t.Sorting) {
		return fmt.Errorf("invalid sorting mode: %q", t.Sorting)
	}
	if !slices.Contains([]string{ModeLocal, ModeManual}, t.Filtering) {
		return fmt.Errorf("invalid filtering mode: %q", t.Filtering)
	}
	if t.PageSize <= 0 {
		return errors.New("page_size must be positive")
	}
	for _, size := range t.PageSizes {
		if size <= 0 {
			return fmt.Errorf("invalid page size: %d", size)
		}
	}
	if t.SkeletonRows < 0 {
		return errors.New("skeleton_rows must not be negative")
	}
	if t.DownloadFileName == "" || strings.ContainsAny(t.DownloadFileName, `/\`) {
		return fmt.Errorf("invalid download_file_name: %q", t.DownloadFileName)
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return errors.New("log rotation limits must not be negative")
	}
	return nil
}

// Manual reports whether every table concern is delegated to the store.
func (t TableConfig) Manual() bool {
	return t.Pagination == ModeManual && t.Sorting == ModeManual && t.Filtering == ModeManual
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
