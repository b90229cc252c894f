package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends for the history slot.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config holds all aquagrade settings.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	GinMode   string `yaml:"gin_mode"`
	UploadDir string `yaml:"upload_dir"`
	// MaxUploadMB caps multipart image uploads.
	MaxUploadMB int `yaml:"max_upload_mb"`
}

// AnalysisConfig points at the external fish analysis API.
type AnalysisConfig struct {
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	Debug           bool          `yaml:"debug"`
	PersistRemotely bool          `yaml:"persist_remotely"`
}

type StorageConfig struct {
	Backend     string `yaml:"backend"` // sqlite, file, memory
	DBPath      string `yaml:"db_path"`
	HistoryFile string `yaml:"history_file"`
	SlotName    string `yaml:"slot_name"`
	Capacity    int    `yaml:"capacity"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8090",
			GinMode:     "release",
			UploadDir:   "uploads",
			MaxUploadMB: 10,
		},
		Analysis: AnalysisConfig{
			BaseURL: "http://localhost:5001/api",
			Timeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Backend:     BackendSQLite,
			DBPath:      "data/aquagrade.db",
			HistoryFile: "data/aquagrade-history.json",
			SlotName:    "aquagrade-history",
			Capacity:    50,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory, and AQUAGRADE_* variables,
// in that order of increasing precedence.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	setString("AQUAGRADE_ADDR", &c.Server.Addr)
	setString("AQUAGRADE_GIN_MODE", &c.Server.GinMode)
	setString("AQUAGRADE_UPLOAD_DIR", &c.Server.UploadDir)
	setString("AQUAGRADE_API_URL", &c.Analysis.BaseURL)
	setString("AQUAGRADE_STORAGE", &c.Storage.Backend)
	setString("AQUAGRADE_DB_PATH", &c.Storage.DBPath)
	setString("AQUAGRADE_HISTORY_FILE", &c.Storage.HistoryFile)
	setString("AQUAGRADE_SLOT_NAME", &c.Storage.SlotName)
	setString("AQUAGRADE_LOG_LEVEL", &c.Logging.Level)

	if err := setInt("AQUAGRADE_MAX_UPLOAD_MB", &c.Server.MaxUploadMB); err != nil {
		return err
	}
	if err := setInt("AQUAGRADE_HISTORY_CAPACITY", &c.Storage.Capacity); err != nil {
		return err
	}
	if err := setDuration("AQUAGRADE_API_TIMEOUT", &c.Analysis.Timeout); err != nil {
		return err
	}
	if err := setBool("AQUAGRADE_API_DEBUG", &c.Analysis.Debug); err != nil {
		return err
	}
	if err := setBool("AQUAGRADE_API_PERSIST", &c.Analysis.PersistRemotely); err != nil {
		return err
	}
	return setBool("AQUAGRADE_LOG_DEVELOPMENT", &c.Logging.Development)
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q (want sqlite, file or memory)", c.Storage.Backend)
	}
	if c.Storage.Capacity <= 0 {
		return fmt.Errorf("history capacity must be positive, got %d", c.Storage.Capacity)
	}
	if strings.TrimSpace(c.Analysis.BaseURL) == "" {
		return errors.New("analysis base_url is required")
	}
	if c.Storage.SlotName == "" {
		return errors.New("storage slot_name is required")
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	return nil
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
