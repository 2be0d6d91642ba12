package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	DefaultTargetDir      = "data/yolo"
	DefaultTimeoutSeconds = 30
	DefaultChunkSize      = 8 * 1024

	envDataDir        = "VISIONNAV_DATA_DIR"
	envManifest       = "VISIONNAV_MANIFEST"
	envTimeoutSeconds = "VISIONNAV_TIMEOUT_SECONDS"
	envLogLevel       = "VISIONNAV_LOG_LEVEL"
)

// FetcherConfig controls where artifacts land and how they are pulled.
type FetcherConfig struct {
	TargetDir      string `yaml:"target_dir"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ChunkSize      int    `yaml:"chunk_size"`
}

// Timeout bounds connection establishment only, never the body transfer.
func (f FetcherConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

type Config struct {
	LogLevel      string        `yaml:"log_level"`
	ManifestPath  string        `yaml:"manifest"`
	FetcherConfig FetcherConfig `yaml:"fetcher"`
}

// SetDefaults fills zero-valued fields with the built-in defaults. Logs
// default to warn so they stay out of the way of the console output.
func (c *Config) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = LogLevelWarn
	}
	if c.FetcherConfig.TargetDir == "" {
		c.FetcherConfig.TargetDir = DefaultTargetDir
	}
	if c.FetcherConfig.TimeoutSeconds <= 0 {
		c.FetcherConfig.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.FetcherConfig.ChunkSize <= 0 {
		c.FetcherConfig.ChunkSize = DefaultChunkSize
	}
}

// Load builds the configuration from an optional YAML file, then applies
// environment overrides and fills the rest with defaults. A .env file in
// the working directory is honored when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.SetDefaults()

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(envDataDir); v != "" {
		c.FetcherConfig.TargetDir = v
	}

	if v := os.Getenv(envManifest); v != "" {
		c.ManifestPath = v
	}

	if v := os.Getenv(envLogLevel); v != "" {
		c.LogLevel = v
	}

	if v := os.Getenv(envTimeoutSeconds); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return fmt.Errorf("invalid %s value %q", envTimeoutSeconds, v)
		}
		c.FetcherConfig.TimeoutSeconds = secs
	}

	return nil
}
