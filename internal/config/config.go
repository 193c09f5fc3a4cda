// Package config loads the settings of the sensor-bridge commands.
//
// Sources, lowest precedence first: built-in defaults, a YAML file, a .env
// file, and SENSOR_BRIDGE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/backoff"
)

// Config represents the complete command configuration
type Config struct {
	InstanceID   string       `yaml:"instance_id"   env:"SENSOR_BRIDGE_INSTANCE_ID"`
	EngineConfig string       `yaml:"engine_config" env:"SENSOR_BRIDGE_ENGINE_CONFIG"` // passed to Init ("" = engine default)
	Cycles       int          `yaml:"cycles"        env:"SENSOR_BRIDGE_CYCLES"`        // 0 = run until interrupted
	Channels     []string     `yaml:"channels"      env:"SENSOR_BRIDGE_CHANNELS" envSeparator:","`
	Script       string       `yaml:"script"        env:"SENSOR_BRIDGE_SCRIPT"` // optional Lua script
	Output       OutputConfig `yaml:"output"`
	Retry        RetryConfig  `yaml:"retry"`
	Log          LogConfig    `yaml:"log"`
}

// OutputConfig contains frame saving settings
type OutputConfig struct {
	Dir         string `yaml:"dir"          env:"SENSOR_BRIDGE_OUTPUT_DIR"`
	SaveEvery   int    `yaml:"save_every"   env:"SENSOR_BRIDGE_SAVE_EVERY"` // save one frame every N cycles
	Format      string `yaml:"format"       env:"SENSOR_BRIDGE_FORMAT"`     // png, jpeg
	JPEGQuality int    `yaml:"jpeg_quality" env:"SENSOR_BRIDGE_JPEG_QUALITY"`
	Record      string `yaml:"record"       env:"SENSOR_BRIDGE_RECORD"` // skeleton recording output path
}

// RetryConfig contains the backoff applied to engine errors
type RetryConfig struct {
	MaxRetries    int           `yaml:"max_retries"     env:"SENSOR_BRIDGE_MAX_RETRIES"`
	RetryDelay    time.Duration `yaml:"retry_delay"     env:"SENSOR_BRIDGE_RETRY_DELAY"`
	MaxRetryDelay time.Duration `yaml:"max_retry_delay" env:"SENSOR_BRIDGE_MAX_RETRY_DELAY"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `yaml:"level" env:"SENSOR_BRIDGE_LOG_LEVEL"` // debug, info, warn, error
	JSON  bool   `yaml:"json"  env:"SENSOR_BRIDGE_LOG_JSON"`
}

// Backoff converts the retry settings.
func (r RetryConfig) Backoff() backoff.Config {
	return backoff.Config{
		MaxRetries:    r.MaxRetries,
		RetryDelay:    r.RetryDelay,
		MaxRetryDelay: r.MaxRetryDelay,
	}
}

// Default returns the configuration used when no file is given.
func Default() Config {
	b := backoff.DefaultConfig()
	return Config{
		InstanceID: "sensor-bridge",
		Channels:   []string{"skeleton", "hand", "gesture", "issue", "face"},
		Output: OutputConfig{
			Dir:         "",
			SaveEvery:   30,
			Format:      "png",
			JPEGQuality: 90,
		},
		Retry: RetryConfig{
			MaxRetries:    b.MaxRetries,
			RetryDelay:    b.RetryDelay,
			MaxRetryDelay: b.MaxRetryDelay,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration from path (optional), the dotenv file at
// dotenvPath (missing file ignored) and the environment.
func Load(path, dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := LoadDotEnv(dotenvPath); err != nil {
			return nil, fmt.Errorf("config: load dotenv: %w", err)
		}
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv loads environment variables from path. Missing files are
// ignored; variables already set win.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
