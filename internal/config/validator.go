package config

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	sensorbridge "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge"
)

var instanceIDPattern = regexp.MustCompile(`^[a-z0-9\-]+$`)

// Validate checks the configuration and fills defaults
func Validate(cfg *Config) error {
	if cfg.InstanceID == "" {
		return fmt.Errorf("instance_id is required")
	}
	if !instanceIDPattern.MatchString(cfg.InstanceID) {
		return fmt.Errorf("instance_id must match pattern [a-z0-9-]+")
	}

	if cfg.Cycles < 0 {
		return fmt.Errorf("cycles must be >= 0")
	}

	if _, err := ParseChannels(cfg.Channels); err != nil {
		return err
	}

	if cfg.Output.SaveEvery <= 0 {
		cfg.Output.SaveEvery = 30
	}
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	switch cfg.Output.Format {
	case "":
		cfg.Output.Format = "png"
	case "png", "jpeg":
	case "jpg":
		cfg.Output.Format = "jpeg"
	default:
		return fmt.Errorf("output.format must be png or jpeg, got %q", cfg.Output.Format)
	}
	if cfg.Output.JPEGQuality == 0 {
		cfg.Output.JPEGQuality = 90
	}
	if cfg.Output.JPEGQuality < 1 || cfg.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be in [1,100]")
	}

	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must be >= 0")
	}
	if cfg.Retry.RetryDelay <= 0 {
		return fmt.Errorf("retry.retry_delay must be > 0")
	}
	if cfg.Retry.MaxRetryDelay < cfg.Retry.RetryDelay {
		cfg.Retry.MaxRetryDelay = cfg.Retry.RetryDelay
	}

	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseChannels resolves channel names. Duplicates are rejected.
func ParseChannels(names []string) ([]sensorbridge.Channel, error) {
	byName := make(map[string]sensorbridge.Channel, sensorbridge.ChannelCount)
	for _, ch := range sensorbridge.Channels() {
		byName[ch.String()] = ch
	}

	seen := make(map[sensorbridge.Channel]bool, len(names))
	out := make([]sensorbridge.Channel, 0, len(names))
	for _, name := range names {
		ch, ok := byName[strings.TrimSpace(strings.ToLower(name))]
		if !ok {
			return nil, fmt.Errorf("unknown channel %q", name)
		}
		if seen[ch] {
			return nil, fmt.Errorf("channel %q listed twice", name)
		}
		seen[ch] = true
		out = append(out, ch)
	}
	return out, nil
}

// ParseLevel maps a level name to a slog level. "" is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
