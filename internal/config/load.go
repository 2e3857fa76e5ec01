package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// DefaultPath is read when HMI_CONFIG is not set. A missing file is not an error.
const DefaultPath = "config/hmi.yaml"

// Load merges Default() + the YAML file + HMI_* environment overrides, then validates.
func Load() (*Config, error) {
	cfg := Default()

	path := DefaultPath
	explicit := false
	if p := os.Getenv("HMI_CONFIG"); p != "" {
		path = p
		explicit = true
	}

	if err := loadFromFile(cfg, path); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFile is Load with an explicit file path and no environment overrides.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile unmarshals a YAML file over cfg. Keys absent from the file keep their values.
func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// applyEnvOverrides applies HMI_* environment variables to the config.
func applyEnvOverrides(cfg *Config) error {
	// Server
	if val := os.Getenv("HMI_SERVER_URI"); val != "" {
		cfg.Server.URI = val
	}
	if val := os.Getenv("HMI_SERVER_ID"); val != "" {
		cfg.Server.ID = val
	}
	if err := envInt("HMI_SERVER_NET_ID", &cfg.Server.NetID); err != nil {
		return err
	}
	if err := envInt("HMI_SERVER_DEV_ID", &cfg.Server.DevID); err != nil {
		return err
	}

	// Link
	if err := envDuration("HMI_LINK_WATCHDOG", &cfg.Link.Watchdog); err != nil {
		return err
	}
	if err := envDuration("HMI_LINK_RECONNECT_INITIAL", &cfg.Link.ReconnectInitial); err != nil {
		return err
	}
	if err := envDuration("HMI_LINK_RECONNECT_MAX", &cfg.Link.ReconnectMax); err != nil {
		return err
	}

	// HTTP
	if val := os.Getenv("HMI_ADDR"); val != "" {
		cfg.HTTP.Addr = val
	}

	if val := os.Getenv("HMI_LANG"); val != "" {
		cfg.Lang = val
	}
	if val := os.Getenv("HMI_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}

	// Auth
	if val := os.Getenv("HMI_AUTH_ALGORITHM"); val != "" {
		cfg.Auth.Algorithm = val
	}
	if val := os.Getenv("HMI_AUTH_SECRET"); val != "" {
		cfg.Auth.Secret = val
	}

	return nil
}

func envInt(name string, dst *int) error {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}
