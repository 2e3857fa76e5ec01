package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks the merged configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}
	if err := validateLink(&cfg.Link); err != nil {
		return fmt.Errorf("link validation failed: %w", err)
	}
	if err := validateChart(&cfg.Chart); err != nil {
		return fmt.Errorf("chart validation failed: %w", err)
	}
	if err := validateAuth(&cfg.Auth); err != nil {
		return fmt.Errorf("auth validation failed: %w", err)
	}

	if cfg.Telemetry.Heartbeat <= 0 {
		return fmt.Errorf("telemetry heartbeat must be positive, got %v", cfg.Telemetry.Heartbeat)
	}
	if cfg.Telemetry.BufferSize <= 0 {
		return fmt.Errorf("telemetry buffer size must be positive, got %d", cfg.Telemetry.BufferSize)
	}
	if cfg.HTTP.Addr == "" {
		return fmt.Errorf("http addr cannot be empty")
	}

	return nil
}

func validateServer(s *ServerConfig) error {
	u, err := url.Parse(s.URI)
	if err != nil {
		return fmt.Errorf("invalid uri %q: %w", s.URI, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("uri scheme must be ws or wss, got %q", u.Scheme)
	}
	if s.ID == "" {
		return fmt.Errorf("server id cannot be empty")
	}
	return nil
}

func validateLink(l *LinkConfig) error {
	if l.ReconnectInitial <= 0 {
		return fmt.Errorf("reconnect initial must be positive, got %v", l.ReconnectInitial)
	}
	if l.ReconnectMax < l.ReconnectInitial {
		return fmt.Errorf("reconnect max %v must be >= initial %v", l.ReconnectMax, l.ReconnectInitial)
	}
	if l.Watchdog < 0 {
		return fmt.Errorf("watchdog must be non-negative, got %v", l.Watchdog)
	}
	if l.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %v", l.WriteTimeout)
	}
	return nil
}

func validateChart(c *ChartConfig) error {
	if c.ValueMin >= c.ValueMax {
		return fmt.Errorf("value range [%v, %v] is empty", c.ValueMin, c.ValueMax)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("chart size %dx%d must be positive", c.Width, c.Height)
	}
	if c.DateLayout == "" {
		return fmt.Errorf("date layout cannot be empty")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

func validateAuth(a *AuthConfig) error {
	switch a.Algorithm {
	case "":
		return nil
	case "HS256":
		if a.Secret == "" {
			return fmt.Errorf("HS256 requires secret")
		}
	case "RS256":
		if a.PublicKeyPEM == "" {
			return fmt.Errorf("RS256 requires publicKeyPem")
		}
	default:
		return fmt.Errorf("unsupported algorithm: %s", a.Algorithm)
	}
	return nil
}

// Location resolves the chart timezone. Validate guarantees it loads.
func (c ChartConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
