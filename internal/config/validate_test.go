package config

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"wss scheme", func(c *Config) { c.Server.URI = "wss://host:443/hmi" }, false},
		{"http scheme", func(c *Config) { c.Server.URI = "http://host" }, true},
		{"empty server id", func(c *Config) { c.Server.ID = "" }, true},
		{"zero width", func(c *Config) { c.Chart.Width = 0 }, true},
		{"inverted range", func(c *Config) { c.Chart.ValueMin = 60; c.Chart.ValueMax = 0 }, true},
		{"bad timezone", func(c *Config) { c.Chart.Timezone = "Mars/Olympus" }, true},
		{"reconnect max below initial", func(c *Config) { c.Link.ReconnectMax = c.Link.ReconnectInitial / 2 }, true},
		{"watchdog disabled", func(c *Config) { c.Link.Watchdog = 0 }, false},
		{"hs256 without secret", func(c *Config) { c.Auth.Algorithm = "HS256" }, true},
		{"hs256 with secret", func(c *Config) { c.Auth.Algorithm = "HS256"; c.Auth.Secret = "s" }, false},
		{"unknown algorithm", func(c *Config) { c.Auth.Algorithm = "none" }, true},
		{"zero heartbeat", func(c *Config) { c.Telemetry.Heartbeat = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Error("Validate(nil) should fail")
	}
}
