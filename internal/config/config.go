package config

import "time"

// Config is the complete HMI client configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Link      LinkConfig      `yaml:"link"`
	Chart     ChartConfig     `yaml:"chart"`
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Lang      string          `yaml:"lang"`
}

// ServerConfig identifies the WebHMI server and the device this page is bound to.
type ServerConfig struct {
	URI   string `yaml:"uri"`
	ID    string `yaml:"id"`
	NetID int    `yaml:"netId"`
	DevID int    `yaml:"devId"`
}

// LinkConfig holds WebSocket link timing.
type LinkConfig struct {
	ReconnectInitial time.Duration `yaml:"reconnectInitial"`
	ReconnectMax     time.Duration `yaml:"reconnectMax"`
	Watchdog         time.Duration `yaml:"watchdog"`
	WriteTimeout     time.Duration `yaml:"writeTimeout"`
	AutoReconnect    bool          `yaml:"autoReconnect"`
}

// ChartConfig holds the trend chart settings. The per-series sample bound is
// fixed by chart.DefaultCapacity and is not configurable.
type ChartConfig struct {
	ValueMin   float64 `yaml:"valueMin"`
	ValueMax   float64 `yaml:"valueMax"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	DateLayout string  `yaml:"dateLayout"`
	Timezone   string  `yaml:"timezone"`
}

// HTTPConfig holds operator HTTP server settings.
type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// LogConfig holds process log and audit trail settings.
type LogConfig struct {
	Level      string `yaml:"level"`
	AuditDir   string `yaml:"auditDir"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
}

// AuthConfig enables bearer-token verification when Algorithm is set.
type AuthConfig struct {
	Algorithm    string `yaml:"algorithm"` // "", "HS256" or "RS256"
	Secret       string `yaml:"secret"`
	PublicKeyPEM string `yaml:"publicKeyPem"`
}

// TelemetryConfig holds SSE fan-out settings.
type TelemetryConfig struct {
	Heartbeat  time.Duration `yaml:"heartbeat"`
	BufferSize int           `yaml:"bufferSize"`
}

// Default returns the built-in pro1003 configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URI:   "ws://127.0.0.1:8100",
			ID:    "pro1003",
			NetID: 1,
			DevID: 1,
		},
		Link: LinkConfig{
			ReconnectInitial: 1 * time.Second,
			ReconnectMax:     30 * time.Second,
			Watchdog:         10 * time.Second,
			WriteTimeout:     5 * time.Second,
			AutoReconnect:    true,
		},
		Chart: ChartConfig{
			ValueMin:   0,
			ValueMax:   60,
			Width:      800,
			Height:     360,
			DateLayout: "02.01.2006",
			Timezone:   "Local",
		},
		HTTP: HTTPConfig{
			Addr:         ":8000",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			AuditDir:   "logs",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
		Telemetry: TelemetryConfig{
			Heartbeat:  15 * time.Second,
			BufferSize: 50,
		},
		Lang: "ru",
	}
}
