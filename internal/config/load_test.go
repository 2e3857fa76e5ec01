package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.URI != "ws://127.0.0.1:8100" {
		t.Errorf("Server.URI = %q, want ws://127.0.0.1:8100", cfg.Server.URI)
	}
	if cfg.Server.ID != "pro1003" {
		t.Errorf("Server.ID = %q, want pro1003", cfg.Server.ID)
	}
	if cfg.Server.NetID != 1 || cfg.Server.DevID != 1 {
		t.Errorf("NetID/DevID = %d/%d, want 1/1", cfg.Server.NetID, cfg.Server.DevID)
	}
	if cfg.Chart.ValueMin != 0 || cfg.Chart.ValueMax != 60 {
		t.Errorf("Chart range = [%v, %v], want [0, 60]", cfg.Chart.ValueMin, cfg.Chart.ValueMax)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("HMI_SERVER_URI", "wss://scada.local:9000")
	t.Setenv("HMI_SERVER_DEV_ID", "7")
	t.Setenv("HMI_LINK_WATCHDOG", "20s")
	t.Setenv("HMI_LANG", "en")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with env overrides failed: %v", err)
	}

	if cfg.Server.URI != "wss://scada.local:9000" {
		t.Errorf("Server.URI = %q", cfg.Server.URI)
	}
	if cfg.Server.DevID != 7 {
		t.Errorf("Server.DevID = %d, want 7", cfg.Server.DevID)
	}
	if cfg.Link.Watchdog != 20*time.Second {
		t.Errorf("Link.Watchdog = %v, want 20s", cfg.Link.Watchdog)
	}
	if cfg.Lang != "en" {
		t.Errorf("Lang = %q, want en", cfg.Lang)
	}
}

func TestLoadInvalidEnvOverride(t *testing.T) {
	t.Setenv("HMI_SERVER_NET_ID", "one")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail on non-numeric HMI_SERVER_NET_ID")
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hmi.yaml")
	data := `
server:
  uri: ws://10.0.0.5:8100
  id: chamber-2
chart:
  valueMax: 120
link:
  watchdog: 3s
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HMI_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.ID != "chamber-2" {
		t.Errorf("Server.ID = %q, want chamber-2", cfg.Server.ID)
	}
	if cfg.Chart.ValueMax != 120 {
		t.Errorf("Chart.ValueMax = %v, want 120", cfg.Chart.ValueMax)
	}
	if cfg.Chart.ValueMin != 0 {
		t.Errorf("Chart.ValueMin = %v, want default 0", cfg.Chart.ValueMin)
	}
	if cfg.Link.Watchdog != 3*time.Second {
		t.Errorf("Link.Watchdog = %v, want 3s", cfg.Link.Watchdog)
	}
	// Untouched sections keep their defaults
	if cfg.Server.NetID != 1 {
		t.Errorf("Server.NetID = %d, want default 1", cfg.Server.NetID)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	t.Setenv("HMI_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when HMI_CONFIG points at a missing file")
	}
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hmi.yaml")
	if err := os.WriteFile(path, []byte("chart:\n  valueMx: 10\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("LoadFile() should reject misspelled keys")
	}
	if !strings.Contains(err.Error(), "valueMx") {
		t.Errorf("error %q should name the unknown key", err)
	}
}

func TestLoadFileRefusesChartCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hmi.yaml")
	if err := os.WriteFile(path, []byte("chart:\n  capacity: 50\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("LoadFile() should refuse a chart capacity; the series bound is fixed")
	}
	if !strings.Contains(err.Error(), "capacity") {
		t.Errorf("error %q should name the capacity key", err)
	}
}
