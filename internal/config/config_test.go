package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load with defaults should succeed: %v", err)
	}

	if cfg.HMI.Addr != "10.10.10.10" || cfg.HMI.Port != 80 {
		t.Fatalf("unexpected hmi defaults: %+v", cfg.HMI)
	}
	if !cfg.HMI.Offline {
		t.Fatal("offline should default to true")
	}
	if cfg.App.DebugLevel != "high" {
		t.Fatalf("debug level should default to high, got %s", cfg.App.DebugLevel)
	}
	if cfg.Scheduler.Interval != time.Second {
		t.Fatalf("poll interval should default to 1s, got %v", cfg.Scheduler.Interval)
	}
	if cfg.Scheduler.Timeout != 0 {
		t.Fatalf("run timeout should default to 0 (forever), got %v", cfg.Scheduler.Timeout)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
hmi:
  addr: 192.168.1.50
  port: 8080
  offline: false
scheduler:
  interval: 5s
  timeout: 2m
app:
  debug_level: low
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load should succeed: %v", err)
	}
	if cfg.HMI.Addr != "192.168.1.50" || cfg.HMI.Port != 8080 || cfg.HMI.Offline {
		t.Fatalf("file values not applied: %+v", cfg.HMI)
	}
	if cfg.Scheduler.Interval != 5*time.Second || cfg.Scheduler.Timeout != 2*time.Minute {
		t.Fatalf("durations not parsed: %+v", cfg.Scheduler)
	}
	if cfg.App.DebugLevel != "low" {
		t.Fatalf("debug level not applied: %s", cfg.App.DebugLevel)
	}
}

func TestValidateRejectsBadDebugLevel(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.App.DebugLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown debug level should be rejected")
	}
}

func TestValidateLiveModeNeedsAddr(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.HMI.Offline = false
	cfg.HMI.Addr = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("live mode without addr should be rejected")
	}
}
