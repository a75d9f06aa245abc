package model

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Endpoint != "http://localhost:8080" {
		t.Errorf("Endpoint = %q, want %q", cfg.Endpoint, "http://localhost:8080")
	}

	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, 30*time.Second)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}

	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, "text")
	}

	if cfg.ServerAddr != ":8080" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, ":8080")
	}

	if cfg.Storage != "bolt" {
		t.Errorf("Storage = %q, want %q", cfg.Storage, "bolt")
	}

	if cfg.SlackWebhook != "" {
		t.Errorf("SlackWebhook = %q, want empty", cfg.SlackWebhook)
	}
}

func TestDefaultConfig_DataDir(t *testing.T) {
	cfg := DefaultConfig()

	if !strings.Contains(cfg.DataDir, "cookbook") {
		t.Errorf("DataDir = %q, should contain 'cookbook'", cfg.DataDir)
	}
}

func TestConfig_DatabasePath(t *testing.T) {
	cfg := Config{DataDir: "/var/lib/cookbook"}

	want := filepath.Join("/var/lib/cookbook", "cookbook.bolt")
	if got := cfg.DatabasePath(); got != want {
		t.Errorf("DatabasePath() = %q, want %q", got, want)
	}

	cfg.Storage = "sqlite"

	want = filepath.Join("/var/lib/cookbook", "cookbook.db")
	if got := cfg.DatabasePath(); got != want {
		t.Errorf("DatabasePath() sqlite = %q, want %q", got, want)
	}
}

func TestDefaultConfig_Consistency(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg2 := DefaultConfig()

	if cfg1 != cfg2 {
		t.Errorf("DefaultConfig() returns inconsistent values: %+v vs %+v", cfg1, cfg2)
	}
}

func TestConfig_JSONMarshaling(t *testing.T) {
	original := Config{
		Endpoint:     "https://recipes.example.com",
		Timeout:      5 * time.Second,
		LogLevel:     "debug",
		LogFormat:    "json",
		ServerAddr:   "127.0.0.1:9090",
		DataDir:      "/tmp/cookbook",
		Storage:      "sqlite",
		SlackWebhook: "https://hooks.slack.com/services/T000/B000/XXX",
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	var decoded Config
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	if decoded != original {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
}
