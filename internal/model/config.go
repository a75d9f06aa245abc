package model

import (
	"path/filepath"
	"time"

	"github.com/inovacc/cookbook/internal/application"
)

// Config holds the application configuration
type Config struct {
	// Endpoint is the base URL of the recipe API
	Endpoint string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`

	// Timeout bounds a single HTTP request to the recipe API
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`

	// LogFormat is text or json
	LogFormat string `mapstructure:"log_format" json:"log_format" yaml:"log_format"`

	// ServerAddr is the listen address used by "cookbook serve"
	ServerAddr string `mapstructure:"server_addr" json:"server_addr" yaml:"server_addr"`

	// DataDir holds the server database
	DataDir string `mapstructure:"data_dir" json:"data_dir" yaml:"data_dir"`

	// Storage selects the server database engine: bolt or sqlite
	Storage string `mapstructure:"storage" json:"storage" yaml:"storage"`

	// SlackWebhook, when set, also posts notifications to Slack
	SlackWebhook string `mapstructure:"slack_webhook" json:"slack_webhook,omitempty" yaml:"slack_webhook,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	dataDir, err := application.DataDirectory()
	if err != nil {
		dataDir = filepath.Join(".", application.AppName)
	}

	return Config{
		Endpoint:   "http://localhost:8080",
		Timeout:    30 * time.Second,
		LogLevel:   "warn",
		LogFormat:  "text",
		ServerAddr: ":8080",
		DataDir:    dataDir,
		Storage:    "bolt",
	}
}

// DatabasePath returns the location of the server's database file.
func (c Config) DatabasePath() string {
	ext := ".bolt"
	if c.Storage == "sqlite" {
		ext = ".db"
	}

	return filepath.Join(c.DataDir, application.AppName+ext)
}
