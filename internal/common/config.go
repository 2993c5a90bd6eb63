package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Logging     LoggingConfig `toml:"logging"`
	Webhook     WebhookConfig `toml:"webhook"`
	Sources     SourcesConfig `toml:"sources"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Output []string `toml:"output" validate:"dive,oneof=stdout console file"`
}

// WebhookConfig controls the outbound webhook contract
type WebhookConfig struct {
	Endpoint     string `toml:"endpoint" validate:"omitempty,url"`                        // Default POST endpoint
	PayloadField string `toml:"payload_field" validate:"omitempty,oneof=chatInput query"` // Request body field name
	Timeout      string `toml:"timeout"`                                                  // e.g., "30s" - bound on outbound calls
}

// TimeoutDuration parses the configured timeout, falling back to 30s
func (w WebhookConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(w.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// SourcesConfig controls registry preloading
type SourcesConfig struct {
	Preload string `toml:"preload"` // Optional JSON file of initial document sources
}

// NewDefaultConfig returns a config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Webhook: WebhookConfig{
			Endpoint:     "https://api.example.com/process",
			PayloadField: "chatInput",
			Timeout:      "30s",
		},
	}
}

// LoadFromFile loads configuration from a TOML file, merged over defaults.
// An empty path returns defaults with environment overrides applied.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Environment variables override file values
	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("REFERO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("REFERO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if host := os.Getenv("REFERO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if level := os.Getenv("REFERO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if endpoint := os.Getenv("REFERO_WEBHOOK_ENDPOINT"); endpoint != "" {
		config.Webhook.Endpoint = endpoint
	}

	if field := os.Getenv("REFERO_WEBHOOK_PAYLOAD_FIELD"); field != "" {
		config.Webhook.PayloadField = field
	}

	if timeout := os.Getenv("REFERO_WEBHOOK_TIMEOUT"); timeout != "" {
		config.Webhook.Timeout = timeout
	}

	if preload := os.Getenv("REFERO_SOURCES_FILE"); preload != "" {
		config.Sources.Preload = preload
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
