package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Client struct {
		BaseURL string `yaml:"base_url" env:"API_BASE_URL"`
		Timeout string `yaml:"timeout" env:"API_TIMEOUT"`
	} `yaml:"client"`

	Session struct {
		Dir       string `yaml:"dir" env:"SESSION_DIR"`
		UserKey   string `yaml:"user_key" env:"SESSION_USER_KEY"`
		TokenKey  string `yaml:"token_key" env:"SESSION_TOKEN_KEY"`
		RedisAddr string `yaml:"redis_addr" env:"SESSION_REDIS_ADDR"`
	} `yaml:"session"`

	Sync struct {
		// RelayURL is the relay's base websocket URL; the channel rides in the
		// path, see RelayDialURL.
		RelayURL string `yaml:"relay_url" env:"SYNC_RELAY_URL"`
		Channel  string `yaml:"channel" env:"SYNC_CHANNEL"`
		Port     string `yaml:"port" env:"SYNC_RELAY_PORT"`
		Mode     string `yaml:"mode" env:"SYNC_RELAY_MODE"`
	} `yaml:"sync"`

	Lifecycle struct {
		RefreshInterval string `yaml:"refresh_interval" env:"LIFECYCLE_REFRESH_INTERVAL"`
	} `yaml:"lifecycle"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// Config file is optional; env vars alone are enough to run
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Client defaults
	config.Client.BaseURL = "http://localhost:5000/api"
	config.Client.Timeout = "15s"

	// Session defaults
	config.Session.Dir = defaultSessionDir()
	config.Session.UserKey = "campuslink_user"
	config.Session.TokenKey = "campuslink_token"

	// Sync defaults
	config.Sync.RelayURL = "ws://localhost:8090"
	config.Sync.Channel = "data-sync"
	config.Sync.Port = "8090"
	config.Sync.Mode = "development"

	// Lifecycle defaults
	config.Lifecycle.RefreshInterval = "60s"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".campuslink"
	}
	return home + string(os.PathSeparator) + ".campuslink"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Client.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}

	if config.Sync.Channel == "" {
		return fmt.Errorf("sync channel name is required")
	}

	if _, err := time.ParseDuration(config.Client.Timeout); err != nil {
		return fmt.Errorf("invalid client timeout format: %w", err)
	}

	if _, err := time.ParseDuration(config.Lifecycle.RefreshInterval); err != nil {
		return fmt.Errorf("invalid lifecycle refresh interval format: %w", err)
	}

	return nil
}

// ClientTimeout returns the configured API timeout as a duration
func (c *Config) ClientTimeout() time.Duration {
	d, err := time.ParseDuration(c.Client.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// RefreshInterval returns the configured lifecycle refresh interval as a duration
func (c *Config) RefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.Lifecycle.RefreshInterval)
	if err != nil {
		return time.Minute
	}
	return d
}

// RelayDialURL returns the full websocket URL for the configured sync channel,
// matching the relay's /ws/:channel route.
func (c *Config) RelayDialURL() string {
	return strings.TrimRight(c.Sync.RelayURL, "/") + "/ws/" + c.Sync.Channel
}
