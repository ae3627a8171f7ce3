// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Network resolution
	ProviderTimeoutMs int    `mapstructure:"providertimeoutms"`
	ProvidersFile     string `mapstructure:"providersfile"`
	GeoDBPath         string `mapstructure:"geodbpath"`
	ResolveClientIP   bool   `mapstructure:"resolveclientip"`
	UserAgent         string `mapstructure:"useragent"`

	// Fingerprint settings
	ComputedConfidence bool `mapstructure:"computedconfidence"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		loaded, err := Load()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	})
	return cfg
}

// Load reads the configuration from defaults and DEVICESCAN_* environment
// variables without caching it.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("appname", "devicescan")
	v.SetDefault("appport", "3000")
	v.SetDefault("environment", Development)
	v.SetDefault("loglevel", string(LogLevelDebug))
	v.SetDefault("logsdir", "logs")
	v.SetDefault("logsmaxsizeinmb", 20)
	v.SetDefault("logsmaxbackups", 10)
	v.SetDefault("logsmaxageindays", 30)
	v.SetDefault("providertimeoutms", 3000)
	v.SetDefault("providersfile", "")
	v.SetDefault("geodbpath", "")
	v.SetDefault("resolveclientip", false)
	v.SetDefault("useragent", "devicescan/1.0")
	v.SetDefault("computedconfidence", false)

	v.BindEnv("appname", "DEVICESCAN_APP_NAME")
	v.BindEnv("appport", "DEVICESCAN_APP_PORT")
	v.BindEnv("environment", "DEVICESCAN_ENV")
	v.BindEnv("loglevel", "DEVICESCAN_LOG_LEVEL")
	v.BindEnv("logsdir", "DEVICESCAN_LOGS_DIR")
	v.BindEnv("logsmaxsizeinmb", "DEVICESCAN_LOGS_MAX_SIZE_IN_MB")
	v.BindEnv("logsmaxbackups", "DEVICESCAN_LOGS_MAX_BACKUPS")
	v.BindEnv("logsmaxageindays", "DEVICESCAN_LOGS_MAX_AGE_IN_DAYS")
	v.BindEnv("providertimeoutms", "DEVICESCAN_PROVIDER_TIMEOUT_MS")
	v.BindEnv("providersfile", "DEVICESCAN_PROVIDERS_FILE")
	v.BindEnv("geodbpath", "DEVICESCAN_GEO_DB_PATH")
	v.BindEnv("resolveclientip", "DEVICESCAN_RESOLVE_CLIENT_IP")
	v.BindEnv("useragent", "DEVICESCAN_USER_AGENT")
	v.BindEnv("computedconfidence", "DEVICESCAN_COMPUTED_CONFIDENCE")

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	c.LogLevel = LogLevel(strings.ToLower(string(c.LogLevel)))

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validLevels := map[LogLevel]bool{
		LogLevelDebug: true,
		LogLevelInfo:  true,
		LogLevelWarn:  true,
		LogLevelError: true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.ProviderTimeoutMs <= 0 {
		return fmt.Errorf("provider timeout must be positive, got %dms", c.ProviderTimeoutMs)
	}

	return nil
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetPort returns the HTTP server port.
func (c *Config) GetPort() string {
	return c.AppPort
}

// ProviderTimeout returns the per-provider request timeout.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutMs) * time.Millisecond
}

// GetLogLevel returns the log level as a string.
func (c *Config) GetLogLevel() string {
	return string(c.LogLevel)
}

// GetLogDirectory returns the logs directory.
func (c *Config) GetLogDirectory() string {
	return c.LogsDirectory
}

// GetLogMaxSizeMB returns the max log file size in MB.
func (c *Config) GetLogMaxSizeMB() int {
	return c.LogsMaxSizeInMb
}

// GetLogMaxBackups returns the max number of log backups.
func (c *Config) GetLogMaxBackups() int {
	return c.LogsMaxBackups
}

// GetLogMaxAgeDays returns the max age in days for log files.
func (c *Config) GetLogMaxAgeDays() int {
	return c.LogsMaxAgeInDays
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}

// GetAppName returns the application name.
func (c *Config) GetAppName() string {
	return c.AppName
}
