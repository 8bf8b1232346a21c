package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/s0up4200/gopdfctl/gopdf"
)

// EnvPrefix is prepended to every environment override, e.g. GOPDF_API_KEY
const EnvPrefix = "GOPDF"

// Load reads the configuration and validates it for talking to the API.
func Load(configPath string) (*Config, error) {
	cfg, err := Read(configPath)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Read loads the configuration from file and environment without validating it.
// A missing config file is not an error when no explicit path was given.
func Read(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".gopdf"))
		}

		v.AddConfigPath("/etc/gopdf/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.key", "")
	v.SetDefault("api.base_url", gopdf.DefaultBaseURL)
	v.SetDefault("api.timeout", "2m")
	v.SetDefault("api.user_agent", "gopdfctl")

	// Output defaults
	v.SetDefault("output.sink", "file")
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.azure.connection_string", "")
	v.SetDefault("output.azure.container", "")
	v.SetDefault("output.gcs.bucket", "")
	v.SetDefault("output.gcs.prefix", "")

	v.SetDefault("batch.concurrency", gopdf.DefaultConcurrency)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("update.repository", "s0up4200/gopdfctl")
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.API.Key == "" || cfg.API.Key == "your-api-key-here" {
		return fmt.Errorf("api.key must be set to a valid API key")
	}

	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}

	if _, err := cfg.API.TimeoutDuration(); err != nil {
		return fmt.Errorf("invalid api.timeout: %s", cfg.API.Timeout)
	}

	validSinks := map[string]bool{
		"file":  true,
		"azure": true,
		"gcs":   true,
	}
	if !validSinks[cfg.Output.Sink] {
		return fmt.Errorf("invalid output.sink: %s (must be 'file', 'azure' or 'gcs')", cfg.Output.Sink)
	}

	if cfg.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be at least 1, got %d", cfg.Batch.Concurrency)
	}

	return ValidateLogging(cfg.Logging)
}

// ValidateLogging checks the logging section on its own, for commands that
// never need an API key.
func ValidateLogging(cfg LoggingConfig) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Format)
	}

	return nil
}

// TimeoutDuration parses Timeout. An empty value means no client timeout.
func (a APIConfig) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(a.Timeout)
}

// Preset returns a copy of the named preset's options
func (c *Config) Preset(name string) (map[string]any, error) {
	preset, ok := c.Presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	options := make(map[string]any, len(preset))
	for k, v := range preset {
		options[k] = v
	}
	return options, nil
}
