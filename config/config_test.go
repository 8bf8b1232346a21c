package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/gopdfctl/gopdf"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validConfig() *Config {
	return &Config{
		API: APIConfig{
			Key:     "valid-api-key",
			BaseURL: gopdf.DefaultBaseURL,
			Timeout: "30s",
		},
		Output: OutputConfig{Sink: "file", Dir: "."},
		Batch:  BatchConfig{Concurrency: 2},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api:
  key: secret
  timeout: 45s
output:
  sink: gcs
  gcs:
    bucket: reports
    prefix: monthly/
presets:
  Invoice:
    landscape: true
    format: A4
batch:
  concurrency: 8
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.API.Key)
	assert.Equal(t, gopdf.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, "gopdfctl", cfg.API.UserAgent)
	assert.Equal(t, "gcs", cfg.Output.Sink)
	assert.Equal(t, "reports", cfg.Output.GCS.Bucket)
	assert.Equal(t, "monthly/", cfg.Output.GCS.Prefix)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Color)

	timeout, err := cfg.API.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, timeout)

	preset, err := cfg.Preset("invoice")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"landscape": true, "format": "A4"}, preset)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "api:\n  key: from-file\n")
	t.Setenv("GOPDF_API_KEY", "from-env")
	t.Setenv("GOPDF_BATCH_CONCURRENCY", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.API.Key)
	assert.Equal(t, 3, cfg.Batch.Concurrency)
}

func TestLoadErrors(t *testing.T) {
	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("missing api key", func(t *testing.T) {
		_, err := Load(writeConfig(t, "logging:\n  level: info\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api.key")
	})
}

func TestRead(t *testing.T) {
	cfg, err := Read(writeConfig(t, "logging:\n  level: warn\n  format: json\nupdate:\n  repository: acme/gopdfctl\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.API.Key)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "acme/gopdfctl", cfg.Update.Repository)
	assert.NoError(t, ValidateLogging(cfg.Logging))

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestValidateLogging(t *testing.T) {
	assert.NoError(t, ValidateLogging(LoggingConfig{Level: "debug", Format: "console"}))
	assert.ErrorContains(t, ValidateLogging(LoggingConfig{Level: "loud", Format: "console"}), "invalid logging level: loud")
	assert.ErrorContains(t, ValidateLogging(LoggingConfig{Level: "info", Format: "xml"}), "invalid logging format: xml")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "placeholder api key",
			mutate:  func(c *Config) { c.API.Key = "your-api-key-here" },
			wantErr: "api.key must be set to a valid API key",
		},
		{
			name:    "empty base url",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: "api.base_url is required",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.API.Timeout = "soon" },
			wantErr: "invalid api.timeout: soon",
		},
		{
			name:   "empty timeout",
			mutate: func(c *Config) { c.API.Timeout = "" },
		},
		{
			name:    "unknown sink",
			mutate:  func(c *Config) { c.Output.Sink = "s3" },
			wantErr: "invalid output.sink: s3 (must be 'file', 'azure' or 'gcs')",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Batch.Concurrency = 0 },
			wantErr: "batch.concurrency must be at least 1, got 0",
		},
		{
			name:    "bad level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: "invalid logging level: trace",
		},
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid logging format: xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestPresetUnknown(t *testing.T) {
	cfg := validConfig()
	_, err := cfg.Preset("missing")
	assert.EqualError(t, err, "unknown preset: missing")
}
