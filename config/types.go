package config

// Config represents the complete configuration structure
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Output  OutputConfig  `mapstructure:"output"`
	Presets PresetConfig  `mapstructure:"presets"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Logging LoggingConfig `mapstructure:"logging"`
	Update  UpdateConfig  `mapstructure:"update"`
}

// APIConfig holds GoPdf API connection details
type APIConfig struct {
	Key       string `mapstructure:"key"`
	BaseURL   string `mapstructure:"base_url"`
	Timeout   string `mapstructure:"timeout"`
	UserAgent string `mapstructure:"user_agent"`
}

// OutputConfig selects where converted documents are written
type OutputConfig struct {
	Sink  string      `mapstructure:"sink"`
	Dir   string      `mapstructure:"dir"`
	Azure AzureConfig `mapstructure:"azure"`
	GCS   GCSConfig   `mapstructure:"gcs"`
}

// AzureConfig holds Azure Blob Storage settings
type AzureConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	Container        string `mapstructure:"container"`
}

// GCSConfig holds Google Cloud Storage settings
type GCSConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
}

// PresetConfig maps a preset name to a set of conversion options
type PresetConfig map[string]map[string]any

// BatchConfig contains batch conversion settings
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// UpdateConfig names the release repository used by the update command
type UpdateConfig struct {
	Repository string `mapstructure:"repository"`
}
