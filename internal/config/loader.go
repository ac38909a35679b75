package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load loads configuration from file, falling back to defaults when no
// config file is found.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/segmentmerge")
	}

	setDefaults(v)

	v.SetEnvPrefix("SEGMENTMERGE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("merge.max_columns_to_merge", 0)
	v.SetDefault("merge.max_physical_file_size", 2*1024*1024*1024)
	v.SetDefault("merge.replace_with_default", true)
	v.SetDefault("merge.store_empty_columns", false)
	v.SetDefault("merge.include_all_dimensions", false)
	v.SetDefault("merge.bitmap_factory", "roaring")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// parseConfig parses viper config into a Config struct.
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file, or returns the default
// configuration if loading fails.
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Merge: MergeConfig{
			MaxColumnsToMerge:    0,
			MaxPhysicalFileSize:  2 * 1024 * 1024 * 1024,
			ReplaceWithDefault:   true,
			StoreEmptyColumns:    false,
			IncludeAllDimensions: false,
			BitmapFactory:        "roaring",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
