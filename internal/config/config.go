package config

import "fmt"

// Config is the top-level configuration for a merge run.
type Config struct {
	Merge   MergeConfig   `mapstructure:"merge"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// MergeConfig controls how segments are assembled and merged, mirroring
// the knobs an IndexSpec exposes to the segment assembler and the
// multi-phase driver.
type MergeConfig struct {
	// MaxColumnsToMerge caps how many input adapters a single merge phase
	// may combine. 0 means unlimited (a single phase handles every input).
	MaxColumnsToMerge int `mapstructure:"max_columns_to_merge"`

	// MaxPhysicalFileSize bounds the size in bytes of a single container
	// file before the writer rolls over to the next one.
	MaxPhysicalFileSize int64 `mapstructure:"max_physical_file_size"`

	// ReplaceWithDefault selects the legacy null-handling mode: true
	// encodes nulls as the column's zero value with no null bitmap; false
	// (V2 mode) serializes an explicit null bitmap alongside values.
	ReplaceWithDefault bool `mapstructure:"replace_with_default"`

	// StoreEmptyColumns controls whether a dimension with zero non-null
	// values across every input is still materialized in the output.
	StoreEmptyColumns bool `mapstructure:"store_empty_columns"`

	// IncludeAllDimensions forces every dimension name seen on any input
	// adapter into the output schema, even ones absent from an explicit
	// dimension list.
	IncludeAllDimensions bool `mapstructure:"include_all_dimensions"`

	// BitmapFactory names the bitmap serialization strategy recorded in
	// the segment's index.drd. Only "roaring" is implemented.
	BitmapFactory string `mapstructure:"bitmap_factory"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Merge.Validate(); err != nil {
		return fmt.Errorf("merge config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates merge configuration.
func (c *MergeConfig) Validate() error {
	if c.MaxColumnsToMerge < 0 {
		return fmt.Errorf("max_columns_to_merge must be >= 0 (0 means unlimited)")
	}

	if c.MaxPhysicalFileSize <= 0 {
		return fmt.Errorf("max_physical_file_size must be positive")
	}

	if c.BitmapFactory != "roaring" {
		return fmt.Errorf("bitmap_factory must be 'roaring'")
	}

	return nil
}

// Validate validates logging configuration.
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
