package config

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Logging.Level == "info" && c.Logging.Format == "json"
}

// NullHandlingMode describes which of the two on-disk null encodings a
// numeric column serializer should use.
type NullHandlingMode int

const (
	// NullHandlingLegacy encodes null as the column's zero value with no
	// explicit null bitmap.
	NullHandlingLegacy NullHandlingMode = iota
	// NullHandlingV2 serializes an explicit null bitmap alongside values.
	NullHandlingV2
)

// NullHandlingMode resolves the configured boolean into the mode enum
// column serializers switch on.
func (c *MergeConfig) NullHandlingMode() NullHandlingMode {
	if c.ReplaceWithDefault {
		return NullHandlingLegacy
	}
	return NullHandlingV2
}

// EffectiveMaxColumnsToMerge returns the configured cap, or
// math.MaxInt32-sized "unlimited" sentinel when MaxColumnsToMerge is 0.
func (c *MergeConfig) EffectiveMaxColumnsToMerge() int {
	if c.MaxColumnsToMerge <= 0 {
		return 1<<31 - 1
	}
	return c.MaxColumnsToMerge
}
