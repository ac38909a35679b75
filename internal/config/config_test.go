package config

import "testing"

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "default config should be valid",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name: "negative max columns to merge",
			config: &Config{
				Merge: MergeConfig{
					MaxColumnsToMerge:   -1,
					MaxPhysicalFileSize: 1024,
					BitmapFactory:       "roaring",
				},
				Logging: DefaultConfig().Logging,
			},
			wantErr: true,
		},
		{
			name: "zero max physical file size",
			config: &Config{
				Merge: MergeConfig{
					MaxPhysicalFileSize: 0,
					BitmapFactory:       "roaring",
				},
				Logging: DefaultConfig().Logging,
			},
			wantErr: true,
		},
		{
			name: "unknown bitmap factory",
			config: &Config{
				Merge: MergeConfig{
					MaxPhysicalFileSize: 1024,
					BitmapFactory:       "concise",
				},
				Logging: DefaultConfig().Logging,
			},
			wantErr: true,
		},
		{
			name: "invalid logging level",
			config: &Config{
				Merge: DefaultConfig().Merge,
				Logging: LoggingConfig{
					Level:  "invalid",
					Format: "json",
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Merge.BitmapFactory != "roaring" {
		t.Errorf("expected bitmap factory 'roaring', got %s", cfg.Merge.BitmapFactory)
	}

	if !cfg.Merge.ReplaceWithDefault {
		t.Error("expected legacy null-handling mode by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.IsProduction() {
		t.Error("default config should be production mode")
	}

	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "console"

	if !cfg.IsDevelopment() {
		t.Error("config with debug/console should be development mode")
	}

	if cfg.Merge.NullHandlingMode() != NullHandlingLegacy {
		t.Error("expected legacy null-handling mode when ReplaceWithDefault is true")
	}

	cfg.Merge.ReplaceWithDefault = false
	if cfg.Merge.NullHandlingMode() != NullHandlingV2 {
		t.Error("expected V2 null-handling mode when ReplaceWithDefault is false")
	}
}

func TestEffectiveMaxColumnsToMerge(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Merge.EffectiveMaxColumnsToMerge() <= 0 {
		t.Error("expected a positive unlimited sentinel when MaxColumnsToMerge is 0")
	}

	cfg.Merge.MaxColumnsToMerge = 5
	if cfg.Merge.EffectiveMaxColumnsToMerge() != 5 {
		t.Errorf("expected 5, got %d", cfg.Merge.EffectiveMaxColumnsToMerge())
	}
}
