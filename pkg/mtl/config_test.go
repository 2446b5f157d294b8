package mtl

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", config.LogLevel)
	}
	if config.NoneStr != "_" {
		t.Errorf("NoneStr = %q, want _", config.NoneStr)
	}
	if config.InplaceSep != "," {
		t.Errorf("InplaceSep = %q, want ,", config.InplaceSep)
	}
	if config.MaxDepth != 100 {
		t.Errorf("MaxDepth = %d, want 100", config.MaxDepth)
	}
	if config.CacheMaxSize != 256 {
		t.Errorf("CacheMaxSize = %d, want 256", config.CacheMaxSize)
	}
	if config.ExpandInplace || config.SortInplace || config.Strip {
		t.Errorf("boolean options should default to false, got %+v", config)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, config *Config)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			check: func(t *testing.T, config *Config) {
				if config.NoneStr != "_" {
					t.Errorf("NoneStr = %q, want _", config.NoneStr)
				}
			},
		},
		{
			name: "log level",
			envVars: map[string]string{
				"MTL_LOG_LEVEL": "debug",
			},
			check: func(t *testing.T, config *Config) {
				if config.LogLevel != "debug" {
					t.Errorf("LogLevel = %s, want debug", config.LogLevel)
				}
			},
		},
		{
			name: "empty none string",
			envVars: map[string]string{
				"MTL_NONE_STR": "",
			},
			check: func(t *testing.T, config *Config) {
				if config.NoneStr != "" {
					t.Errorf("NoneStr = %q, want empty", config.NoneStr)
				}
			},
		},
		{
			name: "inplace options",
			envVars: map[string]string{
				"MTL_INPLACE_SEP":    "; ",
				"MTL_EXPAND_INPLACE": "yes",
				"MTL_SORT_INPLACE":   "1",
			},
			check: func(t *testing.T, config *Config) {
				if config.InplaceSep != "; " {
					t.Errorf("InplaceSep = %q, want \"; \"", config.InplaceSep)
				}
				if !config.ExpandInplace {
					t.Errorf("ExpandInplace = false, want true")
				}
				if !config.SortInplace {
					t.Errorf("SortInplace = false, want true")
				}
			},
		},
		{
			name: "case insensitive boolean",
			envVars: map[string]string{
				"MTL_STRIP": "TRUE",
			},
			check: func(t *testing.T, config *Config) {
				if !config.Strip {
					t.Errorf("Strip = false, want true")
				}
			},
		},
		{
			name: "cache settings",
			envVars: map[string]string{
				"MTL_CACHE_MAX_SIZE": "10",
				"MTL_CACHE_TTL":      "5m",
			},
			check: func(t *testing.T, config *Config) {
				if config.CacheMaxSize != 10 {
					t.Errorf("CacheMaxSize = %d, want 10", config.CacheMaxSize)
				}
				if config.CacheTTL != 5*time.Minute {
					t.Errorf("CacheTTL = %v, want 5m", config.CacheTTL)
				}
			},
		},
		{
			name: "invalid max depth",
			envVars: map[string]string{
				"MTL_MAX_DEPTH": "deep",
			},
			check: func(t *testing.T, config *Config) {
				if config.MaxDepth != 100 {
					t.Errorf("MaxDepth = %d, want 100 (default)", config.MaxDepth)
				}
			},
		},
		{
			name: "invalid cache TTL",
			envVars: map[string]string{
				"MTL_CACHE_TTL": "soon",
			},
			check: func(t *testing.T, config *Config) {
				if config.CacheTTL != 0 {
					t.Errorf("CacheTTL = %v, want 0 (default)", config.CacheTTL)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}
			tt.check(t, ConfigFromEnvironment())
		})
	}
}

func TestNewConfigWithDefaults(t *testing.T) {
	config := NewConfigWithDefaults(&Config{NoneStr: "", CacheMaxSize: 3, Strip: true})

	if config.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info (default)", config.LogLevel)
	}
	if config.MaxDepth != 100 {
		t.Errorf("MaxDepth = %d, want 100 (default)", config.MaxDepth)
	}
	if config.NoneStr != "" {
		t.Errorf("NoneStr = %q, want empty", config.NoneStr)
	}
	if config.CacheMaxSize != 3 || !config.Strip {
		t.Errorf("overrides lost: %+v", config)
	}

	if got := NewConfigWithDefaults(nil); got.NoneStr != "_" {
		t.Errorf("NewConfigWithDefaults(nil).NoneStr = %q, want _", got.NoneStr)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		valid  bool
		field  string
	}{
		{
			name:   "valid config",
			config: DefaultConfig(),
			valid:  true,
		},
		{
			name:   "warning alias",
			config: &Config{LogLevel: "warning", MaxDepth: 100},
			valid:  true,
		},
		{
			name:   "none alias",
			config: &Config{LogLevel: "none", MaxDepth: 100},
			valid:  true,
		},
		{
			name:   "invalid log level",
			config: &Config{LogLevel: "loud", MaxDepth: 100},
			field:  "LogLevel",
		},
		{
			name:   "zero max depth",
			config: &Config{LogLevel: "info", MaxDepth: 0},
			field:  "MaxDepth",
		},
		{
			name:   "negative cache size",
			config: &Config{LogLevel: "info", MaxDepth: 100, CacheMaxSize: -1},
			field:  "CacheMaxSize",
		},
		{
			name:   "negative cache TTL",
			config: &Config{LogLevel: "info", MaxDepth: 100, CacheTTL: -time.Second},
			field:  "CacheTTL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.valid {
				if err != nil {
					t.Errorf("Validate() returned error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() returned nil, want error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Validate() error = %q, want mention of %s", err, tt.field)
			}
		})
	}
}

func TestGlobalConfig(t *testing.T) {
	original := GetGlobalConfig()
	defer SetGlobalConfig(original)

	SetGlobalConfig(&Config{LogLevel: "error", NoneStr: "-", MaxDepth: 10})

	got := GetGlobalConfig()
	if got.NoneStr != "-" || got.MaxDepth != 10 {
		t.Errorf("GetGlobalConfig() = %+v", got)
	}
	if GetLogger().Level() != LogError {
		t.Errorf("logger level = %v, want ERROR", GetLogger().Level())
	}

	got.NoneStr = "changed"
	if GetGlobalConfig().NoneStr != "-" {
		t.Error("GetGlobalConfig() should return a copy")
	}
}
