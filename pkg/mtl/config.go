package mtl

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config contains all configuration options for the template engine
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off; warning and none are aliases)
	LogLevel string `validate:"oneof=debug info warn warning error off none"`
	// NoneStr is rendered when a field has no value and the template gives no default
	NoneStr string
	// InplaceSep joins multi-valued fields when ExpandInplace is set and the template names no delimiter
	InplaceSep string
	// ExpandInplace joins every multi-valued field in place instead of branching
	ExpandInplace bool
	// SortInplace sorts values before an in-place join
	SortInplace bool
	// Strip trims leading and trailing whitespace from every rendered string
	Strip bool
	// MaxDepth bounds template nesting and variable expansion passes
	MaxDepth int `validate:"gt=0"`
	// CacheMaxSize is the maximum number of parsed templates to cache. 0 disables caching.
	CacheMaxSize int `validate:"gte=0"`
	// CacheTTL is the time-to-live for cached templates. 0 means no expiration.
	CacheTTL time.Duration `validate:"gte=0"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once

	validate = validator.New()
)

func init() {
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		NoneStr:      "_",
		InplaceSep:   ",",
		MaxDepth:     100,
		CacheMaxSize: 256,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// MTL_LOG_LEVEL
	if val := os.Getenv("MTL_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	// MTL_NONE_STR
	if val, ok := os.LookupEnv("MTL_NONE_STR"); ok {
		config.NoneStr = val
	}

	// MTL_INPLACE_SEP
	if val, ok := os.LookupEnv("MTL_INPLACE_SEP"); ok {
		config.InplaceSep = val
	}

	// MTL_EXPAND_INPLACE
	if val := os.Getenv("MTL_EXPAND_INPLACE"); val != "" {
		config.ExpandInplace = parseBool(val)
	}

	// MTL_SORT_INPLACE
	if val := os.Getenv("MTL_SORT_INPLACE"); val != "" {
		config.SortInplace = parseBool(val)
	}

	// MTL_STRIP
	if val := os.Getenv("MTL_STRIP"); val != "" {
		config.Strip = parseBool(val)
	}

	// MTL_MAX_DEPTH
	if val := os.Getenv("MTL_MAX_DEPTH"); val != "" {
		if depth, err := strconv.Atoi(val); err == nil {
			config.MaxDepth = depth
		}
	}

	// MTL_CACHE_MAX_SIZE
	if val := os.Getenv("MTL_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.CacheMaxSize = size
		}
	}

	// MTL_CACHE_TTL
	if val := os.Getenv("MTL_CACHE_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.CacheTTL = duration
		}
	}

	return config
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields.
// NoneStr and InplaceSep are kept as given since an empty string is a meaningful value for both.
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	config := *overrides

	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	if config.MaxDepth == 0 {
		config.MaxDepth = defaults.MaxDepth
	}

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var issues []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				issues = append(issues, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(issues, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Update logger outside the lock to avoid deadlock
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
