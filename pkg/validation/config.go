package validation

import (
	"fmt"
	"time"

	"mercator-hq/nebula/pkg/value"
)

// Config contains configuration for an Evaluator.
type Config struct {
	// RegexTimeout bounds a single regex match. Matches that exceed it fail
	// with regex/execution_timeout instead of hanging on catastrophic
	// backtracking.
	// Default: 100ms.
	RegexTimeout time.Duration

	// RegexCacheSize is the number of compiled patterns kept per evaluator.
	// Least recently used patterns are evicted first.
	// Default: 256.
	RegexCacheSize int
}

// DefaultConfig returns the default evaluator configuration.
func DefaultConfig() *Config {
	return &Config{
		RegexTimeout:   value.DefaultRegexTimeout,
		RegexCacheSize: 256,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.RegexTimeout <= 0 {
		return fmt.Errorf("%w: regex timeout must be positive", ErrInvalidConfig)
	}
	if c.RegexCacheSize <= 0 {
		return fmt.Errorf("%w: regex cache size must be positive", ErrInvalidConfig)
	}
	return nil
}

// WithRegexTimeout sets the regex match timeout.
func (c *Config) WithRegexTimeout(timeout time.Duration) *Config {
	c.RegexTimeout = timeout
	return c
}

// WithRegexCacheSize sets the compiled pattern cache size.
func (c *Config) WithRegexCacheSize(size int) *Config {
	c.RegexCacheSize = size
	return c
}
