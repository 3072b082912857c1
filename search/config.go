// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the tuning constants of the engine.
type Config struct {
	// Weights are the additive scoring rules.
	Weights Weights `yaml:"weights"`

	// PartialThreshold is the candidate count below which substring
	// expansion of the query tokens runs.
	// Default: 10
	PartialThreshold int `yaml:"partial_threshold"`

	// MinTokenLength is the shortest word, in runes, that is indexed and
	// used for token lookups.
	// Default: 3
	MinTokenLength int `yaml:"min_token_length"`

	// MinSharedTags is the number of shared tags that makes two tips related.
	// Default: 2
	MinSharedTags int `yaml:"min_shared_tags"`

	// RelatedLimit caps RelatedTo when the caller passes no limit.
	// Default: 4
	RelatedLimit int `yaml:"related_limit"`

	// SuggestLimit caps Suggest when the caller passes no limit.
	// Default: 5
	SuggestLimit int `yaml:"suggest_limit"`

	// PoolSize is the number of workers used by SearchBatch.
	// Default: half the CPUs, at least 1
	PoolSize int `yaml:"pool_size"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithWeights replaces the scoring weights.
func WithWeights(w Weights) ConfigOption {
	return func(c *Config) {
		c.Weights = w
	}
}

// WithPartialThreshold sets the substring expansion threshold.
func WithPartialThreshold(n int) ConfigOption {
	return func(c *Config) {
		c.PartialThreshold = n
	}
}

// WithMinSharedTags sets how many tags two tips must share to be related.
func WithMinSharedTags(n int) ConfigOption {
	return func(c *Config) {
		c.MinSharedTags = n
	}
}

// DefaultConfig returns a Config with the stock tuning.
func DefaultConfig() *Config {
	return &Config{
		Weights:          DefaultWeights(),
		PartialThreshold: 10,
		MinTokenLength:   3,
		MinSharedTags:    2,
		RelatedLimit:     4,
		SuggestLimit:     5,
		PoolSize:         defaultPoolSize(),
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func defaultPoolSize() int {
	return max(runtime.NumCPU()/2, 1)
}

// ApplyDefaults fills non-positive thresholds and limits with default
// values. Weights are kept as given, since a zero weight switches its rule
// off; start from DefaultConfig or NewConfig to keep the default weights.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.PartialThreshold <= 0 {
		c.PartialThreshold = d.PartialThreshold
	}
	if c.MinTokenLength <= 0 {
		c.MinTokenLength = d.MinTokenLength
	}
	if c.MinSharedTags <= 0 {
		c.MinSharedTags = d.MinSharedTags
	}
	if c.RelatedLimit <= 0 {
		c.RelatedLimit = d.RelatedLimit
	}
	if c.SuggestLimit <= 0 {
		c.SuggestLimit = d.SuggestLimit
	}
	if c.PoolSize <= 0 {
		c.PoolSize = d.PoolSize
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	w := c.Weights
	for _, f := range []struct {
		name  string
		value int
	}{
		{"full_text_match", w.FullTextMatch},
		{"full_category_match", w.FullCategoryMatch},
		{"token_text_match", w.TokenTextMatch},
		{"token_category_match", w.TokenCategoryMatch},
		{"token_tag_match", w.TokenTagMatch},
		{"exact_tag_match", w.ExactTagMatch},
	} {
		if f.value < 0 {
			return fmt.Errorf("%w: weights.%s must not be negative, got %d", ErrInvalidConfig, f.name, f.value)
		}
	}
	if c.MinTokenLength < 1 {
		return fmt.Errorf("%w: min_token_length must be positive", ErrInvalidConfig)
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("%w: pool_size must be positive", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads a YAML tuning file. ${VAR} and ${VAR:-default}
// references are expanded from the environment before parsing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML tuning data over the default configuration.
// Keys missing from data keep their defaults; a weight set to 0 switches
// its rule off.
func ParseConfig(data []byte) (*Config, error) {
	data = expandEnvVars(data)

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Join(ErrInvalidConfig, fmt.Errorf("failed to parse config: %w", err))
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
