// Package config loads, validates, and persists the transmem
// configuration file (.transmem.yml), with environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when the caller does not name a file.
const DefaultPath = ".transmem.yml"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. TRANSMEM_DATABASE targets the
// top-level database key; nested keys use a double underscore, as in
// TRANSMEM_BACKEND__KIND.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("TRANSMEM_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "TRANSMEM_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validBackends is the set of recognized backend kinds.
var validBackends = map[BackendKind]bool{
	BackendHTTP:   true,
	BackendOpenAI: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}

	if c.Backend.Kind == "" {
		return fmt.Errorf("backend.kind is required")
	}
	if !validBackends[c.Backend.Kind] {
		return fmt.Errorf("invalid backend.kind %q: must be one of http, openai", c.Backend.Kind)
	}
	if c.Backend.Kind == BackendHTTP && c.Backend.Endpoint == "" {
		return fmt.Errorf("backend.endpoint is required for the http backend")
	}
	if c.Backend.RateLimitRPM < 0 {
		return fmt.Errorf("backend.rate_limit_rpm must be non-negative")
	}

	if c.Pipeline.BatchSize <= 0 {
		return fmt.Errorf("pipeline.batch_size must be positive")
	}
	if c.Pipeline.MaxRetries < 0 {
		return fmt.Errorf("pipeline.max_retries must be non-negative")
	}
	if c.Pipeline.CallTimeoutSeconds <= 0 {
		return fmt.Errorf("pipeline.call_timeout_seconds must be positive")
	}

	for name, v := range map[string]float64{
		"memory.min_confidence":     c.Memory.MinConfidence,
		"memory.similarity_floor":   c.Memory.SimilarityFloor,
		"memory.confidence_step":    c.Memory.ConfidenceStep,
		"memory.default_confidence": c.Memory.DefaultConfidence,
		"context.min_confidence":    c.Context.MinConfidence,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}

	if c.Memory.RetentionDays < 0 {
		return fmt.Errorf("memory.retention_days must be non-negative")
	}
	if c.Context.MaxAgeHours <= 0 {
		return fmt.Errorf("context.max_age_hours must be positive")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given backend kind.
func APIKeyEnvVar(kind BackendKind) string {
	switch kind {
	case BackendOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
