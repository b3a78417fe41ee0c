package config

// BackendKind identifies the network translation backend.
type BackendKind string

const (
	BackendHTTP   BackendKind = "http"
	BackendOpenAI BackendKind = "openai"
)

// Config is the top-level transmem configuration, corresponding to
// .transmem.yml.
type Config struct {
	Database string         `yaml:"database" koanf:"database"`
	Listen   string         `yaml:"listen" koanf:"listen"`
	Backend  BackendConfig  `yaml:"backend" koanf:"backend"`
	Pipeline PipelineConfig `yaml:"pipeline" koanf:"pipeline"`
	Memory   MemoryConfig   `yaml:"memory" koanf:"memory"`
	Context  ContextConfig  `yaml:"context" koanf:"context"`
	Lexicon  LexiconConfig  `yaml:"lexicon" koanf:"lexicon"`
}

// BackendConfig selects and tunes the network backend.
type BackendConfig struct {
	Kind         BackendKind `yaml:"kind" koanf:"kind"`
	Endpoint     string      `yaml:"endpoint" koanf:"endpoint"`
	Model        string      `yaml:"model" koanf:"model"`
	RateLimitRPM int         `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
}

// PipelineConfig holds the request coalescing and retry tunables.
type PipelineConfig struct {
	BatchSize          int `yaml:"batch_size" koanf:"batch_size"`
	DebounceMS         int `yaml:"debounce_ms" koanf:"debounce_ms"`
	DedupTTLSeconds    int `yaml:"dedup_ttl_seconds" koanf:"dedup_ttl_seconds"`
	CallTimeoutSeconds int `yaml:"call_timeout_seconds" koanf:"call_timeout_seconds"`
	MaxRetries         int `yaml:"max_retries" koanf:"max_retries"`
	BackoffBaseMS      int `yaml:"backoff_base_ms" koanf:"backoff_base_ms"`
	BackoffCapMS       int `yaml:"backoff_cap_ms" koanf:"backoff_cap_ms"`
}

// MemoryConfig holds the translation memory scoring and retention
// tunables.
type MemoryConfig struct {
	MinConfidence     float64 `yaml:"min_confidence" koanf:"min_confidence"`
	SimilarityFloor   float64 `yaml:"similarity_floor" koanf:"similarity_floor"`
	ConfidenceStep    float64 `yaml:"confidence_step" koanf:"confidence_step"`
	DefaultConfidence float64 `yaml:"default_confidence" koanf:"default_confidence"`
	RetentionDays     int     `yaml:"retention_days" koanf:"retention_days"`
	SweepMinUseCount  int     `yaml:"sweep_min_use_count" koanf:"sweep_min_use_count"`
}

// ContextConfig holds the document context engine tunables.
type ContextConfig struct {
	MaxAgeHours int `yaml:"max_age_hours" koanf:"max_age_hours"`
	// MinConfidence is the floor below which contextual adjustments fall
	// through to the network tier.
	MinConfidence float64 `yaml:"min_confidence" koanf:"min_confidence"`
}

// LexiconConfig points at user-supplied offline dictionary packs.
type LexiconConfig struct {
	PackDir   string   `yaml:"pack_dir" koanf:"pack_dir"`
	PackGlobs []string `yaml:"pack_globs" koanf:"pack_globs"`
}
