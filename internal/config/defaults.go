package config

// backendModels maps each backend kind to its default model.
var backendModels = map[BackendKind]string{
	BackendHTTP:   "",
	BackendOpenAI: "gpt-4o-mini",
}

// DefaultPackGlobs match the YAML dictionary packs shipped alongside a
// pack directory.
var DefaultPackGlobs = []string{"*.yml", "*.yaml"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: ".transmem/transmem.db",
		Listen:   "127.0.0.1:8321",
		Backend: BackendConfig{
			Kind:         BackendHTTP,
			Endpoint:     "http://localhost:9000/translate",
			RateLimitRPM: 120,
		},
		Pipeline: PipelineConfig{
			BatchSize:          5,
			DebounceMS:         100,
			DedupTTLSeconds:    30,
			CallTimeoutSeconds: 10,
			MaxRetries:         3,
			BackoffBaseMS:      1000,
			BackoffCapMS:       5000,
		},
		Memory: MemoryConfig{
			MinConfidence:     0.5,
			SimilarityFloor:   0.3,
			ConfidenceStep:    0.1,
			DefaultConfidence: 0.5,
			RetentionDays:     365,
			SweepMinUseCount:  3,
		},
		Context: ContextConfig{
			MaxAgeHours:   24,
			MinConfidence: 0.6,
		},
		Lexicon: LexiconConfig{
			PackGlobs: DefaultPackGlobs,
		},
	}
}

// DefaultModel returns the stock model for the given backend kind.
func DefaultModel(kind BackendKind) string {
	return backendModels[kind]
}
