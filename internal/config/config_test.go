package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Backend.Kind != BackendHTTP {
		t.Errorf("expected default backend %q, got %q", BackendHTTP, cfg.Backend.Kind)
	}
	if cfg.Pipeline.BatchSize != 5 {
		t.Errorf("expected default batch_size 5, got %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Pipeline.DebounceMS != 100 {
		t.Errorf("expected default debounce_ms 100, got %d", cfg.Pipeline.DebounceMS)
	}
	if cfg.Memory.RetentionDays != 365 {
		t.Errorf("expected default retention_days 365, got %d", cfg.Memory.RetentionDays)
	}
	if cfg.Context.MaxAgeHours != 24 {
		t.Errorf("expected default max_age_hours 24, got %d", cfg.Context.MaxAgeHours)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.transmem.yml")

	original := DefaultConfig()
	original.Backend.Kind = BackendOpenAI
	original.Backend.Model = "gpt-4o"
	original.Database = filepath.Join(dir, "tm.db")
	original.Pipeline.BatchSize = 8
	original.Memory.MinConfidence = 0.7
	original.Lexicon.PackGlobs = []string{"*.yml", "packs/*.yaml"}

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Backend.Kind != original.Backend.Kind {
		t.Errorf("backend.kind: got %q, want %q", loaded.Backend.Kind, original.Backend.Kind)
	}
	if loaded.Backend.Model != original.Backend.Model {
		t.Errorf("backend.model: got %q, want %q", loaded.Backend.Model, original.Backend.Model)
	}
	if loaded.Database != original.Database {
		t.Errorf("database: got %q, want %q", loaded.Database, original.Database)
	}
	if loaded.Pipeline.BatchSize != original.Pipeline.BatchSize {
		t.Errorf("batch_size: got %d, want %d", loaded.Pipeline.BatchSize, original.Pipeline.BatchSize)
	}
	if loaded.Memory.MinConfidence != original.Memory.MinConfidence {
		t.Errorf("min_confidence: got %f, want %f", loaded.Memory.MinConfidence, original.Memory.MinConfidence)
	}
	if len(loaded.Lexicon.PackGlobs) != len(original.Lexicon.PackGlobs) {
		t.Errorf("pack_globs length: got %d, want %d", len(loaded.Lexicon.PackGlobs), len(original.Lexicon.PackGlobs))
	}
	for i, v := range loaded.Lexicon.PackGlobs {
		if v != original.Lexicon.PackGlobs[i] {
			t.Errorf("pack_globs[%d]: got %q, want %q", i, v, original.Lexicon.PackGlobs[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Backend.Kind != BackendHTTP {
		t.Errorf("expected default backend, got %q", cfg.Backend.Kind)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	os.Setenv("TRANSMEM_DATABASE", "/tmp/override.db")
	os.Setenv("TRANSMEM_BACKEND__KIND", "openai")
	defer os.Unsetenv("TRANSMEM_DATABASE")
	defer os.Unsetenv("TRANSMEM_BACKEND__KIND")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Database != "/tmp/override.db" {
		t.Errorf("env override failed: database = %q", loaded.Database)
	}
	if loaded.Backend.Kind != BackendOpenAI {
		t.Errorf("nested env override failed: backend.kind = %q", loaded.Backend.Kind)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalidBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend.Kind = "grpc"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid backend kind")
	}
}

func TestValidateMissingEndpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend.Endpoint = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for http backend without endpoint")
	}
}

func TestValidateEmptyDatabase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty database")
	}
}

func TestValidateBatchSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.BatchSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero batch size")
	}
}

func TestValidateConfidenceRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Memory.MinConfidence = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for out-of-range confidence")
	}
}

func TestValidateNegativeRetries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.MaxRetries = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative max_retries")
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if got := APIKeyEnvVar(BackendOpenAI); got != "OPENAI_API_KEY" {
		t.Errorf("APIKeyEnvVar(openai) = %q", got)
	}
	if got := APIKeyEnvVar(BackendHTTP); got != "" {
		t.Errorf("APIKeyEnvVar(http) = %q, want empty", got)
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"*.yml", []string{"*.yml"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
