package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/omaradly/transmem/internal/backend"
	"github.com/omaradly/transmem/internal/config"
	"github.com/omaradly/transmem/internal/db"
	"github.com/omaradly/transmem/internal/docctx"
	"github.com/omaradly/transmem/internal/lexicon"
	"github.com/omaradly/transmem/internal/memory"
	"github.com/omaradly/transmem/internal/offline"
	"github.com/omaradly/transmem/internal/request"
	"github.com/omaradly/transmem/internal/resolver"
)

// app is the assembled pipeline shared by the CLI commands.
type app struct {
	cfg      *config.Config
	db       *db.DB
	lexicon  *lexicon.Store
	memory   *memory.Store
	docs     *docctx.Engine
	offline  *offline.Resolver
	manager  *request.Manager
	resolver *resolver.Resolver
}

// buildApp loads config and wires the full pipeline.
func buildApp(cfgFile string) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	lex := lexicon.NewStore()
	if cfg.Lexicon.PackDir != "" {
		n, err := lex.LoadPacks(cfg.Lexicon.PackDir, cfg.Lexicon.PackGlobs)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("loading dictionary packs: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Loaded %d dictionary pack(s) from %s\n", n, cfg.Lexicon.PackDir)
		}
	}

	endpoint, err := buildEndpoint(cfg)
	if err != nil {
		database.Close()
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		db:      database,
		lexicon: lex,
		memory:  memory.NewStore(database, memoryOptions(cfg)),
		docs:    docctx.NewEngine(database, time.Duration(cfg.Context.MaxAgeHours)*time.Hour),
		offline: offline.NewResolver(lex),
		manager: request.NewManager(endpoint, requestConfig(cfg)),
	}
	a.resolver = resolver.New(resolver.Config{
		MinMemoryConfidence: cfg.Memory.MinConfidence,
		ContextThreshold:    cfg.Context.MinConfidence,
	}, a.memory, a.docs, a.manager, a.offline)

	return a, nil
}

// Close drains pending memory write-backs and closes the database.
func (a *app) Close() {
	a.resolver.Wait()
	a.db.Close()
}

// buildEndpoint creates the configured network backend, rate limited if
// the config asks for it.
func buildEndpoint(cfg *config.Config) (backend.Endpoint, error) {
	var endpoint backend.Endpoint
	switch cfg.Backend.Kind {
	case config.BackendHTTP:
		timeout := time.Duration(cfg.Pipeline.CallTimeoutSeconds) * time.Second
		endpoint = backend.NewHTTPBackend(cfg.Backend.Endpoint, cfg.Backend.Model, timeout)
	case config.BackendOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.BackendOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("%s is not set", config.APIKeyEnvVar(config.BackendOpenAI))
		}
		model := cfg.Backend.Model
		if model == "" {
			model = config.DefaultModel(config.BackendOpenAI)
		}
		endpoint = backend.NewOpenAIBackend(apiKey, model)
	default:
		return nil, fmt.Errorf("unknown backend kind %q", cfg.Backend.Kind)
	}

	if cfg.Backend.RateLimitRPM > 0 {
		endpoint = backend.RateLimited(endpoint, cfg.Backend.RateLimitRPM)
	}
	return endpoint, nil
}

func requestConfig(cfg *config.Config) request.Config {
	return request.Config{
		BatchSize:   cfg.Pipeline.BatchSize,
		Debounce:    time.Duration(cfg.Pipeline.DebounceMS) * time.Millisecond,
		DedupTTL:    time.Duration(cfg.Pipeline.DedupTTLSeconds) * time.Second,
		CallTimeout: time.Duration(cfg.Pipeline.CallTimeoutSeconds) * time.Second,
		MaxRetries:  cfg.Pipeline.MaxRetries,
		BackoffBase: time.Duration(cfg.Pipeline.BackoffBaseMS) * time.Millisecond,
		BackoffCap:  time.Duration(cfg.Pipeline.BackoffCapMS) * time.Millisecond,
	}
}

func memoryOptions(cfg *config.Config) memory.Options {
	return memory.Options{
		MinConfidence:     cfg.Memory.MinConfidence,
		SimilarityFloor:   cfg.Memory.SimilarityFloor,
		ConfidenceStep:    cfg.Memory.ConfidenceStep,
		DefaultConfidence: cfg.Memory.DefaultConfidence,
		DefaultLimit:      10,
	}
}
