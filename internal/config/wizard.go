package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .transmem.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to transmem! Let's configure your translation daemon.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Backend selection.
	backendPrompt := promptui.Select{
		Label: "Select network backend",
		Items: []string{
			"http   — self-hosted translation endpoint",
			"openai — chat-completion translation",
		},
	}
	backendIdx, _, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend selection: %w", err)
	}
	kinds := []BackendKind{BackendHTTP, BackendOpenAI}
	cfg.Backend.Kind = kinds[backendIdx]
	cfg.Backend.Model = DefaultModel(cfg.Backend.Kind)

	// 2. Endpoint, for the http backend.
	if cfg.Backend.Kind == BackendHTTP {
		endpointPrompt := promptui.Prompt{
			Label:   "Translation endpoint URL",
			Default: cfg.Backend.Endpoint,
		}
		if cfg.Backend.Endpoint, err = endpointPrompt.Run(); err != nil {
			return nil, fmt.Errorf("endpoint: %w", err)
		}
	}

	// 3. Database location.
	dbPrompt := promptui.Prompt{
		Label:   "Database path",
		Default: cfg.Database,
	}
	if cfg.Database, err = dbPrompt.Run(); err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}

	// 4. Listen address for the HTTP API.
	listenPrompt := promptui.Prompt{
		Label:   "Listen address",
		Default: cfg.Listen,
	}
	if cfg.Listen, err = listenPrompt.Run(); err != nil {
		return nil, fmt.Errorf("listen address: %w", err)
	}

	// 5. Optional offline dictionary packs.
	packPrompt := promptui.Prompt{
		Label:   "Dictionary pack directory (leave blank for none)",
		Default: "",
	}
	if cfg.Lexicon.PackDir, err = packPrompt.Run(); err != nil {
		return nil, fmt.Errorf("pack directory: %w", err)
	}
	if cfg.Lexicon.PackDir != "" {
		globPrompt := promptui.Prompt{
			Label:   "Pack file globs (comma-separated)",
			Default: strings.Join(DefaultPackGlobs, ","),
		}
		globStr, err := globPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("pack globs: %w", err)
		}
		if globs := splitAndTrim(globStr); len(globs) > 0 {
			cfg.Lexicon.PackGlobs = globs
		}
	}

	if envVar := APIKeyEnvVar(cfg.Backend.Kind); envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running transmem serve.\n", envVar)
		}
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
