package lexicon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Pack is a user-supplied dictionary file merged over the seed tables.
type Pack struct {
	Source  string            `yaml:"source"`
	Target  string            `yaml:"target"`
	Phrases map[string]string `yaml:"phrases"`
	Tokens  map[string]string `yaml:"tokens"`
}

// LoadPacks merges every dictionary pack under dir matching one of the
// glob patterns into the store. Returns the number of packs loaded.
// A missing dir is not an error; a malformed pack is.
func (s *Store) LoadPacks(dir string, globs []string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	fsys := os.DirFS(dir)
	loaded := 0
	for _, pattern := range globs {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return loaded, fmt.Errorf("bad dictionary glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if err := s.loadPack(filepath.Join(dir, match)); err != nil {
				return loaded, err
			}
			loaded++
		}
	}
	return loaded, nil
}

func (s *Store) loadPack(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading dictionary pack %s: %w", path, err)
	}

	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return fmt.Errorf("parsing dictionary pack %s: %w", path, err)
	}
	if pack.Source == "" || pack.Target == "" {
		return fmt.Errorf("dictionary pack %s: source and target are required", path)
	}

	for phrase, translation := range pack.Phrases {
		s.AddPhrase(pack.Source, pack.Target, phrase, translation)
	}
	for token, translation := range pack.Tokens {
		s.AddToken(pack.Source, pack.Target, token, translation)
	}
	return nil
}
