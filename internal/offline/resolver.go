// Package offline resolves translations without the network: a closed
// chain of providers tried in strict priority order, each succeeding only
// when its output differs from the input.
package offline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/omaradly/transmem/internal/lexicon"
)

// Provider is one offline translation strategy. Availability is an
// explicit capability flag; the resolver skips unavailable providers
// without consulting them.
type Provider interface {
	Name() string
	Available() bool
	// Translate returns the translated text, or ok=false when this
	// provider cannot handle the input.
	Translate(text, source, target string) (out string, ok bool)
	// BaseConfidence is the provider's fixed confidence before length
	// scaling.
	BaseConfidence() float64
}

// Result is a successful offline resolution.
type Result struct {
	Text       string
	Confidence float64
	Provider   string
}

// Resolver runs the provider chain: dictionary, rules, pattern, and a
// reserved ML slot.
type Resolver struct {
	providers []Provider
}

// NewResolver builds the standard provider chain over the lexicon.
func NewResolver(lex *lexicon.Store) *Resolver {
	return &Resolver{
		providers: []Provider{
			&dictionaryProvider{lex: lex},
			&ruleProvider{},
			&patternProvider{lex: lex},
			&mlProvider{},
		},
	}
}

// Resolve tries each available provider in order until one produces
// output different from the input.
func (r *Resolver) Resolve(text, source, target string) (*Result, error) {
	for _, p := range r.providers {
		if !p.Available() {
			continue
		}
		out, ok := p.Translate(text, source, target)
		if !ok || out == text {
			continue
		}
		return &Result{
			Text:       out,
			Confidence: scaleByLength(p.BaseConfidence(), text, out),
			Provider:   p.Name(),
		}, nil
	}
	return nil, fmt.Errorf("no offline provider could translate %s->%s", source, target)
}

// Detect guesses the language of text by character-density scoring.
func (r *Resolver) Detect(text string) (string, float64) {
	return lexicon.Detect(text)
}

// scaleByLength discounts translations whose length ratio is implausible.
func scaleByLength(confidence float64, in, out string) float64 {
	inLen := utf8.RuneCountInString(in)
	outLen := utf8.RuneCountInString(out)
	if inLen == 0 {
		return confidence
	}
	ratio := float64(outLen) / float64(inLen)
	if ratio < 0.5 || ratio > 2.0 {
		confidence *= 0.8
	}
	return confidence
}

// spaceless languages join translated tokens without separators.
var spaceless = map[string]bool{"zh": true, "ja": true}

func joinTokens(tokens []string, target string) string {
	if spaceless[target] {
		return strings.Join(tokens, "")
	}
	return strings.Join(tokens, " ")
}
