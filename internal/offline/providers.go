package offline

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/omaradly/transmem/internal/lexicon"
)

// dictionaryProvider does exact phrase lookup, falling back to per-token
// substitution with best-effort reassembly. Fails when no token resolves.
type dictionaryProvider struct {
	lex *lexicon.Store
}

func (p *dictionaryProvider) Name() string            { return "dictionary" }
func (p *dictionaryProvider) Available() bool         { return true }
func (p *dictionaryProvider) BaseConfidence() float64 { return 0.9 }

var tokenSplit = regexp.MustCompile(`[\s]+`)

func (p *dictionaryProvider) Translate(text, source, target string) (string, bool) {
	if out, ok := p.lex.Phrase(source, target, text); ok {
		return out, true
	}

	tokens := tokenSplit.Split(strings.TrimSpace(text), -1)
	translated := make([]string, 0, len(tokens))
	hits := 0
	for _, tok := range tokens {
		core := strings.Trim(tok, ".,!?;:\"'()")
		if core == "" {
			translated = append(translated, tok)
			continue
		}
		if out, ok := p.lex.Token(source, target, core); ok {
			translated = append(translated, strings.Replace(tok, core, out, 1))
			hits++
		} else {
			translated = append(translated, tok)
		}
	}
	if hits == 0 {
		return "", false
	}
	return joinTokens(translated, target), true
}

// ruleProvider applies the ordered regex rewrites for the source
// language. Spans matched by identity rules (numbers, URLs, emails) are
// masked out first so a rewrite can never touch them.
type ruleProvider struct{}

func (p *ruleProvider) Name() string            { return "rules" }
func (p *ruleProvider) Available() bool         { return true }
func (p *ruleProvider) BaseConfidence() float64 { return 0.6 }

func (p *ruleProvider) Translate(text, source, target string) (string, bool) {
	rules := lexicon.RulesFor(source)
	if rules == nil {
		return "", false
	}

	masked := text
	var protected []string
	for _, rule := range rules {
		if !rule.Identity {
			continue
		}
		masked = rule.Pattern.ReplaceAllStringFunc(masked, func(m string) string {
			protected = append(protected, m)
			return placeholder(len(protected) - 1)
		})
	}

	out := masked
	for _, rule := range rules {
		if rule.Identity {
			continue
		}
		out = rule.Pattern.ReplaceAllString(out, rule.Replace)
	}
	if out == masked {
		return "", false
	}

	for i, span := range protected {
		out = strings.Replace(out, placeholder(i), span, 1)
	}
	return out, true
}

// placeholder encodes the span index using control bytes only, so no
// identity rule (digits, URLs, emails) can match inside a placeholder
// that is already in the text.
func placeholder(i int) string {
	digits := strconv.Itoa(i)
	b := make([]byte, len(digits))
	for j := range digits {
		b[j] = digits[j] - '0' + 1
	}
	return "\x00" + string(b) + "\x00"
}

// patternProvider checks that the text actually looks like the claimed
// source language (script density >= 0.3) before applying the minimal
// fixed substitution table.
type patternProvider struct {
	lex *lexicon.Store
}

func (p *patternProvider) Name() string            { return "pattern" }
func (p *patternProvider) Available() bool         { return true }
func (p *patternProvider) BaseConfidence() float64 { return 0.4 }

func (p *patternProvider) Translate(text, source, target string) (string, bool) {
	if lexicon.Density(text, source) < 0.3 {
		return "", false
	}

	table := p.lex.Substitutions(source, target)
	if len(table) == 0 {
		return "", false
	}

	// Longest keys first so "thank you" beats "thank".
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	out := text
	lower := strings.ToLower(out)
	for _, k := range keys {
		if idx := strings.Index(lower, k); idx >= 0 {
			out = out[:idx] + table[k] + out[idx+len(k):]
			lower = strings.ToLower(out)
		}
	}
	if out == text {
		return "", false
	}
	return out, true
}

// mlProvider is the reserved on-device model slot. Not available yet.
type mlProvider struct{}

func (p *mlProvider) Name() string            { return "ml" }
func (p *mlProvider) Available() bool         { return false }
func (p *mlProvider) BaseConfidence() float64 { return 0.8 }

func (p *mlProvider) Translate(text, source, target string) (string, bool) {
	return "", false
}
