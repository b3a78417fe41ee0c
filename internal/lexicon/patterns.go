// Package lexicon holds the static language data the offline tier runs on:
// seed dictionaries, regex rewrite rules, and per-language script-density
// patterns used for detection.
package lexicon

import (
	"strings"
	"unicode"
)

// runeRange is an inclusive Unicode code point range.
type runeRange struct {
	lo, hi rune
}

// Pattern describes how to recognize a language from raw text. Script
// languages are scored by code-point density; Latin-script languages are
// scored by letter density weighted by stopword hits.
type Pattern struct {
	Lang      string
	Ranges    []runeRange
	Stopwords []string
}

// patterns is the closed set of recognizable languages.
var patterns = []Pattern{
	{
		Lang: "zh",
		Ranges: []runeRange{
			{0x4E00, 0x9FFF},   // CJK Unified Ideographs
			{0x3400, 0x4DBF},   // CJK Extension A
			{0xF900, 0xFAFF},   // CJK Compatibility Ideographs
		},
	},
	{
		Lang: "ja",
		Ranges: []runeRange{
			{0x3040, 0x309F}, // Hiragana
			{0x30A0, 0x30FF}, // Katakana
		},
	},
	{
		Lang: "ko",
		Ranges: []runeRange{
			{0xAC00, 0xD7AF}, // Hangul Syllables
			{0x1100, 0x11FF}, // Hangul Jamo
		},
	},
	{
		Lang: "ru",
		Ranges: []runeRange{
			{0x0400, 0x04FF}, // Cyrillic
		},
	},
	{
		Lang:      "en",
		Stopwords: []string{"the", "a", "an", "is", "are", "was", "were", "and", "or", "of", "to", "in", "that", "it", "for", "with", "on", "this"},
	},
	{
		Lang:      "es",
		Stopwords: []string{"el", "la", "los", "las", "un", "una", "es", "son", "y", "o", "de", "en", "que", "para", "con", "por", "este", "esta"},
	},
}

// Density scores how strongly text matches the given language's pattern,
// in [0,1]. Unknown languages score 0.
func Density(text, lang string) float64 {
	for _, p := range patterns {
		if p.Lang == lang {
			return p.density(text)
		}
	}
	return 0.0
}

// Detect returns the highest-scoring language for text along with its
// density score. Scores below 0.1 are inconclusive and return "auto".
func Detect(text string) (string, float64) {
	bestLang := "auto"
	bestScore := 0.0
	for _, p := range patterns {
		score := p.density(text)
		if score > bestScore {
			bestLang = p.Lang
			bestScore = score
		}
	}
	if bestScore < 0.1 {
		return "auto", bestScore
	}
	return bestLang, bestScore
}

func (p *Pattern) density(text string) float64 {
	if len(p.Ranges) > 0 {
		return p.rangeDensity(text)
	}
	return p.latinDensity(text)
}

// rangeDensity is the fraction of non-space runes inside the script ranges.
func (p *Pattern) rangeDensity(text string) float64 {
	total := 0
	hits := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		for _, rng := range p.Ranges {
			if r >= rng.lo && r <= rng.hi {
				hits++
				break
			}
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

// latinDensity combines Latin letter coverage with stopword evidence, so
// that "el gato" and "the cat" separate despite sharing a script.
func (p *Pattern) latinDensity(text string) float64 {
	total := 0
	latin := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.Is(unicode.Latin, r) {
			latin++
		}
	}
	if total == 0 {
		return 0.0
	}
	letterScore := float64(latin) / float64(total)

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0.0
	}
	stopHits := 0
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'()")
		for _, sw := range p.Stopwords {
			if w == sw {
				stopHits++
				break
			}
		}
	}
	stopScore := float64(stopHits) / float64(len(words))

	// Letters alone are weak evidence; stopwords carry the decision.
	return letterScore * (0.3 + 0.7*minFloat(1.0, stopScore*3))
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
