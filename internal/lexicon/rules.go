package lexicon

import "regexp"

// Rule is one regex rewrite applied by the rule provider. Identity rules
// protect spans (numbers, URLs, emails) from being counted as changes.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Replace  string
	Identity bool
}

var (
	numberPattern = regexp.MustCompile(`\b\d+(?:[.,]\d+)*\b`)
	urlPattern    = regexp.MustCompile(`https?://[^\s]+`)
	emailPattern  = regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.-]+\b`)
)

// identityRules pass well-known literal spans through unchanged in every
// source language.
var identityRules = []Rule{
	{Name: "url", Pattern: urlPattern, Replace: "$0", Identity: true},
	{Name: "email", Pattern: emailPattern, Replace: "$0", Identity: true},
	{Name: "number", Pattern: numberPattern, Replace: "$0", Identity: true},
}

// rewriteRules holds the ordered, language-scoped rewrites. The en/es
// entries do rough inflection stripping; that is the extent of the "NLP"
// this tier attempts.
var rewriteRules = map[string][]Rule{
	"en": {
		{Name: "gerund", Pattern: regexp.MustCompile(`\b(\w{3,}?)ing\b`), Replace: "$1"},
		{Name: "past", Pattern: regexp.MustCompile(`\b(\w{3,}?)ed\b`), Replace: "$1"},
		{Name: "plural-es", Pattern: regexp.MustCompile(`\b(\w{3,}?)es\b`), Replace: "$1"},
		{Name: "plural-s", Pattern: regexp.MustCompile(`\b(\w{3,}?)s\b`), Replace: "$1"},
	},
	"es": {
		{Name: "plural-es", Pattern: regexp.MustCompile(`\b(\w{3,}?)es\b`), Replace: "$1"},
		{Name: "plural-s", Pattern: regexp.MustCompile(`\b(\w{3,}?)s\b`), Replace: "$1"},
		{Name: "adverb", Pattern: regexp.MustCompile(`\b(\w{3,}?)mente\b`), Replace: "$1"},
	},
}

// RulesFor returns the ordered rule list for a source language: identity
// protections first, then language-scoped rewrites. Nil when the language
// has no rewrite rules at all.
func RulesFor(source string) []Rule {
	rewrites, ok := rewriteRules[source]
	if !ok {
		return nil
	}
	rules := make([]Rule, 0, len(identityRules)+len(rewrites))
	rules = append(rules, identityRules...)
	rules = append(rules, rewrites...)
	return rules
}
