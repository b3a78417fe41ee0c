package offline

import (
	"strings"
	"testing"

	"github.com/omaradly/transmem/internal/lexicon"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(lexicon.NewStore())
}

func TestDictionaryExactPhrase(t *testing.T) {
	r := newResolver(t)
	result, err := r.Resolve("thank you", "en", "zh")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Text != "谢谢" {
		t.Errorf("Text = %q, want 谢谢", result.Text)
	}
	if result.Provider != "dictionary" {
		t.Errorf("Provider = %q, want dictionary", result.Provider)
	}
}

func TestDictionaryPerTokenFallback(t *testing.T) {
	r := newResolver(t)
	// No exact phrase entry; "computers" resolves via plural stripping.
	result, err := r.Resolve("computers are powerful", "en", "zh")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Provider != "dictionary" {
		t.Fatalf("Provider = %q, want dictionary before rules/pattern", result.Provider)
	}
	if !strings.Contains(result.Text, "计算机") {
		t.Errorf("Text = %q, want substituted 计算机", result.Text)
	}
}

func TestDictionaryConfidence(t *testing.T) {
	r := newResolver(t)
	result, err := r.Resolve("hello world", "en", "zh")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// "hello world" (11 runes) -> "你好世界" (4 runes): ratio 0.36,
	// outside [0.5, 2.0], so 0.9 scales to 0.72.
	if result.Confidence < 0.71 || result.Confidence > 0.73 {
		t.Errorf("Confidence = %v, want ~0.72", result.Confidence)
	}
}

func TestRuleProviderStemming(t *testing.T) {
	r := newResolver(t)
	// No dictionary hit; the en rule chain strips inflections.
	result, err := r.Resolve("walking quickly", "en", "fr")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Provider != "rules" {
		t.Fatalf("Provider = %q, want rules", result.Provider)
	}
	if !strings.Contains(result.Text, "walk") || strings.Contains(result.Text, "walking") {
		t.Errorf("Text = %q, want stemmed walking", result.Text)
	}
}

func TestRuleProviderProtectsLiterals(t *testing.T) {
	r := newResolver(t)
	result, err := r.Resolve("visiting https://example.com/docs costs 25 dollars", "en", "fr")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.Contains(result.Text, "https://example.com/docs") {
		t.Errorf("URL was rewritten: %q", result.Text)
	}
	if !strings.Contains(result.Text, "25") {
		t.Errorf("number was rewritten: %q", result.Text)
	}
}

func TestPatternProviderDensityGate(t *testing.T) {
	p := &patternProvider{lex: lexicon.NewStore()}
	// Claimed zh but the text is Latin: density gate must fail it.
	if _, ok := p.Translate("definitely not chinese", "zh", "en"); ok {
		t.Error("pattern provider accepted text failing the density gate")
	}
	// Real Chinese with a substitution table entry.
	out, ok := p.Translate("请稍等", "zh", "en")
	if !ok {
		t.Fatal("pattern provider rejected valid Chinese")
	}
	if !strings.Contains(out, "please") {
		t.Errorf("out = %q, want 请 -> please substitution", out)
	}
}

func TestChainExhaustion(t *testing.T) {
	r := newResolver(t)
	// Unknown language pair, no rules, density gate fails.
	if _, err := r.Resolve("völlig unbekannt", "de", "ko"); err == nil {
		t.Error("expected failure when every provider passes")
	}
}

func TestMLProviderReserved(t *testing.T) {
	p := &mlProvider{}
	if p.Available() {
		t.Error("ml provider must be unavailable until a model ships")
	}
}

func TestDetect(t *testing.T) {
	r := newResolver(t)
	lang, score := r.Detect("这是一段中文文本")
	if lang != "zh" {
		t.Errorf("Detect = %q, want zh", lang)
	}
	if score < 0.1 {
		t.Errorf("score = %v, want >= 0.1", score)
	}
}
