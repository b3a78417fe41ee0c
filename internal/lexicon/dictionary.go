package lexicon

import (
	"strings"
	"sync"
)

// Store holds the merged dictionary tables: built-in seed data plus any
// user dictionary packs loaded at startup. Reads are concurrent; pack
// loading takes the write lock.
type Store struct {
	mu            sync.RWMutex
	phrases       map[string]map[string]string // pair -> phrase -> translation
	tokens        map[string]map[string]string // pair -> token -> translation
	substitutions map[string]map[string]string // pair -> minimal pattern-tier table
}

// NewStore creates a Store seeded with the built-in dictionaries.
func NewStore() *Store {
	s := &Store{
		phrases:       make(map[string]map[string]string),
		tokens:        make(map[string]map[string]string),
		substitutions: make(map[string]map[string]string),
	}
	s.seed()
	return s
}

func pairKey(source, target string) string {
	return source + "|" + target
}

// Phrase looks up an exact phrase translation.
func (s *Store) Phrase(source, target, text string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.phrases[pairKey(source, target)]
	if !ok {
		return "", false
	}
	out, ok := table[normalizeKey(text)]
	return out, ok
}

// Token looks up a single token, trying common plural/verb endings when
// the exact form is absent.
func (s *Store) Token(source, target, token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.tokens[pairKey(source, target)]
	if !ok {
		return "", false
	}
	key := normalizeKey(token)
	if out, ok := table[key]; ok {
		return out, true
	}
	for _, suffix := range []string{"es", "s", "ed", "ing"} {
		stem := strings.TrimSuffix(key, suffix)
		if stem == key || len(stem) < 2 {
			continue
		}
		if out, ok := table[stem]; ok {
			return out, true
		}
	}
	return "", false
}

// Substitutions returns the minimal fixed substitution table for the pair,
// used by the last-resort pattern provider. The returned map is shared;
// callers must not mutate it.
func (s *Store) Substitutions(source, target string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.substitutions[pairKey(source, target)]
}

// AddPhrase adds or overrides a phrase translation.
func (s *Store) AddPhrase(source, target, text, translation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(source, target)
	if s.phrases[key] == nil {
		s.phrases[key] = make(map[string]string)
	}
	s.phrases[key][normalizeKey(text)] = translation
}

// AddToken adds or overrides a token translation.
func (s *Store) AddToken(source, target, token, translation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(source, target)
	if s.tokens[key] == nil {
		s.tokens[key] = make(map[string]string)
	}
	s.tokens[key][normalizeKey(token)] = translation
}

func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// seed installs the built-in dictionaries. Deliberately small: real
// coverage comes from translation memory and user dictionary packs.
func (s *Store) seed() {
	enZhPhrases := map[string]string{
		"hello":        "你好",
		"hello world":  "你好世界",
		"thank you":    "谢谢",
		"good morning": "早上好",
		"good night":   "晚安",
		"how are you":  "你好吗",
		"goodbye":      "再见",
	}
	enZhTokens := map[string]string{
		"hello": "你好", "world": "世界", "computer": "计算机",
		"book": "书", "cat": "猫", "dog": "狗", "water": "水",
		"time": "时间", "day": "天", "good": "好", "new": "新",
		"powerful": "强大", "fast": "快", "are": "是", "is": "是",
		"and": "和", "not": "不", "very": "非常", "people": "人们",
		"language": "语言", "translate": "翻译", "work": "工作",
	}
	zhEnPhrases := map[string]string{
		"你好": "hello", "谢谢": "thank you", "早上好": "good morning",
		"晚安": "good night", "再见": "goodbye",
	}
	zhEnTokens := map[string]string{
		"你好": "hello", "世界": "world", "计算机": "computer",
		"书": "book", "猫": "cat", "狗": "dog", "水": "water",
		"时间": "time", "好": "good", "新": "new", "翻译": "translate",
	}
	enEsPhrases := map[string]string{
		"hello":        "hola",
		"thank you":    "gracias",
		"good morning": "buenos días",
		"goodbye":      "adiós",
	}
	enEsTokens := map[string]string{
		"hello": "hola", "world": "mundo", "computer": "computadora",
		"book": "libro", "cat": "gato", "dog": "perro", "water": "agua",
		"time": "tiempo", "day": "día", "good": "bueno", "new": "nuevo",
		"and": "y", "not": "no", "very": "muy", "language": "idioma",
	}
	esEnPhrases := map[string]string{
		"hola": "hello", "gracias": "thank you", "buenos días": "good morning",
		"adiós": "goodbye",
	}
	esEnTokens := map[string]string{
		"hola": "hello", "mundo": "world", "computadora": "computer",
		"libro": "book", "gato": "cat", "perro": "dog", "agua": "water",
	}

	s.phrases[pairKey("en", "zh")] = enZhPhrases
	s.tokens[pairKey("en", "zh")] = enZhTokens
	s.phrases[pairKey("zh", "en")] = zhEnPhrases
	s.tokens[pairKey("zh", "en")] = zhEnTokens
	s.phrases[pairKey("en", "es")] = enEsPhrases
	s.tokens[pairKey("en", "es")] = enEsTokens
	s.phrases[pairKey("es", "en")] = esEnPhrases
	s.tokens[pairKey("es", "en")] = esEnTokens

	s.substitutions[pairKey("en", "zh")] = map[string]string{
		"yes": "是", "no": "不", "ok": "好", "please": "请",
	}
	s.substitutions[pairKey("zh", "en")] = map[string]string{
		"是": "yes", "不": "no", "请": "please",
	}
	s.substitutions[pairKey("en", "es")] = map[string]string{
		"yes": "sí", "no": "no", "please": "por favor",
	}
}
