package docctx

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/omaradly/transmem/internal/translation"
)

// Adjust rewrites a base translation of sentence sentenceIndex for
// consistency with its document. The pipeline order is fixed: pronoun
// resolution, terminology enforcement, tone normalization, the tense
// hook, cultural adaptation.
func (e *Engine) Adjust(ctx context.Context, id string, sentenceIndex int, base, source, target string) (string, []translation.Adjustment, float64, error) {
	doc, err := e.Get(ctx, id)
	if err != nil {
		return "", nil, 0, err
	}
	if sentenceIndex < 0 || sentenceIndex >= len(doc.Sentences) {
		return "", nil, 0, translation.NewError(translation.KindSentenceNotFound,
			fmt.Sprintf("context %q has no sentence %d", id, sentenceIndex))
	}
	sentence := &doc.Sentences[sentenceIndex]

	var adjustments []translation.Adjustment
	text := base

	text, adjustments = e.resolvePronouns(doc, sentence, text, target, adjustments)
	text, adjustments = e.enforceTerminology(doc, text, adjustments)
	text, adjustments = e.normalizeTone(doc, text, target, adjustments)
	text, adjustments = e.adjustTense(sentence, text, adjustments)
	text, adjustments = e.adaptCulture(doc, text, source, target, adjustments)

	return text, adjustments, e.confidence(doc, sentence, len(adjustments)), nil
}

// confidence scores how much to trust the adjusted output. Callers fall
// through to the network below roughly 0.6.
func (e *Engine) confidence(doc *DocumentContext, s *Sentence, adjustmentCount int) float64 {
	score := 0.5
	score += 0.1 * float64(len(s.Dependencies))
	score += 0.1 * float64(len(s.Relations))
	extra := 0.05 * float64(adjustmentCount)
	if extra > 0.2 {
		extra = 0.2
	}
	score += extra
	if len(doc.Terminology) > 0 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// resolvePronouns substitutes the first ambiguous pronoun with the subject
// extracted from the nearest dependency sentence.
func (e *Engine) resolvePronouns(doc *DocumentContext, s *Sentence, text, target string, adjustments []translation.Adjustment) (string, []translation.Adjustment) {
	if len(s.Dependencies) == 0 {
		return text, adjustments
	}

	subject := ""
	for i := len(s.Dependencies) - 1; i >= 0 && subject == ""; i-- {
		if dep := doc.sentenceByID(s.Dependencies[i]); dep != nil {
			subject = extractSubject(dep.Text)
		}
	}
	if subject == "" {
		return text, adjustments
	}

	for _, pronoun := range ambiguousPronouns[target] {
		var re *regexp.Regexp
		if isASCII(pronoun) {
			re = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(pronoun) + `\b`)
		} else {
			re = regexp.MustCompile(regexp.QuoteMeta(pronoun))
		}
		if loc := re.FindStringIndex(text); loc != nil {
			replaced := text[:loc[0]] + subject + text[loc[1]:]
			adjustments = append(adjustments, translation.Adjustment{
				Type:     "pronoun",
				Original: text[loc[0]:loc[1]],
				Adjusted: subject,
				Reason:   "resolved against dependency sentence subject",
			})
			return replaced, adjustments
		}
	}
	return text, adjustments
}

// enforceTerminology replaces token-level variants of document-global
// terms with their canonical translation.
func (e *Engine) enforceTerminology(doc *DocumentContext, text string, adjustments []translation.Adjustment) (string, []translation.Adjustment) {
	e.mu.RLock()
	terms := make(map[string]string, len(doc.Terminology))
	for term, canonical := range doc.Terminology {
		terms[term] = canonical
	}
	e.mu.RUnlock()

	for term, canonical := range terms {
		if canonical == "" || strings.Contains(text, canonical) {
			continue
		}
		var re *regexp.Regexp
		if isASCII(term) {
			re = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `(?:s|es)?\b`)
		} else {
			re = regexp.MustCompile(regexp.QuoteMeta(term))
		}
		if loc := re.FindStringIndex(text); loc != nil {
			original := text[loc[0]:loc[1]]
			text = re.ReplaceAllLiteralString(text, canonical)
			adjustments = append(adjustments, translation.Adjustment{
				Type:     "terminology",
				Original: original,
				Adjusted: canonical,
				Reason:   "document-global term",
			})
		}
	}
	return text, adjustments
}

// normalizeTone applies the register-specific substitution table for the
// document tone and target language.
func (e *Engine) normalizeTone(doc *DocumentContext, text, target string, adjustments []translation.Adjustment) (string, []translation.Adjustment) {
	table := toneSubstitutions[string(doc.Tone)+"|"+target]
	if table == nil {
		return text, adjustments
	}

	for from, to := range table {
		var re *regexp.Regexp
		if isASCII(from) {
			re = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(from) + `\b`)
		} else {
			re = regexp.MustCompile(regexp.QuoteMeta(from))
		}
		if re.MatchString(text) {
			text = re.ReplaceAllLiteralString(text, to)
			adjustments = append(adjustments, translation.Adjustment{
				Type:     "tone",
				Original: from,
				Adjusted: to,
				Reason:   string(doc.Tone) + " register",
			})
		}
	}
	return text, adjustments
}

// adjustTense is a reserved hook. Temporal relations are detected during
// analysis but no rewriting happens here yet.
func (e *Engine) adjustTense(s *Sentence, text string, adjustments []translation.Adjustment) (string, []translation.Adjustment) {
	return text, adjustments
}

// adaptCulture applies idiomatic salutation/connective swaps for
// business and academic documents.
func (e *Engine) adaptCulture(doc *DocumentContext, text, source, target string, adjustments []translation.Adjustment) (string, []translation.Adjustment) {
	if !culturalDomains[doc.Domain] {
		return text, adjustments
	}
	table := culturalSubstitutions[source+"|"+target]
	if table == nil {
		return text, adjustments
	}

	for from, to := range table {
		if strings.Contains(text, from) {
			text = strings.ReplaceAll(text, from, to)
			adjustments = append(adjustments, translation.Adjustment{
				Type:     "cultural",
				Original: from,
				Adjusted: to,
				Reason:   string(doc.Domain) + " idiom",
			})
		}
	}
	return text, adjustments
}

func (d *DocumentContext) sentenceByID(id string) *Sentence {
	for i := range d.Sentences {
		if d.Sentences[i].ID == id {
			return &d.Sentences[i]
		}
	}
	return nil
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}
