package docctx

import (
	"fmt"
	"regexp"
	"strings"
)

// Heuristic regex "NLP". Dependency and relation detection is pattern
// matching over surface cues, nothing deeper.
var (
	pronounPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(it|they|them|he|she|him|her|this|that|these|those)\b`),
		regexp.MustCompile(`[它他她]们?|这些?|那些?`),
		regexp.MustCompile(`(?i)\b(él|ella|ellos|ellas|esto|eso|estos|esos)\b`),
	}

	temporalCues    = regexp.MustCompile(`(?i)^\s*(then|after that|afterwards|before that|meanwhile|later|finally)\b|^(然后|之后|接着|最后|同时)`)
	causalCues      = regexp.MustCompile(`(?i)^\s*(because|therefore|thus|so|as a result|consequently)\b|^(因为|因此|所以|由于)`)
	contrastiveCues = regexp.MustCompile(`(?i)^\s*(but|however|although|yet|nevertheless|on the other hand)\b|^(但是|然而|不过|尽管)`)
	additiveCues    = regexp.MustCompile(`(?i)^\s*(and|also|moreover|furthermore|in addition)\b|^(而且|此外|并且|同样)`)
)

// domainKeywords drives domain inference by keyword vote.
var domainKeywords = map[Domain][]string{
	DomainTech:     {"software", "server", "database", "code", "api", "algorithm", "network", "计算机", "软件", "服务器", "代码"},
	DomainBusiness: {"revenue", "market", "customer", "sales", "invoice", "quarterly", "stakeholder", "市场", "客户", "销售"},
	DomainAcademic: {"study", "research", "hypothesis", "experiment", "literature", "findings", "研究", "实验", "论文"},
	DomainMedical:  {"patient", "diagnosis", "treatment", "symptom", "clinical", "dosage", "病人", "诊断", "治疗"},
	DomainLegal:    {"contract", "liability", "clause", "plaintiff", "jurisdiction", "pursuant", "合同", "法律", "条款"},
}

// formalCues and casualCues drive tone inference.
var (
	formalCues = []string{"hereby", "pursuant", "furthermore", "accordingly", "respectfully", "尊敬", "敬请", "贵方"}
	casualCues = []string{"gonna", "wanna", "hey", "cool", "stuff", "btw", "哈哈", "啦", "哦"}
)

// BuildContext analyzes the ordered sentences of a document into a
// sentence graph with dependency links and discourse relations.
func BuildContext(id string, sentences []string, meta Metadata) *DocumentContext {
	doc := &DocumentContext{
		ID:          id,
		Title:       meta.Title,
		Terminology: make(map[string]string),
	}

	full := strings.Join(sentences, " ")
	doc.Domain = meta.Domain
	if doc.Domain == "" {
		doc.Domain = inferDomain(full)
	}
	doc.Tone = meta.Tone
	if doc.Tone == "" {
		doc.Tone = inferTone(full, doc.Domain)
	}

	for i, text := range sentences {
		s := Sentence{
			ID:           fmt.Sprintf("sentence_%d", i),
			Text:         text,
			Position:     i,
			Dependencies: []string{},
			Relations:    []Relation{},
		}
		analyzeSentence(&s, sentences, i)
		doc.Sentences = append(doc.Sentences, s)
	}
	return doc
}

// analyzeSentence fills in dependencies (up to maxLookback preceding
// sentences) and semantic relations for sentence i.
func analyzeSentence(s *Sentence, sentences []string, i int) {
	if i == 0 {
		return
	}

	hasPronoun := containsPronoun(s.Text)
	hasConnective := temporalCues.MatchString(s.Text) ||
		causalCues.MatchString(s.Text) ||
		contrastiveCues.MatchString(s.Text) ||
		additiveCues.MatchString(s.Text)

	if hasPronoun || hasConnective {
		lookback := i
		if lookback > maxLookback {
			lookback = maxLookback
		}
		for j := i - lookback; j < i; j++ {
			s.Dependencies = append(s.Dependencies, fmt.Sprintf("sentence_%d", j))
		}
	}

	prev := fmt.Sprintf("sentence_%d", i-1)
	switch {
	case causalCues.MatchString(s.Text):
		s.Relations = append(s.Relations, Relation{Kind: RelationCausation, TargetID: prev, Confidence: 0.8})
	case contrastiveCues.MatchString(s.Text):
		s.Relations = append(s.Relations, Relation{Kind: RelationContrast, TargetID: prev, Confidence: 0.8})
	case temporalCues.MatchString(s.Text):
		s.Relations = append(s.Relations, Relation{Kind: RelationTemporal, TargetID: prev, Confidence: 0.8})
	case additiveCues.MatchString(s.Text):
		s.Relations = append(s.Relations, Relation{Kind: RelationContinuation, TargetID: prev, Confidence: 0.6})
	}
	if hasPronoun {
		s.Relations = append(s.Relations, Relation{Kind: RelationReference, TargetID: prev, Confidence: 0.7})
	}
}

func containsPronoun(text string) bool {
	for _, p := range pronounPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func inferDomain(text string) Domain {
	lower := strings.ToLower(text)
	best := DomainGeneral
	bestHits := 0
	for domain, keywords := range domainKeywords {
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = domain
			bestHits = hits
		}
	}
	if bestHits < 2 {
		return DomainGeneral
	}
	return best
}

func inferTone(text string, domain Domain) Tone {
	lower := strings.ToLower(text)
	for _, cue := range casualCues {
		if strings.Contains(lower, cue) {
			return ToneInformal
		}
	}
	for _, cue := range formalCues {
		if strings.Contains(lower, cue) {
			return ToneFormal
		}
	}
	switch domain {
	case DomainTech:
		return ToneTechnical
	case DomainAcademic:
		return ToneAcademic
	case DomainLegal, DomainBusiness, DomainMedical:
		return ToneFormal
	}
	return ToneFormal
}

// subjectPatterns extract the syntactic subject of a sentence, used for
// pronoun resolution. First match wins.
var subjectPatterns = []*regexp.Regexp{
	// "The database server handles..." -> "database server"
	regexp.MustCompile(`(?i)^(?:the|a|an)\s+((?:[a-z]+\s)?[a-z]+?)\s+(?:is|are|was|were|has|have|had|will|can|must|[a-z]+(?:s|ed))\b`),
	// Bare subject: "Servers handle..." -> "Servers"
	regexp.MustCompile(`(?i)^([A-Za-z][a-z]+)\s+(?:is|are|was|were|has|have|had|will|can|must|[a-z]+(?:s|ed))\b`),
	// Chinese topic before 是/在/会/把
	regexp.MustCompile(`^([\p{Han}]{1,6})(?:是|在|会|把|被|对)`),
}

// extractSubject pulls the likely subject from a sentence, or "".
func extractSubject(text string) string {
	text = strings.TrimSpace(text)
	for _, p := range subjectPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
