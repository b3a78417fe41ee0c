// Package translation holds the wire-level request/result types and the
// error taxonomy shared by every tier of the resolution pipeline.
package translation

// Format describes how the source text should be treated.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// Provenance identifies which tier of the pipeline produced a result.
type Provenance string

const (
	ProvenanceMemory     Provenance = "memory"
	ProvenanceContextual Provenance = "contextual"
	ProvenanceOnline     Provenance = "online"
	ProvenanceOffline    Provenance = "offline"
	ProvenanceIdentity   Provenance = "identity"
)

// Request is a single translation request. It is immutable once submitted;
// the resolver and request manager own it until a Result is delivered.
type Request struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	SourceLang    string `json:"source_lang"` // "auto" allowed
	TargetLang    string `json:"target_lang"`
	Format        Format `json:"format,omitempty"`
	ContextID     string `json:"context_id,omitempty"`
	SentenceIndex int    `json:"sentence_index,omitempty"`
	Priority      int    `json:"priority,omitempty"`
	Context       string `json:"context,omitempty"` // short excerpt for disambiguation
}

// Adjustment records one contextual rewrite applied to a translation.
type Adjustment struct {
	Type     string `json:"type"` // pronoun, terminology, tone, tense, cultural
	Original string `json:"original"`
	Adjusted string `json:"adjusted"`
	Reason   string `json:"reason,omitempty"`
}

// Result is the outcome of resolving a Request. Produced once, immutable,
// and shared verbatim by every waiter of a deduplicated request.
type Result struct {
	Success      bool         `json:"success"`
	Text         string       `json:"text,omitempty"`
	DetectedLang string       `json:"detected_lang,omitempty"`
	Alternatives []string     `json:"alternatives,omitempty"`
	Confidence   float64      `json:"confidence"`
	Provenance   Provenance   `json:"provenance,omitempty"`
	Adjustments  []Adjustment `json:"adjustments,omitempty"`
	ErrorKind    ErrorKind    `json:"error_kind,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

// Failure builds a structured failure Result from an error.
func Failure(err error) *Result {
	return &Result{
		Success:      false,
		ErrorKind:    KindOf(err),
		ErrorMessage: err.Error(),
	}
}

// RequestKey is the deduplication key: two requests with the same key are
// the same logical request and share one network call.
func (r *Request) RequestKey() string {
	format := r.Format
	if format == "" {
		format = FormatText
	}
	return r.Text + "|" + r.SourceLang + "|" + r.TargetLang + "|" + string(format)
}

// BatchKey groups independent requests that can ride the same network call.
func (r *Request) BatchKey() string {
	return r.SourceLang + "|" + r.TargetLang
}
