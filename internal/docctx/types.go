package docctx

import "time"

// Domain is the inferred subject area of a document.
type Domain string

const (
	DomainTech     Domain = "tech"
	DomainBusiness Domain = "business"
	DomainAcademic Domain = "academic"
	DomainMedical  Domain = "medical"
	DomainLegal    Domain = "legal"
	DomainGeneral  Domain = "general"
)

// Tone is the inferred register of a document.
type Tone string

const (
	ToneFormal    Tone = "formal"
	ToneInformal  Tone = "informal"
	ToneTechnical Tone = "technical"
	ToneAcademic  Tone = "academic"
	ToneCreative  Tone = "creative"
)

// RelationKind classifies a discourse link between two sentences.
type RelationKind string

const (
	RelationReference    RelationKind = "reference"
	RelationContinuation RelationKind = "continuation"
	RelationContrast     RelationKind = "contrast"
	RelationCausation    RelationKind = "causation"
	RelationTemporal     RelationKind = "temporal"
)

// Relation is one semantic link from a sentence to an earlier one.
type Relation struct {
	Kind       RelationKind `json:"kind"`
	TargetID   string       `json:"target_id"`
	Confidence float64      `json:"confidence"`
}

// Sentence is one analyzed sentence node. Immutable once the context is
// built.
type Sentence struct {
	ID           string     `json:"id"` // sentence_<index>
	Text         string     `json:"text"`
	Position     int        `json:"position"`
	Dependencies []string   `json:"dependencies"` // ids of up to 3 preceding sentences
	Relations    []Relation `json:"relations"`
}

// DocumentContext is the per-document sentence graph plus document-wide
// metadata. Read-only after construction except Terminology, which may
// gain entries as more of the document is seen.
type DocumentContext struct {
	ID          string            `json:"id"`
	Title       string            `json:"title,omitempty"`
	Domain      Domain            `json:"domain"`
	Tone        Tone              `json:"tone"`
	Sentences   []Sentence        `json:"sentences"`
	Terminology map[string]string `json:"terminology"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Metadata is caller-supplied context for BuildContext.
type Metadata struct {
	Title  string
	Domain Domain // empty means infer from text
	Tone   Tone   // empty means infer from text
}

// maxLookback bounds how far back a sentence may depend.
const maxLookback = 3
