package memory

import "time"

// Entry is one stored translation, addressed by the content hash of its
// (source text, source lang, target lang) triple.
type Entry struct {
	ID         string    `json:"id"`
	SourceText string    `json:"source_text"`
	TargetText string    `json:"target_text"`
	SourceLang string    `json:"source_lang"`
	TargetLang string    `json:"target_lang"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsed   time.Time `json:"last_used"`
	UseCount   int       `json:"use_count"`
	Confidence float64   `json:"confidence"`
	UserRating *int      `json:"user_rating,omitempty"`
	Domain     string    `json:"domain"`
	Tags       []string  `json:"tags,omitempty"`
	Correction *string   `json:"correction,omitempty"`
}

// Translation returns the effective target text: a user correction, when
// present, overrides the stored translation.
func (e *Entry) Translation() string {
	if e.Correction != nil && *e.Correction != "" {
		return *e.Correction
	}
	return e.TargetText
}

// Candidate is a ranked lookup hit.
type Candidate struct {
	Entry Entry   `json:"entry"`
	Score float64 `json:"score"`
	Exact bool    `json:"exact"`
}

// LookupOptions tunes a Lookup call. Zero values take the store defaults.
type LookupOptions struct {
	Limit   int
	Domain  string // filter candidates to this domain
	Context string // free-form excerpt; boosts entries whose domain text overlaps
}

// RememberOptions carries optional metadata for a Remember call.
type RememberOptions struct {
	Domain     string
	Tags       []string
	Confidence float64 // initial confidence for new entries; 0 means default
}

// CustomTerm is a user-promoted (term -> translation) preference,
// consulted before memory lookup for short phrases.
type CustomTerm struct {
	SourceLang  string    `json:"source_lang"`
	TargetLang  string    `json:"target_lang"`
	Term        string    `json:"term"`
	Translation string    `json:"translation"`
	CreatedAt   time.Time `json:"created_at"`
}

// Dump is the export/import document for backup and migration.
type Dump struct {
	Version     int          `json:"version"`
	ExportDate  time.Time    `json:"exportDate"`
	Entries     []Entry      `json:"entries"`
	Preferences []CustomTerm `json:"preferences"`
}

// DumpVersion is the current export format version.
const DumpVersion = 1
