// Package backend talks to remote translation endpoints. A batch carries
// every member text tagged with a caller id; responses correlate strictly
// by id.
package backend

import "context"

// Segment is one text within a batch, tagged with its request id.
type Segment struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// Batch is one network call's payload.
type Batch struct {
	Source   string    `json:"source,omitempty"`
	Target   string    `json:"target"`
	Segments []Segment `json:"segments"`
}

// ResultSegment is one translated segment, correlated by id.
type ResultSegment struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// BatchResult is a batch response.
type BatchResult struct {
	Translated   string          `json:"translated"`
	DetectedLang string          `json:"detected_lang,omitempty"`
	Segments     []ResultSegment `json:"segments"`
}

// Endpoint is a remote translation backend. Implementations classify
// failures through the translation error taxonomy: transport and non-2xx
// failures are NETWORK_ERROR (retryable), deadline expiry is TIMEOUT
// (never retried).
type Endpoint interface {
	// Translate sends one batch and returns correlated results.
	Translate(ctx context.Context, batch Batch) (*BatchResult, error)
	// Name identifies the backend for logging.
	Name() string
}

// ByID indexes a result's segments for fan-out.
func (r *BatchResult) ByID() map[string]ResultSegment {
	out := make(map[string]ResultSegment, len(r.Segments))
	for _, s := range r.Segments {
		out[s.ID] = s
	}
	return out
}
