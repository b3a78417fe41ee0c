// Package resolver is the top-level translation policy: personal memory
// first, contextual adjustment second, the network third, the offline
// chain fourth, and an identity fallback so callers always get an answer.
package resolver

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/omaradly/transmem/internal/docctx"
	"github.com/omaradly/transmem/internal/memory"
	"github.com/omaradly/transmem/internal/offline"
	"github.com/omaradly/transmem/internal/request"
	"github.com/omaradly/transmem/internal/translation"
)

// Config holds the orchestration thresholds.
type Config struct {
	MinMemoryConfidence float64 // memory hits below this fall through
	ContextThreshold    float64 // contextual results below this fall through
	WriteBackTimeout    time.Duration
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		MinMemoryConfidence: 0.5,
		ContextThreshold:    0.6,
		WriteBackTimeout:    5 * time.Second,
	}
}

// Resolver wires the pipeline tiers together.
type Resolver struct {
	cfg     Config
	memory  *memory.Store
	docs    *docctx.Engine
	manager *request.Manager
	offline *offline.Resolver

	wg sync.WaitGroup
}

// New creates a resolver over the pipeline tiers.
func New(cfg Config, mem *memory.Store, docs *docctx.Engine, manager *request.Manager, off *offline.Resolver) *Resolver {
	if cfg.MinMemoryConfidence <= 0 {
		cfg.MinMemoryConfidence = 0.5
	}
	if cfg.ContextThreshold <= 0 {
		cfg.ContextThreshold = 0.6
	}
	if cfg.WriteBackTimeout <= 0 {
		cfg.WriteBackTimeout = 5 * time.Second
	}
	return &Resolver{
		cfg:     cfg,
		memory:  mem,
		docs:    docs,
		manager: manager,
		offline: off,
	}
}

// Translate resolves one request. It never returns an error and never
// panics across the boundary: the worst case is the identity fallback or
// a structured failure result.
func (r *Resolver) Translate(ctx context.Context, req *translation.Request) (result *translation.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("resolver: panic resolving %s: %v", req.ID, rec)
			result = translation.Failure(translation.NewError(
				translation.KindHandlerError, fmt.Sprintf("internal error: %v", rec)))
		}
	}()

	if req.Text == "" {
		return translation.Failure(translation.NewError(
			translation.KindHandlerError, "empty source text"))
	}

	source := req.SourceLang
	detected := ""
	if source == "" || source == "auto" {
		if lang, _ := r.offline.Detect(req.Text); lang != "auto" {
			source = lang
			detected = lang
		}
	}

	if result := r.fromMemory(ctx, req, source, detected); result != nil {
		return result
	}
	if result := r.fromContext(ctx, req, source, detected); result != nil {
		return result
	}
	if result := r.fromNetwork(ctx, req, source, detected); result != nil {
		return result
	}
	if result := r.fromOffline(ctx, req, source, detected); result != nil {
		return result
	}

	// Identity fallback: the original text, zero confidence. Never an
	// error; the caller decides what to show.
	return &translation.Result{
		Success:      true,
		Text:         req.Text,
		DetectedLang: detected,
		Confidence:   0,
		Provenance:   translation.ProvenanceIdentity,
	}
}

// fromMemory consults the custom-terms preference map, then the
// content-addressed memory. Only a trusted exact hit short-circuits.
func (r *Resolver) fromMemory(ctx context.Context, req *translation.Request, source, detected string) *translation.Result {
	if term, ok, err := r.memory.CustomTerm(ctx, req.Text, source, req.TargetLang); err == nil && ok {
		return &translation.Result{
			Success:      true,
			Text:         term,
			DetectedLang: detected,
			Confidence:   1.0,
			Provenance:   translation.ProvenanceMemory,
		}
	} else if err != nil {
		log.Printf("resolver: custom term lookup: %v", err)
	}

	candidates, err := r.memory.Lookup(ctx, req.Text, source, req.TargetLang, memory.LookupOptions{
		Limit:   3,
		Context: req.Context,
	})
	if err != nil {
		log.Printf("resolver: memory lookup: %v", err)
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0]
	if !best.Exact || best.Entry.Confidence < r.cfg.MinMemoryConfidence {
		return nil
	}

	id := best.Entry.ID
	r.async(func(ctx context.Context) {
		if err := r.memory.Touch(ctx, id); err != nil {
			log.Printf("resolver: touching memory entry: %v", err)
		}
	})

	var alternatives []string
	for _, c := range candidates[1:] {
		alternatives = append(alternatives, c.Entry.Translation())
	}
	return &translation.Result{
		Success:      true,
		Text:         best.Entry.Translation(),
		DetectedLang: detected,
		Alternatives: alternatives,
		Confidence:   best.Entry.Confidence,
		Provenance:   translation.ProvenanceMemory,
	}
}

// fromContext adjusts the best approximate memory candidate against the
// request's document context. Only confident output short-circuits.
func (r *Resolver) fromContext(ctx context.Context, req *translation.Request, source, detected string) *translation.Result {
	if req.ContextID == "" {
		return nil
	}

	// The contextual tier needs a base translation to rewrite; the best
	// fuzzy memory candidate serves. No candidate means nothing to adjust.
	candidates, err := r.memory.Lookup(ctx, req.Text, source, req.TargetLang, memory.LookupOptions{Limit: 1, Context: req.Context})
	if err != nil || len(candidates) == 0 {
		return nil
	}
	base := candidates[0].Entry.Translation()

	adjusted, adjustments, confidence, err := r.docs.Adjust(ctx, req.ContextID, req.SentenceIndex, base, source, req.TargetLang)
	if err != nil {
		// Stale or missing contexts fall through to the network.
		return nil
	}
	if confidence <= r.cfg.ContextThreshold {
		return nil
	}

	return &translation.Result{
		Success:      true,
		Text:         adjusted,
		DetectedLang: detected,
		Confidence:   confidence,
		Provenance:   translation.ProvenanceContextual,
		Adjustments:  adjustments,
	}
}

// fromNetwork resolves through the request manager. A definitive failure
// result means fall through; nil from this tier never happens on success.
func (r *Resolver) fromNetwork(ctx context.Context, req *translation.Request, source, detected string) *translation.Result {
	netReq := *req
	netReq.SourceLang = source

	result, err := r.manager.Resolve(ctx, &netReq)
	if err != nil {
		log.Printf("resolver: network tier cancelled for %s: %v", req.ID, err)
		return nil
	}
	if !result.Success {
		return nil
	}

	r.rememberAsync(req, source, result.Text)
	if result.DetectedLang == "" && detected != "" {
		// Deduped waiters share the result object; copy before annotating.
		annotated := *result
		annotated.DetectedLang = detected
		return &annotated
	}
	return result
}

// fromOffline runs the offline chain after the network gave up.
func (r *Resolver) fromOffline(ctx context.Context, req *translation.Request, source, detected string) *translation.Result {
	offResult, err := r.offline.Resolve(req.Text, source, req.TargetLang)
	if err != nil {
		return nil
	}

	r.rememberAsync(req, source, offResult.Text)
	return &translation.Result{
		Success:      true,
		Text:         offResult.Text,
		DetectedLang: detected,
		Confidence:   offResult.Confidence,
		Provenance:   translation.ProvenanceOffline,
	}
}

// rememberAsync writes a successful resolution back to memory without
// blocking the request.
func (r *Resolver) rememberAsync(req *translation.Request, source, translated string) {
	text := req.Text
	target := req.TargetLang
	contextID := req.ContextID
	r.async(func(ctx context.Context) {
		opts := memory.RememberOptions{}
		if contextID != "" {
			if doc, err := r.docs.Get(ctx, contextID); err == nil {
				opts.Domain = string(doc.Domain)
			}
		}
		if _, err := r.memory.Remember(ctx, text, translated, source, target, opts); err != nil {
			log.Printf("resolver: write-back: %v", err)
		}
	})
}

func (r *Resolver) async(fn func(context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteBackTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until all pending write-backs finish. Used at shutdown and
// by tests.
func (r *Resolver) Wait() {
	r.wg.Wait()
}
