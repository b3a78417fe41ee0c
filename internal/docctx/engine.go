// Package docctx builds per-document sentence graphs and rewrites base
// translations for pronoun, terminology, tone, and cultural consistency.
// All "analysis" is regex heuristics over surface cues.
package docctx

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/omaradly/transmem/internal/db"
	"github.com/omaradly/transmem/internal/translation"
)

// DefaultMaxAge is how long a document context stays usable.
const DefaultMaxAge = 24 * time.Hour

// Engine manages document contexts: build, retrieval, terminology growth,
// and age-based garbage collection. Contexts are cached in memory and
// persisted so a daemon restart does not lose open documents.
type Engine struct {
	db     *db.DB
	maxAge time.Duration

	mu    sync.RWMutex
	cache map[string]*DocumentContext
}

// NewEngine creates a context engine. maxAge <= 0 uses DefaultMaxAge.
func NewEngine(database *db.DB, maxAge time.Duration) *Engine {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Engine{
		db:     database,
		maxAge: maxAge,
		cache:  make(map[string]*DocumentContext),
	}
}

// Build analyzes sentences into a DocumentContext, persists it, and
// caches it. Rebuilding an existing id replaces the old context.
func (e *Engine) Build(ctx context.Context, id string, sentences []string, meta Metadata) (*DocumentContext, error) {
	doc := BuildContext(id, sentences, meta)
	doc.CreatedAt = time.Now().UTC()

	if err := e.persist(ctx, doc); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[id] = doc
	e.mu.Unlock()
	return doc, nil
}

// Get returns the context for id. An expired context is treated as a miss
// and purged in the background.
func (e *Engine) Get(ctx context.Context, id string) (*DocumentContext, error) {
	e.mu.RLock()
	doc, ok := e.cache[id]
	e.mu.RUnlock()

	if !ok {
		var err error
		doc, err = e.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			e.mu.Lock()
			e.cache[id] = doc
			e.mu.Unlock()
		}
	}

	if doc == nil {
		return nil, translation.NewError(translation.KindContextNotFound, fmt.Sprintf("no document context %q", id))
	}
	if time.Since(doc.CreatedAt) > e.maxAge {
		go e.purge(id)
		return nil, translation.NewError(translation.KindContextNotFound, fmt.Sprintf("document context %q expired", id))
	}
	return doc, nil
}

// AddTerm records a document-global canonical translation for a term.
// The terminology map is the only mutable part of a built context.
func (e *Engine) AddTerm(ctx context.Context, id, term, canonical string) error {
	doc, err := e.Get(ctx, id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	doc.Terminology[term] = canonical
	terminology, merr := json.Marshal(doc.Terminology)
	e.mu.Unlock()
	if merr != nil {
		return fmt.Errorf("marshalling terminology: %w", merr)
	}

	_, err = e.db.ExecContext(ctx, `UPDATE document_contexts SET terminology = ? WHERE id = ?`, string(terminology), id)
	if err != nil {
		return fmt.Errorf("saving terminology: %w", err)
	}
	return nil
}

// GC deletes contexts older than maxAge. Range scan on the created_at
// index; safe to run while lookups proceed.
func (e *Engine) GC(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-e.maxAge).UTC().Format(time.DateTime)
	res, err := e.db.ExecContext(ctx, `DELETE FROM document_contexts WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("context gc: %w", err)
	}
	n, _ := res.RowsAffected()

	e.mu.Lock()
	for id, doc := range e.cache {
		if time.Since(doc.CreatedAt) > e.maxAge {
			delete(e.cache, id)
		}
	}
	e.mu.Unlock()
	return int(n), nil
}

func (e *Engine) purge(id string) {
	e.mu.Lock()
	delete(e.cache, id)
	e.mu.Unlock()
	if _, err := e.db.Exec(`DELETE FROM document_contexts WHERE id = ?`, id); err != nil {
		log.Printf("docctx: purging expired context %s: %v", id, err)
	}
}

func (e *Engine) persist(ctx context.Context, doc *DocumentContext) error {
	terminology, err := json.Marshal(doc.Terminology)
	if err != nil {
		return fmt.Errorf("marshalling terminology: %w", err)
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting context tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO document_contexts (id, title, domain, tone, terminology, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, domain = excluded.domain,
			tone = excluded.tone, terminology = excluded.terminology,
			created_at = excluded.created_at`,
		doc.ID, doc.Title, string(doc.Domain), string(doc.Tone),
		string(terminology), doc.CreatedAt.Format(time.DateTime))
	if err != nil {
		return fmt.Errorf("saving context: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sentences WHERE context_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("clearing sentences: %w", err)
	}
	for _, s := range doc.Sentences {
		deps, err := json.Marshal(s.Dependencies)
		if err != nil {
			return fmt.Errorf("marshalling dependencies: %w", err)
		}
		rels, err := json.Marshal(s.Relations)
		if err != nil {
			return fmt.Errorf("marshalling relations: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sentences (context_id, id, position, text, dependencies, relations)
			VALUES (?, ?, ?, ?, ?, ?)`,
			doc.ID, s.ID, s.Position, s.Text, string(deps), string(rels))
		if err != nil {
			return fmt.Errorf("saving sentence %s: %w", s.ID, err)
		}
	}
	return tx.Commit()
}

func (e *Engine) load(ctx context.Context, id string) (*DocumentContext, error) {
	var doc DocumentContext
	var terminology string
	// The sqlite driver parses DATETIME columns into time.Time, so scan
	// created_at directly rather than through an intermediate string.
	err := e.db.QueryRowContext(ctx, `
		SELECT id, title, domain, tone, terminology, created_at
		FROM document_contexts WHERE id = ?`, id).
		Scan(&doc.ID, &doc.Title, (*string)(&doc.Domain), (*string)(&doc.Tone), &terminology, &doc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading context: %w", err)
	}
	if err := json.Unmarshal([]byte(terminology), &doc.Terminology); err != nil {
		return nil, fmt.Errorf("parsing terminology: %w", err)
	}
	if doc.Terminology == nil {
		doc.Terminology = make(map[string]string)
	}

	rows, err := e.db.QueryContext(ctx, `
		SELECT id, position, text, dependencies, relations
		FROM sentences WHERE context_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("loading sentences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s Sentence
		var deps, rels string
		if err := rows.Scan(&s.ID, &s.Position, &s.Text, &deps, &rels); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(deps), &s.Dependencies); err != nil {
			return nil, fmt.Errorf("parsing dependencies: %w", err)
		}
		if err := json.Unmarshal([]byte(rels), &s.Relations); err != nil {
			return nil, fmt.Errorf("parsing relations: %w", err)
		}
		doc.Sentences = append(doc.Sentences, s)
	}
	return &doc, rows.Err()
}
