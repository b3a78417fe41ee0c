// Package memory implements the persistent translation memory: exact
// content-addressed recall, fuzzy recall over a language pair, usage and
// confidence bookkeeping, user feedback, and the retention sweep.
package memory

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/omaradly/transmem/internal/db"
	"github.com/omaradly/transmem/internal/fuzzy"
)

// Options holds the heuristic scoring constants. They are tunables, not
// contracts; config supplies them.
type Options struct {
	MinConfidence     float64 // exact hits below this also trigger a fuzzy scan
	SimilarityFloor   float64 // fuzzy candidates below this are discarded
	ConfidenceStep    float64 // nudge applied per repeated use
	DefaultConfidence float64 // initial confidence for new entries
	DefaultLimit      int     // max candidates returned by Lookup
}

// DefaultOptions returns the stock scoring constants.
func DefaultOptions() Options {
	return Options{
		MinConfidence:     0.5,
		SimilarityFloor:   0.3,
		ConfidenceStep:    0.1,
		DefaultConfidence: 0.5,
		DefaultLimit:      10,
	}
}

// Store is the translation memory over the shared SQLite database.
type Store struct {
	db   *db.DB
	opts Options
}

// NewStore creates a translation memory store.
func NewStore(database *db.DB, opts Options) *Store {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	return &Store{db: database, opts: opts}
}

// ContentAddress derives the stable entry id for a (text, source, target)
// triple. Identical inputs always address the same entry.
func ContentAddress(text, source, target string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	sum := sha256.Sum256([]byte(normalized + "|" + source + "|" + target))
	return hex.EncodeToString(sum[:16])
}

// Lookup returns ranked candidates for text. An exact content-addressed
// hit at or above MinConfidence short-circuits; otherwise all entries for
// the language pair are fuzzy-scored and ranked.
func (s *Store) Lookup(ctx context.Context, text, source, target string, opts LookupOptions) ([]Candidate, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}

	var candidates []Candidate

	exact, err := s.Get(ctx, ContentAddress(text, source, target))
	if err != nil {
		return nil, err
	}
	if exact != nil && (opts.Domain == "" || exact.Domain == opts.Domain) {
		candidates = append(candidates, Candidate{Entry: *exact, Score: 1.0, Exact: true})
		if exact.Confidence >= s.opts.MinConfidence {
			return candidates, nil
		}
	}

	entries, err := s.entriesForPair(ctx, source, target)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if exact != nil && e.ID == exact.ID {
			continue
		}
		if opts.Domain != "" && e.Domain != opts.Domain {
			continue
		}
		score := fuzzy.Similarity(text, e.SourceText) * s.contextFactor(opts.Context, &e)
		if score > 1.0 {
			score = 1.0
		}
		if score < s.opts.SimilarityFloor {
			continue
		}
		candidates = append(candidates, Candidate{Entry: e, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Exact != candidates[j].Exact {
			return candidates[i].Exact
		}
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// contextFactor boosts entries whose stored source text shares vocabulary
// with the caller's disambiguation excerpt.
func (s *Store) contextFactor(excerpt string, e *Entry) float64 {
	if excerpt == "" {
		return 1.0
	}
	return 1.0 + 0.1*fuzzy.Jaccard(excerpt, e.SourceText)
}

// Remember stores a translation, idempotently by content address: a repeat
// call bumps use_count, touches last_used, and nudges confidence up one
// step capped at 1.0 instead of inserting a duplicate.
func (s *Store) Remember(ctx context.Context, text, translation, source, target string, opts RememberOptions) (string, error) {
	id := ContentAddress(text, source, target)

	confidence := opts.Confidence
	if confidence <= 0 {
		confidence = s.opts.DefaultConfidence
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	domain := opts.Domain
	if domain == "" {
		domain = "general"
	}
	tags, err := json.Marshal(opts.Tags)
	if err != nil {
		return "", fmt.Errorf("marshalling tags: %w", err)
	}
	if opts.Tags == nil {
		tags = []byte("[]")
	}

	now := time.Now().UTC().Format(time.DateTime)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memory_entries (id, source_text, target_text, source_lang, target_lang, created_at, last_used, use_count, confidence, domain, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			use_count = use_count + 1,
			last_used = MAX(last_used, excluded.last_used),
			confidence = MIN(1.0, confidence + ?)`,
		id, text, translation, source, target, now, now, confidence, domain, string(tags),
		s.opts.ConfidenceStep,
	)
	if err != nil {
		return "", fmt.Errorf("remembering translation: %w", err)
	}
	return id, nil
}

// Feedback applies a user rating (1-5, 3 neutral) and optional correction
// to an entry. Rating 4+ on short phrases promotes the pair into the
// custom terms preference map.
func (s *Store) Feedback(ctx context.Context, id string, rating int, correction string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be 1-5, got %d", rating)
	}

	entry, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("no memory entry with id %s", id)
	}

	confidence := clamp01(entry.Confidence + float64(rating-3)*0.1)

	if correction != "" {
		if confidence < 0.8 {
			confidence = 0.8
		}
		_, err = s.db.ExecContext(ctx, `
			UPDATE memory_entries
			SET user_rating = ?, confidence = ?, correction = ?, target_text = ?
			WHERE id = ?`,
			rating, confidence, correction, correction, id)
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE memory_entries SET user_rating = ?, confidence = ? WHERE id = ?`,
			rating, confidence, id)
	}
	if err != nil {
		return fmt.Errorf("applying feedback: %w", err)
	}

	if rating >= 4 && len(strings.Fields(entry.SourceText)) <= 3 {
		translation := entry.TargetText
		if correction != "" {
			translation = correction
		}
		if err := s.PutCustomTerm(ctx, entry.SourceLang, entry.TargetLang, entry.SourceText, translation); err != nil {
			return err
		}
	}
	return nil
}

// Get fetches an entry by id, returning nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, selectEntry+" WHERE id = ?", id)
	return scanEntry(row)
}

// Touch records a memory hit: use_count++ and last_used = now. It never
// decreases last_used.
func (s *Store) Touch(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.DateTime)
	_, err := s.db.ExecContext(ctx, `
		UPDATE memory_entries
		SET use_count = use_count + 1, last_used = MAX(last_used, ?)
		WHERE id = ?`, now, id)
	if err != nil {
		return fmt.Errorf("touching entry: %w", err)
	}
	return nil
}

// CustomTerm consults the user preference map. Only short phrases (at
// most 3 words) are eligible, matching how terms get promoted.
func (s *Store) CustomTerm(ctx context.Context, text, source, target string) (string, bool, error) {
	if len(strings.Fields(text)) > 3 {
		return "", false, nil
	}
	var translation string
	err := s.db.QueryRowContext(ctx, `
		SELECT translation FROM custom_terms
		WHERE source_lang = ? AND target_lang = ? AND term = ?`,
		source, target, strings.TrimSpace(text)).Scan(&translation)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up custom term: %w", err)
	}
	return translation, true, nil
}

// PutCustomTerm upserts a user preference.
func (s *Store) PutCustomTerm(ctx context.Context, source, target, term, translation string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO custom_terms (source_lang, target_lang, term, translation)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_lang, target_lang, term) DO UPDATE SET translation = excluded.translation`,
		source, target, strings.TrimSpace(term), translation)
	if err != nil {
		return fmt.Errorf("storing custom term: %w", err)
	}
	return nil
}

// Sweep purges entries created before cutoff that were used fewer than
// minUseCount times. It is a range scan on the created_at index and runs
// out-of-band from lookups.
func (s *Store) Sweep(ctx context.Context, cutoff time.Time, minUseCount int) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM memory_entries
		WHERE created_at < ? AND use_count < ?`,
		cutoff.UTC().Format(time.DateTime), minUseCount)
	if err != nil {
		return 0, fmt.Errorf("retention sweep: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Store) entriesForPair(ctx context.Context, source, target string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectEntry+" WHERE source_lang = ? AND target_lang = ?", source, target)
	if err != nil {
		return nil, fmt.Errorf("scanning language pair: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntryRows(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

const selectEntry = `
	SELECT id, source_text, target_text, source_lang, target_lang,
	       created_at, last_used, use_count, confidence, user_rating,
	       domain, tags, correction
	FROM memory_entries`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row *sql.Row) (*Entry, error) {
	e, err := scanFrom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func scanEntryRows(rows *sql.Rows) (*Entry, error) {
	return scanFrom(rows)
}

func scanFrom(r rowScanner) (*Entry, error) {
	var e Entry
	var tagsJSON string
	var rating sql.NullInt64
	var correction sql.NullString

	// The sqlite driver parses DATETIME columns into time.Time, so scan
	// them directly rather than through an intermediate string.
	err := r.Scan(&e.ID, &e.SourceText, &e.TargetText, &e.SourceLang, &e.TargetLang,
		&e.CreatedAt, &e.LastUsed, &e.UseCount, &e.Confidence, &rating,
		&e.Domain, &tagsJSON, &correction)
	if err != nil {
		return nil, err
	}
	if rating.Valid {
		v := int(rating.Int64)
		e.UserRating = &v
	}
	if correction.Valid && correction.String != "" {
		e.Correction = &correction.String
	}
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		return nil, fmt.Errorf("parsing tags: %w", err)
	}
	return &e, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
