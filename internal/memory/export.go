package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Export dumps every entry and preference as a self-contained document.
func (s *Store) Export(ctx context.Context) (*Dump, error) {
	rows, err := s.db.QueryContext(ctx, selectEntry+" ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("exporting entries: %w", err)
	}
	defer rows.Close()

	dump := &Dump{
		Version:    DumpVersion,
		ExportDate: time.Now().UTC(),
		Entries:    []Entry{},
	}
	for rows.Next() {
		e, err := scanEntryRows(rows)
		if err != nil {
			return nil, err
		}
		dump.Entries = append(dump.Entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	terms, err := s.db.QueryContext(ctx, `
		SELECT source_lang, target_lang, term, translation, created_at
		FROM custom_terms ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("exporting preferences: %w", err)
	}
	defer terms.Close()

	dump.Preferences = []CustomTerm{}
	for terms.Next() {
		var t CustomTerm
		if err := terms.Scan(&t.SourceLang, &t.TargetLang, &t.Term, &t.Translation, &t.CreatedAt); err != nil {
			return nil, err
		}
		dump.Preferences = append(dump.Preferences, t)
	}
	return dump, terms.Err()
}

// Import merges a dump into the store. Entries merge by content address:
// an existing entry keeps its identity and absorbs the higher use count
// and confidence; nothing is ever duplicated.
func (s *Store) Import(ctx context.Context, dump *Dump) (int, error) {
	if dump.Version > DumpVersion {
		return 0, fmt.Errorf("unsupported export version %d", dump.Version)
	}

	merged := 0
	for _, e := range dump.Entries {
		id := e.ID
		if id == "" {
			id = ContentAddress(e.SourceText, e.SourceLang, e.TargetLang)
		}
		tags := "[]"
		if len(e.Tags) > 0 {
			raw, err := json.Marshal(e.Tags)
			if err != nil {
				return merged, fmt.Errorf("marshalling tags: %w", err)
			}
			tags = string(raw)
		}
		var correction any
		if e.Correction != nil {
			correction = *e.Correction
		}
		domain := e.Domain
		if domain == "" {
			domain = "general"
		}
		useCount := e.UseCount
		if useCount < 1 {
			useCount = 1
		}

		_, err := s.db.ExecContext(ctx, `
			INSERT INTO memory_entries (id, source_text, target_text, source_lang, target_lang, created_at, last_used, use_count, confidence, domain, tags, correction)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				use_count = MAX(use_count, excluded.use_count),
				confidence = MAX(confidence, excluded.confidence),
				last_used = MAX(last_used, excluded.last_used)`,
			id, e.SourceText, e.TargetText, e.SourceLang, e.TargetLang,
			formatTime(e.CreatedAt), formatTime(e.LastUsed),
			useCount, clamp01(e.Confidence), domain, tags, correction)
		if err != nil {
			return merged, fmt.Errorf("importing entry %s: %w", id, err)
		}
		merged++
	}

	for _, t := range dump.Preferences {
		if err := s.PutCustomTerm(ctx, t.SourceLang, t.TargetLang, t.Term, t.Translation); err != nil {
			return merged, err
		}
	}
	return merged, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.DateTime)
}
