// Package document translates whole markdown documents: prose segments
// flow through the resolution pipeline with a shared document context,
// while code blocks, inline code, and URLs pass through untouched.
package document

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/omaradly/transmem/internal/docctx"
	"github.com/omaradly/transmem/internal/progress"
	"github.com/omaradly/transmem/internal/resolver"
	"github.com/omaradly/transmem/internal/translation"
)

// Translator renders a translated copy of a markdown document.
type Translator struct {
	resolver *resolver.Resolver
	docs     *docctx.Engine
	reporter progress.Reporter
}

// New creates a document translator. A nil reporter is silent.
func New(res *resolver.Resolver, docs *docctx.Engine, reporter progress.Reporter) *Translator {
	if reporter == nil {
		reporter = progress.Silent{}
	}
	return &Translator{resolver: res, docs: docs, reporter: reporter}
}

// segment is one translatable byte span of the source document.
type segment struct {
	start int
	stop  int
	text  string
}

var urlOnly = regexp.MustCompile(`^https?://\S+$`)

// TranslateMarkdown translates the prose of a markdown document from
// sourceLang to targetLang, preserving all structure.
func (t *Translator) TranslateMarkdown(ctx context.Context, source []byte, sourceLang, targetLang string) ([]byte, error) {
	segments, err := collectSegments(source)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return append([]byte(nil), source...), nil
	}

	// All segments share one document context so pronouns, terminology,
	// and tone stay consistent across the document.
	contextID := "doc_" + uuid.NewString()
	sentences := make([]string, len(segments))
	for i, seg := range segments {
		sentences[i] = seg.text
	}
	if _, err := t.docs.Build(ctx, contextID, sentences, docctx.Metadata{}); err != nil {
		return nil, fmt.Errorf("building document context: %w", err)
	}

	t.reporter.Start(len(segments))
	defer t.reporter.Finish()

	var out bytes.Buffer
	last := 0
	for i, seg := range segments {
		t.reporter.Update(i+1, preview(seg.text))

		result := t.resolver.Translate(ctx, &translation.Request{
			ID:            uuid.NewString(),
			Text:          seg.text,
			SourceLang:    sourceLang,
			TargetLang:    targetLang,
			ContextID:     contextID,
			SentenceIndex: i,
		})

		out.Write(source[last:seg.start])
		if result.Success && result.Text != "" {
			out.WriteString(result.Text)
		} else {
			// A failed segment stays in the source language rather than
			// aborting the whole document.
			out.WriteString(seg.text)
		}
		last = seg.stop
	}
	out.Write(source[last:])

	return out.Bytes(), nil
}

// collectSegments walks the markdown AST and gathers the prose spans.
// Code blocks, inline code, raw HTML, autolinks, and bare URLs are left
// out so they survive translation byte for byte.
func collectSegments(source []byte) ([]segment, error) {
	doc := goldmark.New().Parser().Parse(gtext.NewReader(source))

	var segments []segment
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindCodeBlock, ast.KindFencedCodeBlock, ast.KindHTMLBlock,
			ast.KindCodeSpan, ast.KindAutoLink, ast.KindRawHTML:
			return ast.WalkSkipChildren, nil
		}

		text, ok := n.(*ast.Text)
		if !ok {
			return ast.WalkContinue, nil
		}
		seg := text.Segment
		raw := string(source[seg.Start:seg.Stop])
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || urlOnly.MatchString(trimmed) {
			return ast.WalkContinue, nil
		}

		// Translate only the trimmed core so surrounding whitespace and
		// markdown markers stay put.
		lead := strings.Index(raw, trimmed)
		segments = append(segments, segment{
			start: seg.Start + lead,
			stop:  seg.Start + lead + len(trimmed),
			text:  trimmed,
		})
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking markdown: %w", err)
	}
	return segments, nil
}

// preview shortens a segment for progress display.
func preview(text string) string {
	const max = 40
	if len(text) <= max {
		return text
	}
	return text[:max] + "…"
}
