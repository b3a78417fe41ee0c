package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/omaradly/transmem/internal/memory"
	"github.com/omaradly/transmem/internal/translation"
)

// handleTranslate resolves one translation through the full pipeline.
func (s *Server) handleTranslate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	targetLang, err := request.RequireString("target_lang")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: target_lang"), nil
	}

	req := &translation.Request{
		ID:            uuid.NewString(),
		Text:          text,
		SourceLang:    request.GetString("source_lang", "auto"),
		TargetLang:    targetLang,
		ContextID:     request.GetString("context_id", ""),
		SentenceIndex: request.GetInt("sentence_index", 0),
	}

	result := s.resolver.Translate(ctx, req)
	if !result.Success {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", result.ErrorKind, result.ErrorMessage)), nil
	}

	return mcp.NewToolResultText(formatResult(result)), nil
}

// handleMemoryLookup returns ranked memory candidates.
func (s *Server) handleMemoryLookup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	sourceLang, err := request.RequireString("source_lang")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source_lang"), nil
	}
	targetLang, err := request.RequireString("target_lang")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: target_lang"), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	candidates, err := s.memory.Lookup(ctx, text, sourceLang, targetLang, memory.LookupOptions{Limit: limit})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	if len(candidates) == 0 {
		return mcp.NewToolResultText("No memory candidates found for this text and language pair."), nil
	}

	return mcp.NewToolResultText(formatCandidates(candidates)), nil
}

// handleMemoryRemember stores one translation pair.
func (s *Server) handleMemoryRemember(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	translated, err := request.RequireString("translation")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: translation"), nil
	}
	sourceLang, err := request.RequireString("source_lang")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source_lang"), nil
	}
	targetLang, err := request.RequireString("target_lang")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: target_lang"), nil
	}

	id, err := s.memory.Remember(ctx, text, translated, sourceLang, targetLang, memory.RememberOptions{
		Domain: request.GetString("domain", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("remember failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Stored as entry %s.", id)), nil
}

// handleMemoryFeedback applies a rating and optional correction.
func (s *Server) handleMemoryFeedback(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entryID, err := request.RequireString("entry_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: entry_id"), nil
	}
	rating := request.GetInt("rating", 0)
	if rating < 1 || rating > 5 {
		return mcp.NewToolResultError("rating must be between 1 and 5"), nil
	}

	if err := s.memory.Feedback(ctx, entryID, rating, request.GetString("correction", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("feedback failed: %v", err)), nil
	}

	return mcp.NewToolResultText("Feedback recorded."), nil
}

// handleDetectLanguage guesses the language of a text.
func (s *Server) handleDetectLanguage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	lang, confidence := s.offline.Detect(text)
	if lang == "auto" {
		return mcp.NewToolResultText("Language could not be determined."), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Detected %s (confidence %.0f%%).", lang, confidence*100)), nil
}

// formatResult renders a pipeline result for agent consumption.
func formatResult(result *translation.Result) string {
	var sb strings.Builder
	sb.WriteString(result.Text)
	sb.WriteString(fmt.Sprintf("\n\nProvenance: %s\nConfidence: %.0f%%\n", result.Provenance, result.Confidence*100))
	if result.DetectedLang != "" {
		sb.WriteString(fmt.Sprintf("Detected language: %s\n", result.DetectedLang))
	}
	for _, adj := range result.Adjustments {
		sb.WriteString(fmt.Sprintf("Adjustment (%s): %q -> %q\n", adj.Type, adj.Original, adj.Adjusted))
	}
	if len(result.Alternatives) > 0 {
		sb.WriteString("Alternatives: " + strings.Join(result.Alternatives, "; ") + "\n")
	}
	return sb.String()
}

// formatCandidates renders ranked memory candidates.
func formatCandidates(candidates []memory.Candidate) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d candidate(s):\n", len(candidates)))

	for i, c := range candidates {
		sb.WriteString(fmt.Sprintf("\n--- Candidate %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Entry: %s\n", c.Entry.ID))
		sb.WriteString(fmt.Sprintf("Source: %s\n", c.Entry.SourceText))
		sb.WriteString(fmt.Sprintf("Translation: %s\n", c.Entry.Translation()))
		if c.Exact {
			sb.WriteString("Match: exact\n")
		} else {
			sb.WriteString(fmt.Sprintf("Match: %.1f%% similar\n", c.Score*100))
		}
		sb.WriteString(fmt.Sprintf("Confidence: %.0f%%, used %d time(s)\n", c.Entry.Confidence*100, c.Entry.UseCount))
		if c.Entry.Domain != "" && c.Entry.Domain != "general" {
			sb.WriteString(fmt.Sprintf("Domain: %s\n", c.Entry.Domain))
		}
	}

	return sb.String()
}
