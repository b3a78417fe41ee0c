package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/omaradly/transmem/internal/backend"
	"github.com/omaradly/transmem/internal/db"
	"github.com/omaradly/transmem/internal/docctx"
	"github.com/omaradly/transmem/internal/lexicon"
	"github.com/omaradly/transmem/internal/memory"
	"github.com/omaradly/transmem/internal/offline"
	"github.com/omaradly/transmem/internal/request"
	"github.com/omaradly/transmem/internal/resolver"
)

type echoEndpoint struct{}

func (echoEndpoint) Name() string { return "echo" }

func (echoEndpoint) Translate(ctx context.Context, batch backend.Batch) (*backend.BatchResult, error) {
	result := &backend.BatchResult{}
	for _, s := range batch.Segments {
		result.Segments = append(result.Segments, backend.ResultSegment{ID: s.ID, Text: s.Text + "-translated"})
	}
	return result, nil
}

func setupServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	mem := memory.NewStore(database, memory.DefaultOptions())
	docs := docctx.NewEngine(database, 0)
	off := offline.NewResolver(lexicon.NewStore())

	cfg := request.DefaultConfig()
	cfg.Debounce = 5 * time.Millisecond
	manager := request.NewManager(echoEndpoint{}, cfg)

	res := resolver.New(resolver.DefaultConfig(), mem, docs, manager, off)
	t.Cleanup(res.Wait)

	return NewServer(res, mem, off), mem
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"translate", translateTool, "translate"},
		{"memory_lookup", memoryLookupTool, "memory_lookup"},
		{"memory_remember", memoryRememberTool, "memory_remember"},
		{"memory_feedback", memoryFeedbackTool, "memory_feedback"},
		{"detect_language", detectLanguageTool, "detect_language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv, _ := setupServer(t)
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
}

func TestHandleTranslate(t *testing.T) {
	srv, mem := setupServer(t)
	ctx := context.Background()

	if _, err := mem.Remember(ctx, "hello", "你好", "en", "zh",
		memory.RememberOptions{Confidence: 0.95}); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	t.Run("memory hit", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"text": "hello", "source_lang": "en", "target_lang": "zh",
		}

		result, err := srv.handleTranslate(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "你好") || !strings.Contains(text, "memory") {
			t.Errorf("result text = %q", text)
		}
	})

	t.Run("missing text", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"target_lang": "zh"}

		result, err := srv.handleTranslate(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing text")
		}
	})

	t.Run("missing target_lang", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"text": "hello"}

		result, err := srv.handleTranslate(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing target_lang")
		}
	})
}

func TestHandleMemoryLookup(t *testing.T) {
	srv, mem := setupServer(t)
	ctx := context.Background()

	if _, err := mem.Remember(ctx, "the cat sat", "猫坐着", "en", "zh", memory.RememberOptions{}); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	t.Run("fuzzy candidates", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"text": "the cat sits", "source_lang": "en", "target_lang": "zh",
		}

		result, err := srv.handleMemoryLookup(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(resultText(t, result), "猫坐着") {
			t.Errorf("result text = %q", resultText(t, result))
		}
	})

	t.Run("empty memory", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"text": "completely unrelated", "source_lang": "de", "target_lang": "ko",
		}

		result, err := srv.handleMemoryLookup(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(resultText(t, result), "No memory candidates") {
			t.Errorf("result text = %q", resultText(t, result))
		}
	})
}

func TestHandleMemoryRememberAndFeedback(t *testing.T) {
	srv, mem := setupServer(t)
	ctx := context.Background()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"text": "good night", "translation": "晚安",
		"source_lang": "en", "target_lang": "zh",
	}
	result, err := srv.handleMemoryRemember(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}

	id := memory.ContentAddress("good night", "en", "zh")
	if !strings.Contains(resultText(t, result), id) {
		t.Errorf("result should name entry %s: %q", id, resultText(t, result))
	}

	fb := mcp.CallToolRequest{}
	fb.Params.Arguments = map[string]any{"entry_id": id, "rating": 5}
	result, err = srv.handleMemoryFeedback(ctx, fb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}

	entry, err := mem.Get(ctx, id)
	if err != nil || entry == nil {
		t.Fatalf("Get: entry=%v err=%v", entry, err)
	}
	if entry.UserRating == nil || *entry.UserRating != 5 {
		t.Errorf("rating not applied: %+v", entry)
	}

	bad := mcp.CallToolRequest{}
	bad.Params.Arguments = map[string]any{"entry_id": id, "rating": 9}
	result, err = srv.handleMemoryFeedback(ctx, bad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected error for out-of-range rating")
	}
}

func TestHandleDetectLanguage(t *testing.T) {
	srv, _ := setupServer(t)
	ctx := context.Background()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"text": "这是一段中文文本"}

	result, err := srv.handleDetectLanguage(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if !strings.Contains(resultText(t, result), "zh") {
		t.Errorf("result text = %q", resultText(t, result))
	}
}

// resultText extracts the text of the first content block.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content %T is not text", result.Content[0])
	}
	return tc.Text
}
