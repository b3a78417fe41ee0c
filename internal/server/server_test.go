package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/omaradly/transmem/internal/backend"
	"github.com/omaradly/transmem/internal/db"
	"github.com/omaradly/transmem/internal/docctx"
	"github.com/omaradly/transmem/internal/lexicon"
	"github.com/omaradly/transmem/internal/memory"
	"github.com/omaradly/transmem/internal/offline"
	"github.com/omaradly/transmem/internal/request"
	"github.com/omaradly/transmem/internal/resolver"
	"github.com/omaradly/transmem/internal/translation"
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

func setupServer(t *testing.T) (*Server, *memory.Store, *docctx.Engine) {
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

	return New(Config{AllowAll: true}, res, mem, docs, off), mem, docs
}

func TestHealthCheck(t *testing.T) {
	srv, _, _ := setupServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv, _, _ := setupServer(t)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func postJSON(t *testing.T, srv *Server, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestTranslateFromMemory(t *testing.T) {
	srv, mem, _ := setupServer(t)

	if _, err := mem.Remember(context.Background(), "hello", "你好", "en", "zh",
		memory.RememberOptions{Confidence: 0.95}); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	w := postJSON(t, srv, "/api/translate", map[string]any{
		"text": "hello", "source_lang": "en", "target_lang": "zh",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result translation.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !result.Success || result.Text != "你好" {
		t.Errorf("result = %+v", result)
	}
	if result.Provenance != translation.ProvenanceMemory {
		t.Errorf("provenance = %q, want memory", result.Provenance)
	}
}

func TestTranslateValidation(t *testing.T) {
	srv, _, _ := setupServer(t)

	w := postJSON(t, srv, "/api/translate", map[string]any{"target_lang": "zh"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing text: expected 400, got %d", w.Code)
	}

	w = postJSON(t, srv, "/api/translate", map[string]any{"text": "hello"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing target_lang: expected 400, got %d", w.Code)
	}
}

func TestDetectEndpoint(t *testing.T) {
	srv, _, _ := setupServer(t)

	req := httptest.NewRequest("GET", "/api/detect?text="+
		strings.ReplaceAll("这是中文", " ", "%20"), nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Lang       string  `json:"lang"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Lang != "zh" {
		t.Errorf("lang = %q, want zh", body.Lang)
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	srv, mem, _ := setupServer(t)
	ctx := context.Background()

	id, err := mem.Remember(ctx, "hello", "你好", "en", "zh", memory.RememberOptions{})
	if err != nil {
		t.Fatalf("Remember: %v", err)
	}

	w := postJSON(t, srv, "/api/feedback", feedbackRequest{EntryID: id, Rating: 5})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	entry, err := mem.Get(ctx, id)
	if err != nil || entry == nil {
		t.Fatalf("Get: entry=%v err=%v", entry, err)
	}
	if entry.UserRating == nil || *entry.UserRating != 5 {
		t.Errorf("rating not recorded: %+v", entry)
	}

	w = postJSON(t, srv, "/api/feedback", feedbackRequest{EntryID: "missing", Rating: 5})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown entry: expected 400, got %d", w.Code)
	}
}

func TestContextEndpoints(t *testing.T) {
	srv, _, _ := setupServer(t)

	w := postJSON(t, srv, "/api/context", buildContextRequest{
		ID:        "doc1",
		Sentences: []string{"The server restarted.", "It is healthy now."},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("build: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var doc docctx.DocumentContext
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Sentences) != 2 {
		t.Errorf("sentences = %d, want 2", len(doc.Sentences))
	}

	w = postJSON(t, srv, "/api/context/doc1/terms", addTermRequest{Term: "server", Canonical: "服务器"})
	if w.Code != http.StatusOK {
		t.Errorf("add term: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = postJSON(t, srv, "/api/context/ghost/terms", addTermRequest{Term: "a", Canonical: "b"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown context: expected 404, got %d", w.Code)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	srv, mem, _ := setupServer(t)
	ctx := context.Background()

	if _, err := mem.Remember(ctx, "hello", "你好", "en", "zh", memory.RememberOptions{}); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/memory/export", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", w.Code)
	}

	// Import the dump into a second, empty daemon.
	srv2, mem2, _ := setupServer(t)
	req = httptest.NewRequest("POST", "/api/memory/import", bytes.NewReader(w.Body.Bytes()))
	w2 := httptest.NewRecorder()
	srv2.Router().ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("import: expected 200, got %d: %s", w2.Code, w2.Body.String())
	}

	entry, err := mem2.Get(ctx, memory.ContentAddress("hello", "en", "zh"))
	if err != nil || entry == nil {
		t.Fatalf("imported entry missing: entry=%v err=%v", entry, err)
	}
}

func dialWS(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebsocketTranslate(t *testing.T) {
	srv, mem, _ := setupServer(t)
	if _, err := mem.Remember(context.Background(), "hello", "你好", "en", "zh",
		memory.RememberOptions{Confidence: 0.95}); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	conn := dialWS(t, srv)

	payload, _ := json.Marshal(map[string]any{
		"text": "hello", "source_lang": "en", "target_lang": "zh",
	})
	if err := conn.WriteJSON(envelope{Type: "translate", ID: "m1", Payload: payload}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var reply envelope
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Type != "result" || reply.ID != "m1" {
		t.Fatalf("reply = %+v", reply)
	}
	var result translation.Result
	if err := json.Unmarshal(reply.Payload, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Text != "你好" {
		t.Errorf("text = %q, want 你好", result.Text)
	}
}

func TestWebsocketUnknownType(t *testing.T) {
	srv, _, _ := setupServer(t)
	conn := dialWS(t, srv)

	if err := conn.WriteJSON(envelope{Type: "teleport", ID: "m1"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var reply envelope
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Type != "error" {
		t.Fatalf("reply = %+v, want error envelope", reply)
	}
	var body map[string]string
	if err := json.Unmarshal(reply.Payload, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["kind"] != string(translation.KindUnknownMessageType) {
		t.Errorf("kind = %q, want UNKNOWN_MESSAGE_TYPE", body["kind"])
	}
}
