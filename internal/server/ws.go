package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/omaradly/transmem/internal/docctx"
	"github.com/omaradly/transmem/internal/translation"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The CORS middleware already constrains browser origins; the
	// websocket endpoint accepts whatever made it through.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// envelope is the websocket wire frame, both directions.
type envelope struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const wsCallTimeout = 30 * time.Second

// handleWebsocket runs one editor session: a stream of envelopes, each
// answered with a result or error envelope carrying the same id.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		var msg envelope
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		// The request context carries the router's 60s timeout; sessions
		// outlive it, so each dispatch gets its own deadline.
		reply := s.dispatch(context.Background(), &msg)
		if err := conn.WriteJSON(reply); err != nil {
			log.Printf("server: websocket write: %v", err)
			return
		}
	}
}

// dispatch routes one envelope to the pipeline.
func (s *Server) dispatch(ctx context.Context, msg *envelope) *envelope {
	ctx, cancel := context.WithTimeout(ctx, wsCallTimeout)
	defer cancel()

	switch msg.Type {
	case "translate":
		var req translation.Request
		if err := json.Unmarshal(msg.Payload, &req); err != nil || req.Text == "" || req.TargetLang == "" {
			return errorEnvelope(msg.ID, translation.KindHandlerError, "translate needs text and target_lang")
		}
		if req.ID == "" {
			req.ID = msg.ID
		}
		return resultEnvelope(msg.ID, s.resolver.Translate(ctx, &req))

	case "build_context":
		var req buildContextRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil || req.ID == "" || len(req.Sentences) == 0 {
			return errorEnvelope(msg.ID, translation.KindHandlerError, "build_context needs id and sentences")
		}
		doc, err := s.docs.Build(ctx, req.ID, req.Sentences, docctx.Metadata{
			Title:  req.Title,
			Domain: docctx.Domain(req.Domain),
			Tone:   docctx.Tone(req.Tone),
		})
		if err != nil {
			return errorEnvelope(msg.ID, translation.KindOf(err), err.Error())
		}
		return jsonEnvelope("context", msg.ID, doc)

	case "feedback":
		var req feedbackRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil || req.EntryID == "" {
			return errorEnvelope(msg.ID, translation.KindHandlerError, "feedback needs entry_id")
		}
		if err := s.memory.Feedback(ctx, req.EntryID, req.Rating, req.Correction); err != nil {
			return errorEnvelope(msg.ID, translation.KindOf(err), err.Error())
		}
		return jsonEnvelope("ok", msg.ID, map[string]string{"status": "ok"})

	case "ping":
		return &envelope{Type: "pong", ID: msg.ID}

	default:
		return errorEnvelope(msg.ID, translation.KindUnknownMessageType,
			"unknown message type "+msg.Type)
	}
}

func resultEnvelope(id string, result *translation.Result) *envelope {
	return jsonEnvelope("result", id, result)
}

func errorEnvelope(id string, kind translation.ErrorKind, message string) *envelope {
	return jsonEnvelope("error", id, map[string]string{
		"kind":    string(kind),
		"message": message,
	})
}

func jsonEnvelope(typ, id string, payload any) *envelope {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(`{"kind":"HANDLER_ERROR","message":"encoding reply"}`)
		typ = "error"
	}
	return &envelope{Type: typ, ID: id, Payload: data}
}
