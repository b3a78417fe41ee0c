package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/omaradly/transmem/internal/docctx"
	"github.com/omaradly/transmem/internal/memory"
	"github.com/omaradly/transmem/internal/translation"
)

// registerRoutes mounts the JSON API.
func (s *Server) registerRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/translate", s.handleTranslate)
		r.Get("/detect", s.handleDetect)
		r.Post("/feedback", s.handleFeedback)
		r.Post("/context", s.handleBuildContext)
		r.Post("/context/{id}/terms", s.handleAddTerm)
		r.Get("/memory/export", s.handleExport)
		r.Post("/memory/import", s.handleImport)
	})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, `{"error":"text is required"}`, http.StatusBadRequest)
		return
	}
	if req.TargetLang == "" {
		http.Error(w, `{"error":"target_lang is required"}`, http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	result := s.resolver.Translate(r.Context(), &req)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		http.Error(w, `{"error":"text parameter is required"}`, http.StatusBadRequest)
		return
	}

	lang, confidence := s.offline.Detect(text)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"lang":       lang,
		"confidence": confidence,
	})
}

type feedbackRequest struct {
	EntryID    string `json:"entry_id"`
	Rating     int    `json:"rating"`
	Correction string `json:"correction,omitempty"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.EntryID == "" {
		http.Error(w, `{"error":"entry_id is required"}`, http.StatusBadRequest)
		return
	}

	if err := s.memory.Feedback(r.Context(), req.EntryID, req.Rating, req.Correction); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type buildContextRequest struct {
	ID        string   `json:"id"`
	Title     string   `json:"title,omitempty"`
	Sentences []string `json:"sentences"`
	Domain    string   `json:"domain,omitempty"`
	Tone      string   `json:"tone,omitempty"`
}

func (s *Server) handleBuildContext(w http.ResponseWriter, r *http.Request) {
	var req buildContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if len(req.Sentences) == 0 {
		http.Error(w, `{"error":"sentences are required"}`, http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	doc, err := s.docs.Build(r.Context(), req.ID, req.Sentences, docctx.Metadata{
		Title:  req.Title,
		Domain: docctx.Domain(req.Domain),
		Tone:   docctx.Tone(req.Tone),
	})
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

type addTermRequest struct {
	Term      string `json:"term"`
	Canonical string `json:"canonical"`
}

func (s *Server) handleAddTerm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req addTermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Term == "" || req.Canonical == "" {
		http.Error(w, `{"error":"term and canonical are required"}`, http.StatusBadRequest)
		return
	}

	if err := s.docs.AddTerm(r.Context(), id, req.Term, req.Canonical); err != nil {
		status := http.StatusInternalServerError
		if translation.KindOf(err) == translation.KindContextNotFound {
			status = http.StatusNotFound
		}
		http.Error(w, `{"error":"`+err.Error()+`"}`, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	dump, err := s.memory.Export(r.Context())
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="transmem-export.json"`)
	json.NewEncoder(w).Encode(dump)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var dump memory.Dump
	if err := json.NewDecoder(r.Body).Decode(&dump); err != nil {
		http.Error(w, `{"error":"invalid dump"}`, http.StatusBadRequest)
		return
	}

	imported, err := s.memory.Import(r.Context(), &dump)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"imported": imported})
}
