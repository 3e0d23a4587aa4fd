// Package server exposes the augmentation extension to a chat host over
// HTTP. Each session owns its own prompt slots and cached search result.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/EmerJK/emertxthn/config"
	"github.com/EmerJK/emertxthn/internal/adapter/events"
	"github.com/EmerJK/emertxthn/internal/adapter/notify"
	"github.com/EmerJK/emertxthn/internal/adapter/prompt"
	"github.com/EmerJK/emertxthn/internal/adapter/search"
	"github.com/EmerJK/emertxthn/internal/domain"
	"github.com/EmerJK/emertxthn/internal/port"
	"github.com/EmerJK/emertxthn/internal/usecase"
)

type session struct {
	augmenter *usecase.Augmenter
	slots     *prompt.Registry
	bus       *events.Bus
}

// Server is the host-facing HTTP surface.
type Server struct {
	store    port.SettingsStore
	searcher port.Searcher
	log      logrus.FieldLogger

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates a server backed by the given settings store. The search
// client timeout comes from cfg.
func New(cfg *config.Config, store port.SettingsStore, log logrus.FieldLogger) *Server {
	timeout := time.Duration(cfg.Search.TimeoutSeconds) * time.Second
	return &Server{
		store:    store,
		searcher: search.NewClient(timeout, log),
		log:      log,
		sessions: make(map[string]*session),
	}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Post("/augment", s.handleAugment)
			r.Post("/messages", s.handleMessage)
			r.Post("/clear", s.handleClear)
		})
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
	})

	return r
}

func (s *Server) newSession() (string, *session) {
	slots := prompt.NewRegistry()
	augmenter := usecase.NewAugmenter(s.store, s.searcher, slots, notify.NewLogNotifier(s.log), s.log)

	bus := events.NewBus()
	bus.Subscribe(events.MessageReceived, augmenter.OnMessageReceived)
	bus.Subscribe(events.MessageEdited, augmenter.OnMessageReceived)

	id := uuid.NewString()
	sess := &session{augmenter: augmenter, slots: slots, bus: bus}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	return id, sess
}

func (s *Server) session(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, _ := s.newSession()
	s.log.WithField("session", id).Debug("session created")
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type augmentRequest struct {
	History     []domain.Message `json:"history"`
	ContextSize int              `json:"context_size"`
	Kind        string           `json:"kind"`
}

type augmentResponse struct {
	History []domain.Message    `json:"history"`
	Prompt  string              `json:"prompt"`
	Result  domain.SearchResult `json:"result"`
}

func (s *Server) handleAugment(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req augmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind := domain.GenerationKind(req.Kind)
	if kind == "" {
		kind = domain.KindNormal
	}

	history := sess.augmenter.BeforeGeneration(r.Context(), req.History, req.ContextSize, kind)

	writeJSON(w, http.StatusOK, augmentResponse{
		History: history,
		Prompt:  sess.slots.Render(port.PositionInPrompt),
		Result:  sess.augmenter.LastResult(),
	})
}

type messageRequest struct {
	Message domain.Message `json:"message"`
	Event   string         `json:"event,omitempty"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event := events.Event(req.Event)
	if event == "" {
		event = events.MessageReceived
	}

	sess.bus.Publish(event, &req.Message)

	writeJSON(w, http.StatusOK, map[string]domain.Message{"message": req.Message})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	sess.augmenter.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Augment())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var cfg config.AugmentConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings body")
		return
	}

	if err := s.store.Update(cfg); err != nil {
		s.log.Errorf("failed to update settings: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to persist settings")
		return
	}

	writeJSON(w, http.StatusOK, s.store.Augment())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
