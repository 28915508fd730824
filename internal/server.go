package internal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const sessionCookie = "session_id"

// Server exposes the agent over HTTP. Routing, cookies and JSON shapes
// live here; all conversation logic stays in the Agent.
type Server struct {
	agent    *Agent
	index    *FlatIndex
	sessions *SessionStore
	tickets  *TicketStore
	orders   *OrderStore
	ollama   *OllamaClient
	chunker  *Chunker
	dir      string
	ext      string
	logger   *slog.Logger
}

func NewServer(agent *Agent, index *FlatIndex, sessions *SessionStore, tickets *TicketStore, orders *OrderStore, ollama *OllamaClient, chunker *Chunker, knowledgeDir, ext string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		agent:    agent,
		index:    index,
		sessions: sessions,
		tickets:  tickets,
		orders:   orders,
		ollama:   ollama,
		chunker:  chunker,
		dir:      knowledgeDir,
		ext:      ext,
		logger:   logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/welcome", s.handleWelcome)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/rebuild-knowledge", s.handleRebuild)
	mux.HandleFunc("GET /api/models", s.handleModels)
	return mux
}

func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening", "addr", addr)
	return srv.ListenAndServe()
}

// handleWelcome greets a fresh client and hands out a session id, so
// the first real chat call continues the same conversation.
func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, chatResponse{
		Response:  WelcomeMessage,
		SessionID: s.sessionID(w, r),
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	sessionID := s.sessionID(w, r)
	reply := s.agent.Respond(r.Context(), sessionID, message)

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  reply,
		SessionID: sessionID,
	})
}

// sessionID reads the session cookie, issuing a fresh id when absent.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type statusResponse struct {
	Status          string       `json:"status"`
	OllamaConnected bool         `json:"ollama_connected"`
	VectorStore     IndexStats   `json:"vector_store"`
	Sessions        SessionStats `json:"sessions"`
	Tickets         TicketStats  `json:"tickets"`
	Orders          OrderStats   `json:"orders"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	connected := false
	if s.ollama != nil {
		connected = s.ollama.CheckConnection(r.Context())
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:          "healthy",
		OllamaConnected: connected,
		VectorStore:     s.index.Stats(),
		Sessions:        s.sessions.Stats(),
		Tickets:         s.tickets.Stats(),
		Orders:          s.orders.Stats(),
	})
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if err := s.index.Rebuild(r.Context(), s.dir, s.ext, s.chunker); err != nil {
		s.logger.Error("rebuild failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("rebuild failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Knowledge base rebuilt successfully",
		"stats":   s.index.Stats(),
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if s.ollama == nil {
		writeJSON(w, http.StatusOK, map[string]any{"models": []string{}})
		return
	}

	models, err := s.ollama.ListModels(r.Context())
	if err != nil {
		s.logger.Error("list models failed", "error", err)
		writeError(w, http.StatusInternalServerError, ErrorMessages["connection_error"])
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": models})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
