// Package server exposes the chat session over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/amishk599/jobhunter/internal/chat"
)

// maxBodyBytes bounds a chat request body.
const maxBodyBytes = 64 << 10

// SessionFactory creates the chat session for a new conversation.
type SessionFactory func() *chat.Session

// Options configures a Server.
type Options struct {
	RateLimit     time.Duration // minimum spacing between chat requests
	RateBurst     int
	MaxConcurrent int64 // crew runs allowed at once across all sessions
}

// Server serves the chat API.
type Server struct {
	newSession SessionFactory
	limiter    *rate.Limiter
	runs       *semaphore.Weighted
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*chat.Session
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string       `json:"session_id"`
	Replies   []chat.Reply `json:"replies"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a Server.
func New(newSession SessionFactory, opts Options, logger *slog.Logger) *Server {
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Every(opts.RateLimit)
	}
	burst := max(opts.RateBurst, 1)
	concurrent := opts.MaxConcurrent
	if concurrent <= 0 {
		concurrent = 1
	}
	return &Server{
		newSession: newSession,
		limiter:    rate.NewLimiter(limit, burst),
		runs:       semaphore.NewWeighted(concurrent),
		logger:     logger,
		sessions:   make(map[string]*chat.Session),
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(requestLogger{logger: s.logger}))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Delete("/chat/{sessionID}", s.handleEndSession)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("chat server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down chat server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	n := len(s.sessions)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": n})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
		return
	}

	var req chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	id, sess, created, err := s.session(req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	// Only a new search holds a run slot. Commands and a repeated search in a
	// busy session are answered by the session itself.
	if !chat.IsCommand(req.Message) && !sess.Busy() {
		if !s.runs.TryAcquire(1) {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "server is busy, try again shortly"})
			return
		}
		defer s.runs.Release(1)
	}

	var replies []chat.Reply
	if created {
		replies = append(replies, chat.Welcome())
	}
	replies = append(replies, sess.Handle(r.Context(), req.Message)...)
	writeJSON(w, http.StatusOK, chatResponse{SessionID: id, Replies: replies})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown session"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session returns the session for id, creating one when id is empty.
func (s *Server) session(id string) (string, *chat.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
		sess := s.newSession()
		s.sessions[id] = sess
		s.logger.Info("chat session created", "session_id", id)
		return id, sess, true, nil
	}
	sess, ok := s.sessions[id]
	if !ok {
		return "", nil, false, errors.New("unknown session")
	}
	return id, sess, false, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
