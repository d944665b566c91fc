// Package api exposes the assistant over HTTP: chat turns, session reset,
// the analytics dashboard and operational endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loan-assistant/internal/common/errors"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/common/observability"
	"loan-assistant/internal/conversation"
	"loan-assistant/internal/ledger"
	"loan-assistant/internal/models"
	"loan-assistant/internal/session"
)

// StatsSource serves the dashboard aggregates. Nil disables the dashboard.
type StatsSource interface {
	Stats(ctx context.Context) (*ledger.Stats, error)
}

// Server wires the conversation machine to HTTP.
type Server struct {
	machine  *conversation.Machine
	sessions *session.Manager
	stats    StatsSource
	handler  *errors.TurnErrorHandler
	obs      *observability.Observability
	log      logger.Logger
	mux      *http.ServeMux
}

func NewServer(machine *conversation.Machine, sessions *session.Manager, stats StatsSource, log logger.Logger) *Server {
	s := &Server{
		machine:  machine,
		sessions: sessions,
		stats:    stats,
		handler:  errors.NewTurnErrorHandler(log),
		log:      log,
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("/v1/chat", s.handleChat)
	s.mux.HandleFunc("/v1/reset", s.handleReset)
	s.mux.HandleFunc("/v1/dashboard", s.handleDashboard)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/healthz", s.handleHealth)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// SetObservability enables OpenTelemetry turn metrics.
func (s *Server) SetObservability(obs *observability.Observability) {
	s.obs = obs
}

// ==========================
// 1. Chat
// ==========================

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string       `json:"sessionId"`
	Reply     string       `json:"reply"`
	Stage     models.Stage `json:"stage"`
	Options   []string     `json:"options,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = session.NewSessionID()
	}

	start := time.Now()
	var result *conversation.Result
	sess, err := s.sessions.WithSession(r.Context(), req.SessionID, func(sc *models.SessionContext) error {
		var perr error
		result, perr = s.machine.Process(r.Context(), sc, req.Message)
		return perr
	})
	if s.obs != nil && sess != nil {
		s.obs.RecordTurn(r.Context(), string(sess.Stage))
		s.obs.RecordTurnDuration(r.Context(), time.Since(start), string(sess.Stage))
	}
	if err != nil {
		var stage models.Stage
		if sess != nil {
			stage = sess.Stage
		}
		reply, _ := s.handler.HandleTurnError(req.SessionID, string(stage), err)
		writeJSON(w, http.StatusOK, chatResponse{
			SessionID: req.SessionID,
			Reply:     reply,
			Stage:     stage,
		})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: req.SessionID,
		Reply:     result.Reply,
		Stage:     result.Stage,
		Options:   result.Options,
	})
}

// ==========================
// 2. Reset
// ==========================

type resetRequest struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	if err := s.sessions.Reset(r.Context(), req.SessionID); err != nil {
		s.log.WithError(err).Error("Session reset failed", map[string]interface{}{
			"sessionId": req.SessionID,
		})
		writeError(w, http.StatusInternalServerError, "reset failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// ==========================
// 3. Dashboard
// ==========================

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	if s.stats == nil {
		writeError(w, http.StatusNotFound, "dashboard not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := s.stats.Stats(ctx)
	if err != nil {
		s.log.WithError(err).Error("Dashboard query failed", nil)
		writeError(w, http.StatusInternalServerError, "dashboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ==========================
// 4. Plumbing
// ==========================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
