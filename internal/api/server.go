// Package api exposes the assistant over HTTP. Authentication is left to
// an upstream proxy: the handlers trust the X-User-ID header it injects.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hisabkitab/hisab/internal/assistant"
	"github.com/hisabkitab/hisab/internal/common"
)

// Server routes HTTP requests to the assistant.
type Server struct {
	assistant *assistant.Assistant
	logger    *slog.Logger
}

// NewServer creates a Server.
func NewServer(a *assistant.Assistant, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{assistant: a, logger: logger}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/assistant", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
	})

	return r
}

// chatRequest mirrors the client payload. Budget keys are stringified
// cashbook ids.
type chatRequest struct {
	Message           string             `json:"message"`
	BudgetsByCashbook map[string]float64 `json:"budgetsByCashbook"`
	CurrentCashbookID int64              `json:"currentCashbookId"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusUnauthorized, "missing or invalid user")
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

	budgets := make(map[int64]float64, len(req.BudgetsByCashbook))
	for key, amount := range req.BudgetsByCashbook {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		budgets[id] = amount
	}

	answer, err := s.assistant.Answer(r.Context(), assistant.Request{
		UserID:            userID,
		Question:          req.Message,
		CurrentCashbookID: req.CurrentCashbookID,
		Budgets:           budgets,
		Identity: assistant.Identity{
			Username: r.Header.Get("X-Username"),
			Email:    r.Header.Get("X-User-Email"),
		},
	})
	if err != nil {
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			writeError(w, http.StatusBadRequest, userErr.UserMessage)
			return
		}
		s.logger.Error("assistant request failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Assistant failed")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
