// Package server exposes the pipeline over HTTP: one endpoint to trigger a
// publication run, one to list what is already published.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"seobot/agent"
)

// A run spans several model and image-generation calls.
const runTimeout = 15 * time.Minute

// Runner executes one publication pipeline.
type Runner interface {
	Run(ctx context.Context, topic string) (agent.RunResult, error)
}

type Server struct {
	runner Runner
	lister agent.SummaryLister
	logger *log.Logger
}

func New(runner Runner, lister agent.SummaryLister, logger *log.Logger) (*Server, error) {
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, lister: lister, logger: logger}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.handleRunCreate)
	mux.HandleFunc("/api/posts", s.handlePostList)
	return s.logMiddleware(mux)
}

// --- Handlers ---

type runCreateReq struct {
	Topic string `json:"topic"`
}

type runResp struct {
	Outcome    agent.Outcome `json:"outcome"`
	URL        string        `json:"url,omitempty"`
	Iterations int           `json:"iterations"`
}

func (s *Server) handleRunCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req runCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), runTimeout)
	defer cancel()
	result, err := s.runner.Run(ctx, req.Topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, runResp{Outcome: result.Outcome, URL: result.URL, Iterations: result.Iterations})
}

func (s *Server) handlePostList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.lister == nil {
		http.Error(w, "canonical store not configured", http.StatusServiceUnavailable)
		return
	}
	summaries, err := s.lister.PublishedSummaries(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, summaries)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Printf("[server] %s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
