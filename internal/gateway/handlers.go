package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"folio/internal/agent"
)

// maxAskIterations caps what a caller may request, independent of config.
const maxAskIterations = 10

type askRequest struct {
	Query         string `json:"query"`
	MaxIterations int    `json:"max_iterations"`
	Verbose       bool   `json:"verbose"`
}

type askResponse struct {
	Answer       string                 `json:"answer"`
	Inconclusive bool                   `json:"inconclusive"`
	Iterations   int                    `json:"iterations"`
	Reasoning    []agent.Step           `json:"reasoning,omitempty"`
	ToolCalls    []agent.ToolCallRecord `json:"tool_calls,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		httpError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.MaxIterations < 0 {
		httpError(w, http.StatusBadRequest, "max_iterations must be at least 1")
		return
	}
	if req.MaxIterations > maxAskIterations {
		req.MaxIterations = maxAskIterations
	}

	res, err := s.newAgent(req.MaxIterations).Ask(r.Context(), req.Query)
	if err != nil {
		// Internal detail stays in the log; callers get a generic failure.
		slog.Error("ask failed", "error", err)
		httpError(w, http.StatusBadGateway, "agent request failed")
		return
	}

	resp := askResponse{
		Answer:       res.Answer,
		Inconclusive: res.Inconclusive,
		Iterations:   res.Iterations,
	}
	if req.Verbose {
		resp.Reasoning = res.Reasoning
		resp.ToolCalls = res.ToolCalls
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
