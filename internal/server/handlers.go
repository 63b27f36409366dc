package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"defi-portfolio-lab/internal/domain"
	"defi-portfolio-lab/internal/storage"
)

// defaultID generates identifiers for portfolios and runs.
func defaultID() string {
	return uuid.NewString()
}

// errorResponse is the uniform error payload.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

// writeError maps domain and storage errors onto HTTP status codes.
// Invalid requests are the client's fault; anything else is logged and
// reported as a 500 without leaking internals.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, storage.ErrDuplicateKey):
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	default:
		s.log.Error().Err(err).Msg("request failed")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return false
	}
	return true
}

// handleHealth responds to health checks.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleBacktest runs an ad-hoc backtest without persisting anything.
func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req domain.BacktestRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.runner.Run(r.Context(), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// createPortfolioRequest is the body for creating or updating a portfolio.
type createPortfolioRequest struct {
	Name    string                 `json:"name"`
	Request domain.BacktestRequest `json:"request"`
}

func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var body createPortfolioRequest
	if !s.decodeJSON(w, r, &body) {
		return
	}
	if err := body.Request.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	now := s.now().UTC()
	p := &domain.SavedPortfolio{
		ID:        s.newID(),
		Name:      body.Name,
		Request:   body.Request,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.portfolios.Insert(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	list, err := s.portfolios.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []*domain.SavedPortfolio{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := s.portfolios.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body createPortfolioRequest
	if !s.decodeJSON(w, r, &body) {
		return
	}
	if err := body.Request.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	existing, err := s.portfolios.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	existing.Name = body.Name
	existing.Request = body.Request
	existing.UpdatedAt = s.now().UTC()

	if err := s.portfolios.Update(r.Context(), existing); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	if err := s.portfolios.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// runResponse wraps a backtest result with its persisted run id.
type runResponse struct {
	RunID  string                 `json:"runId"`
	Result *domain.BacktestResult `json:"result"`
}

// handleRunPortfolio executes the saved configuration and records the run.
func (s *Server) handleRunPortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := s.portfolios.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.runner.Run(r.Context(), &p.Request)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		s.writeError(w, err)
		return
	}

	run := &domain.BacktestRun{
		RunID:               s.newID(),
		PortfolioID:         p.ID,
		FinalValue:          result.Metrics.FinalValue,
		CumulativeReturnPct: result.Metrics.CumulativeReturnPct,
		IntegrityScore:      result.Integrity.Score,
		Result:              resultJSON,
		CreatedAt:           s.now().UTC(),
	}
	if err := s.runs.Insert(r.Context(), run); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, runResponse{RunID: run.RunID, Result: result})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Distinguish an unknown portfolio from one with no runs yet
	if _, err := s.portfolios.GetByID(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	runs, err := s.runs.GetByPortfolioID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*domain.BacktestRun{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// handleGetRun returns the full stored result document for one run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.runs.GetByID(r.Context(), chi.URLParam(r, "runId"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var result domain.BacktestResult
	if err := json.Unmarshal(run.Result, &result); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		*domain.BacktestRun
		Result *domain.BacktestResult `json:"result"`
	}{BacktestRun: run, Result: &result})
}
