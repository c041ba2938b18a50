package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"jfinder/internal/apperr"
	"jfinder/internal/domain"
)

type healthResponse struct {
	Status   string `json:"status"`
	Journals *int   `json:"journals,omitempty"`
}

// handleHealth always reports ok; an unreachable index must not fail
// liveness. The indexed journal count is included when available.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if n, err := s.index.Count(r.Context()); err == nil {
		resp.Journals = &n
	}
	writeJSON(w, http.StatusOK, resp)
}

type searchRequest struct {
	Text string `json:"text"`
	TopN int    `json:"top_n"`
}

type searchResponse struct {
	Results []domain.Match `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON with a text field")
		return
	}

	matches, err := s.searcher.Search(r.Context(), req.Text, req.TopN)
	if err != nil {
		s.logger.Printf("search failed: %v", err)
		switch {
		case errors.Is(err, apperr.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "input text is required")
		case errors.Is(err, apperr.ErrIndexUnavailable):
			writeError(w, http.StatusServiceUnavailable, "similarity index is unreachable")
		default:
			writeError(w, http.StatusInternalServerError, "internal error during search")
		}
		return
	}

	if matches == nil {
		matches = []domain.Match{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: matches})
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	text, err := s.generator.Generate(r.Context(), req.Prompt)
	if err != nil {
		s.logger.Printf("generate failed: %v", err)
		s.writeGenerateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{GeneratedText: text})
}

// writeGenerateError maps generation error kinds to distinct statuses and
// messages so callers can tell "fix your key" from "try again later" from
// "try different input". Upstream HTTP statuses are propagated when known.
func (s *Server) writeGenerateError(w http.ResponseWriter, err error) {
	status, hasStatus := apperr.UpstreamStatus(err)

	switch {
	case errors.Is(err, apperr.ErrMissingAPIKey):
		writeError(w, http.StatusInternalServerError,
			"generation API key is not configured; set it in the environment")
	case errors.Is(err, apperr.ErrRateLimited):
		if !hasStatus {
			status = http.StatusTooManyRequests
		}
		writeError(w, status, "generation API rate limit exceeded; wait and retry")
	case errors.Is(err, apperr.ErrAuth):
		if !hasStatus {
			status = http.StatusBadRequest
		}
		writeError(w, status, "generation API rejected the configured credentials")
	case errors.Is(err, apperr.ErrBlocked):
		writeError(w, http.StatusInternalServerError,
			"generation returned no text; the prompt may have been blocked")
	case errors.Is(err, apperr.ErrNetwork):
		writeError(w, http.StatusServiceUnavailable,
			"network error reaching the generation API")
	case hasStatus:
		writeError(w, status, "generation API returned an error")
	default:
		writeError(w, http.StatusInternalServerError, "unexpected generation error")
	}
}
