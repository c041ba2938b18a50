// Package server exposes the retrieval pipeline and generation proxy over
// HTTP. Shared dependencies (encoder backend, index handle, pooled
// generation client) are constructed once at process start and passed in;
// handlers never re-acquire them.
package server

import (
	"encoding/json"
	"log"
	"net/http"

	"jfinder/internal/port"
	"jfinder/internal/usecase"
)

// Server holds the request-handling dependencies.
type Server struct {
	searcher  *usecase.Searcher
	generator port.Generator
	index     port.VectorIndex
	logger    *log.Logger
}

// New creates a Server. logger may be nil, in which case the standard
// logger is used.
func New(searcher *usecase.Searcher, generator port.Generator, index port.VectorIndex, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		searcher:  searcher,
		generator: generator,
		index:     index,
		logger:    logger,
	}
}

// Handler returns the HTTP handler with all routes and middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("POST /search_journals", s.handleSearch)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	return withCORS(mux)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// errorBody is the error response shape: a single human-readable detail
// string, sanitized for clients.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}
