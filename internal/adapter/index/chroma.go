package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jfinder/internal/apperr"
	"jfinder/internal/port"
)

// ChromaIndex is a minimal REST client to a Chroma Cloud collection.
// Connect performs a get-or-create of the named collection, which is
// idempotent: an existing collection is returned as-is.
type ChromaIndex struct {
	host         string
	apiKey       string
	tenant       string
	database     string
	collection   string
	collectionID string
	client       *http.Client
}

// ChromaConfig holds connection details for Chroma Cloud.
type ChromaConfig struct {
	Host       string
	APIKey     string
	Tenant     string
	Database   string
	Collection string
	Timeout    time.Duration
}

// NewChromaIndex creates an index client. Connect must be called before use.
func NewChromaIndex(cfg ChromaConfig) *ChromaIndex {
	host := cfg.Host
	if host == "" {
		host = "https://api.trychroma.com"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &ChromaIndex{
		host:       host,
		apiKey:     cfg.APIKey,
		tenant:     cfg.Tenant,
		database:   cfg.Database,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

type chromaCollection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Connect resolves the collection id, creating the collection if it does
// not exist yet.
func (s *ChromaIndex) Connect(ctx context.Context) error {
	body := map[string]any{
		"name":          s.collection,
		"get_or_create": true,
	}
	var coll chromaCollection
	if err := s.postJSON(ctx, s.collectionsURL(), body, &coll); err != nil {
		return err
	}
	if coll.ID == "" {
		return fmt.Errorf("%w: collection response missing id", apperr.ErrIndexUnavailable)
	}
	s.collectionID = coll.ID
	return nil
}

// ConnectOrUnavailable connects to Chroma and, on failure, returns the
// named Unavailable variant instead of an error so the process can start
// and callers get a clear, catchable failure on every query.
func ConnectOrUnavailable(ctx context.Context, cfg ChromaConfig) port.VectorIndex {
	idx := NewChromaIndex(cfg)
	if err := idx.Connect(ctx); err != nil {
		return NewUnavailable(err)
	}
	return idx
}

type chromaUpsertRequest struct {
	IDs        []string            `json:"ids"`
	Embeddings [][]float32         `json:"embeddings"`
	Documents  []string            `json:"documents"`
	Metadatas  []map[string]string `json:"metadatas"`
}

// Upsert inserts or fully replaces items by id.
func (s *ChromaIndex) Upsert(ctx context.Context, items []port.IndexItem) error {
	if len(items) == 0 {
		return nil
	}

	req := chromaUpsertRequest{
		IDs:        make([]string, len(items)),
		Embeddings: make([][]float32, len(items)),
		Documents:  make([]string, len(items)),
		Metadatas:  make([]map[string]string, len(items)),
	}
	for i, item := range items {
		req.IDs[i] = item.ID
		req.Embeddings[i] = item.Vector
		req.Documents[i] = item.Document
		req.Metadatas[i] = item.Metadata
	}

	return s.postJSON(ctx, s.collectionURL()+"/upsert", req, nil)
}

type chromaQueryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

type chromaQueryResponse struct {
	IDs       [][]string            `json:"ids"`
	Documents [][]string            `json:"documents"`
	Metadatas [][]map[string]string `json:"metadatas"`
	Distances [][]float64           `json:"distances"`
}

// Query returns up to topN items by ascending distance. Chroma clamps
// n_results to the collection size, so a small collection is not an error.
func (s *ChromaIndex) Query(ctx context.Context, vector []float32, topN int) ([]port.IndexResult, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be positive, got %d", apperr.ErrIndexQuery, topN)
	}

	req := chromaQueryRequest{
		QueryEmbeddings: [][]float32{vector},
		NResults:        topN,
		Include:         []string{"documents", "metadatas", "distances"},
	}

	var resp chromaQueryResponse
	if err := s.postJSON(ctx, s.collectionURL()+"/query", req, &resp); err != nil {
		return nil, err
	}

	if len(resp.IDs) == 0 {
		return nil, nil
	}

	hits := resp.IDs[0]
	results := make([]port.IndexResult, 0, len(hits))
	for i, id := range hits {
		r := port.IndexResult{ID: id}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			r.Document = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			r.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			r.Distance = resp.Distances[0][i]
		}
		results = append(results, r)
	}

	return results, nil
}

// Count returns the number of stored items.
func (s *ChromaIndex) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.getJSON(ctx, s.collectionURL()+"/count", &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *ChromaIndex) collectionsURL() string {
	return fmt.Sprintf("%s/api/v2/tenants/%s/databases/%s/collections", s.host, s.tenant, s.database)
}

func (s *ChromaIndex) collectionURL() string {
	return s.collectionsURL() + "/" + s.collectionID
}

func (s *ChromaIndex) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrIndexQuery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrIndexQuery, err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.setAuth(req)

	return s.do(req, out)
}

func (s *ChromaIndex) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrIndexQuery, err)
	}
	s.setAuth(req)

	return s.do(req, out)
}

func (s *ChromaIndex) setAuth(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("X-Chroma-Token", s.apiKey)
	}
}

// do executes the request and classifies failures: transport errors mean
// the service cannot be reached (unavailable), 4xx means the service
// rejected the request (query error), 5xx means the service is reachable
// but failing (unavailable).
func (s *ChromaIndex) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %s %s returned %s", apperr.ErrIndexUnavailable, req.Method, req.URL.Path, resp.Status)
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s returned %s: %s", apperr.ErrIndexQuery, req.Method, req.URL.Path, resp.Status, string(body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decoding response: %v", apperr.ErrIndexQuery, err)
		}
	}
	return nil
}
