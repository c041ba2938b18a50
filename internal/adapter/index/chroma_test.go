package index

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jfinder/internal/apperr"
	"jfinder/internal/port"
)

func newTestChroma(t *testing.T, handler http.Handler) *ChromaIndex {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	idx := NewChromaIndex(ChromaConfig{
		Host:       srv.URL,
		APIKey:     "ck-test",
		Tenant:     "tenant-1",
		Database:   "journals-db",
		Collection: "updated_journals",
	})
	if err := idx.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	return idx
}

func collectionHandler(t *testing.T, rest http.HandlerFunc) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/tenants/tenant-1/databases/journals-db/collections", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Chroma-Token"); got != "ck-test" {
			t.Errorf("unexpected token header: %q", got)
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["get_or_create"] != true {
			t.Error("expected get_or_create to be set")
		}
		json.NewEncoder(w).Encode(chromaCollection{ID: "coll-123", Name: "updated_journals"})
	})
	if rest != nil {
		mux.HandleFunc("/api/v2/tenants/tenant-1/databases/journals-db/collections/coll-123/", rest)
	}
	return mux
}

func TestChromaConnectGetOrCreate(t *testing.T) {
	idx := newTestChroma(t, collectionHandler(t, nil))
	if idx.collectionID != "coll-123" {
		t.Errorf("expected collection id coll-123, got %q", idx.collectionID)
	}
}

func TestChromaQuery(t *testing.T) {
	idx := newTestChroma(t, collectionHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/query") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req chromaQueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad query body: %v", err)
		}
		if req.NResults != 2 {
			t.Errorf("expected n_results 2, got %d", req.NResults)
		}
		json.NewEncoder(w).Encode(chromaQueryResponse{
			IDs:       [][]string{{"S1", "S2"}},
			Documents: [][]string{{"Journal of Structural Biology. Concepts: biology", "Journal of Agricultural Economics. Concepts: economics"}},
			Metadatas: [][]map[string]string{{{"name": "Journal of Structural Biology"}, {"name": "Journal of Agricultural Economics"}}},
			Distances: [][]float64{{0.12, 0.83}},
		})
	}))

	results, err := idx.Query(context.Background(), []float32{0.1, 0.2}, 2)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "S1" || results[0].Distance != 0.12 {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[0].Metadata["name"] != "Journal of Structural Biology" {
		t.Errorf("unexpected metadata: %v", results[0].Metadata)
	}
}

func TestChromaQueryInvalidTopN(t *testing.T) {
	idx := newTestChroma(t, collectionHandler(t, nil))

	_, err := idx.Query(context.Background(), []float32{0.1}, 0)
	if !errors.Is(err, apperr.ErrIndexQuery) {
		t.Errorf("expected ErrIndexQuery for top_n=0, got %v", err)
	}
}

func TestChromaUpsertBody(t *testing.T) {
	var got chromaUpsertRequest
	idx := newTestChroma(t, collectionHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/upsert") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("bad upsert body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))

	items := []port.IndexItem{
		{ID: "S1", Vector: []float32{1, 2}, Document: "doc one", Metadata: map[string]string{"name": "One"}},
		{ID: "S2", Vector: []float32{3, 4}, Document: "doc two", Metadata: map[string]string{"name": "Two"}},
	}
	if err := idx.Upsert(context.Background(), items); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if len(got.IDs) != 2 || len(got.Embeddings) != 2 || len(got.Documents) != 2 || len(got.Metadatas) != 2 {
		t.Fatalf("expected parallel sequences of length 2, got %+v", got)
	}
	if got.IDs[1] != "S2" || got.Documents[1] != "doc two" {
		t.Errorf("unexpected upsert payload: %+v", got)
	}
}

func TestChromaCount(t *testing.T) {
	idx := newTestChroma(t, collectionHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/count") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte("42"))
	}))

	count, err := idx.Count(context.Background())
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 42 {
		t.Errorf("expected 42, got %d", count)
	}
}

func TestChromaErrorClassification(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		idx := NewChromaIndex(ChromaConfig{
			Host:       "http://127.0.0.1:1", // nothing listens here
			Tenant:     "t",
			Database:   "d",
			Collection: "c",
		})
		err := idx.Connect(context.Background())
		if !errors.Is(err, apperr.ErrIndexUnavailable) {
			t.Errorf("expected ErrIndexUnavailable, got %v", err)
		}
	})

	t.Run("bad request", func(t *testing.T) {
		idx := newTestChroma(t, collectionHandler(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid query embedding", http.StatusBadRequest)
		}))
		_, err := idx.Query(context.Background(), []float32{1}, 3)
		if !errors.Is(err, apperr.ErrIndexQuery) {
			t.Errorf("expected ErrIndexQuery for 400, got %v", err)
		}
	})

	t.Run("server error", func(t *testing.T) {
		idx := newTestChroma(t, collectionHandler(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		_, err := idx.Query(context.Background(), []float32{1}, 3)
		if !errors.Is(err, apperr.ErrIndexUnavailable) {
			t.Errorf("expected ErrIndexUnavailable for 500, got %v", err)
		}
	})
}

func TestConnectOrUnavailable(t *testing.T) {
	idx := ConnectOrUnavailable(context.Background(), ChromaConfig{
		Host:       "http://127.0.0.1:1",
		Tenant:     "t",
		Database:   "d",
		Collection: "c",
	})

	if _, ok := idx.(*Unavailable); !ok {
		t.Fatalf("expected Unavailable variant, got %T", idx)
	}
	_, err := idx.Query(context.Background(), []float32{1}, 3)
	if !errors.Is(err, apperr.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable from unavailable handle, got %v", err)
	}
}
