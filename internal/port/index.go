package port

import "context"

// VectorIndex stores (id, vector, document, metadata) tuples and answers
// nearest-neighbor queries over them.
type VectorIndex interface {
	// Upsert inserts or fully replaces items by id. Replacement covers the
	// whole tuple; metadata is never merged.
	Upsert(ctx context.Context, items []IndexItem) error

	// Query returns up to topN stored items ordered by ascending distance
	// from the query vector (lower = more similar). When the index holds
	// fewer than topN items, all of them are returned.
	Query(ctx context.Context, vector []float32, topN int) ([]IndexResult, error)

	// Count returns the number of stored items.
	Count(ctx context.Context) (int, error)
}

// IndexItem is one tuple to store.
type IndexItem struct {
	ID       string
	Vector   []float32
	Document string
	Metadata map[string]string
}

// IndexResult is one query hit.
type IndexResult struct {
	ID       string
	Document string
	Metadata map[string]string
	Distance float64
}
