// Package index provides vector index backends: a managed Chroma Cloud
// client, a local bbolt-backed index, and a named Unavailable variant used
// when the backend cannot be reached at startup.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"jfinder/internal/apperr"
	"jfinder/internal/port"
)

var bucketJournals = []byte("journals")

// BoltIndex is a bbolt-backed vector index. Search is brute force over an
// in-memory cache; distance is cosine distance (1 - cosine similarity), so
// lower means more similar. Ties are broken by id for a stable order.
type BoltIndex struct {
	db        *bbolt.DB
	dimension int
	mu        sync.RWMutex
	entries   map[string]boltEntry
}

type boltEntry struct {
	vector   []float32
	document string
	metadata map[string]string
}

type storedEntry struct {
	Vector   []float32         `json:"v"`
	Document string            `json:"d"`
	Metadata map[string]string `json:"m,omitempty"`
}

// NewBoltIndex opens (or creates) the index inside an already-open bbolt
// database and loads existing entries into memory.
func NewBoltIndex(db *bbolt.DB, dimension int) (*BoltIndex, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketJournals)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create journals bucket: %w", err)
	}

	idx := &BoltIndex{
		db:        db,
		dimension: dimension,
		entries:   make(map[string]boltEntry),
	}

	if err := idx.loadEntries(); err != nil {
		return nil, fmt.Errorf("failed to load index entries: %w", err)
	}

	return idx, nil
}

func (s *BoltIndex) loadEntries() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketJournals)
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // Skip corrupted entries
			}
			s.entries[string(k)] = boltEntry{
				vector:   stored.Vector,
				document: stored.Document,
				metadata: stored.Metadata,
			}
			return nil
		})
	})
}

// Upsert inserts or fully replaces items by id. The batch is atomic: on
// any failure the transaction rolls back and the in-memory cache is left
// untouched, so queries never see half a batch.
func (s *BoltIndex) Upsert(_ context.Context, items []port.IndexItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if len(item.Vector) != s.dimension {
			return fmt.Errorf("%w: vector dimension mismatch for %q: expected %d, got %d",
				apperr.ErrIndexQuery, item.ID, s.dimension, len(item.Vector))
		}
	}

	staged := make(map[string]boltEntry, len(items))

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketJournals)
		if b == nil {
			return fmt.Errorf("journals bucket not found")
		}

		for _, item := range items {
			stored := storedEntry{
				Vector:   item.Vector,
				Document: item.Document,
				Metadata: item.Metadata,
			}
			data, err := json.Marshal(stored)
			if err != nil {
				return err
			}

			if err := b.Put([]byte(item.ID), data); err != nil {
				return err
			}

			staged[item.ID] = boltEntry{
				vector:   item.Vector,
				document: item.Document,
				metadata: item.Metadata,
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	for id, entry := range staged {
		s.entries[id] = entry
	}
	return nil
}

// Query returns up to topN items by ascending cosine distance.
func (s *BoltIndex) Query(_ context.Context, vector []float32, topN int) ([]port.IndexResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be positive, got %d", apperr.ErrIndexQuery, topN)
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query dimension mismatch: expected %d, got %d",
			apperr.ErrIndexQuery, s.dimension, len(vector))
	}

	if len(s.entries) == 0 {
		return nil, nil
	}

	results := make([]port.IndexResult, 0, len(s.entries))
	for id, entry := range s.entries {
		results = append(results, port.IndexResult{
			ID:       id,
			Document: entry.document,
			Metadata: entry.metadata,
			Distance: cosineDistance(vector, entry.vector),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})

	if topN > len(results) {
		topN = len(results)
	}
	return results[:topN], nil
}

// Count returns the number of stored items.
func (s *BoltIndex) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// cosineDistance is 1 minus the cosine similarity of a and b. Zero vectors
// get the maximum distance rather than a division by zero.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 1
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
