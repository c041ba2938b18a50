package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jfinder/internal/apperr"
	"jfinder/internal/domain"
	"jfinder/internal/port"
)

// DefaultTopN is the number of results returned when the caller does not
// ask for a specific count.
const DefaultTopN = 5

// Searcher is the retrieval pipeline: embed the query text, run a
// nearest-neighbor query, shape the results. It holds no state of its own.
type Searcher struct {
	encoder port.Encoder
	index   port.VectorIndex
}

// NewSearcher creates a search pipeline over the given encoder and index.
func NewSearcher(encoder port.Encoder, index port.VectorIndex) *Searcher {
	return &Searcher{encoder: encoder, index: index}
}

// Search returns the topN journals most similar to the query text, ordered
// by ascending distance. topN of zero means DefaultTopN. An empty result
// only ever means the index had no matches; failures surface as
// ErrSearchFailed (or ErrInvalidInput for bad arguments).
func (s *Searcher) Search(ctx context.Context, queryText string, topN int) ([]domain.Match, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, fmt.Errorf("%w: query text is required", apperr.ErrInvalidInput)
	}
	if topN == 0 {
		topN = DefaultTopN
	}
	if topN < 0 {
		return nil, fmt.Errorf("%w: top_n must be positive, got %d", apperr.ErrInvalidInput, topN)
	}

	vector, err := s.encoder.Embed(ctx, queryText)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", apperr.ErrSearchFailed, err)
	}

	results, err := s.index.Query(ctx, vector, topN)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrSearchFailed, err)
	}

	matches := make([]domain.Match, len(results))
	for i, r := range results {
		matches[i] = domain.Match{
			Name:        r.Metadata["name"],
			Description: r.Document,
			Score:       r.Distance,
		}
	}
	return matches, nil
}
