// Package encoder turns free text into fixed-dimension embedding vectors by
// running a pretrained transformer backend and mean-pooling its per-token
// hidden states.
package encoder

import (
	"context"
	"fmt"
	"strings"

	"jfinder/internal/apperr"
)

// TokenStates holds the last-layer hidden states for one input text plus
// the attention mask that separates real tokens (1) from padding (0).
type TokenStates struct {
	Hidden [][]float32
	Mask   []int
}

// TokenBackend runs a transformer forward pass and returns per-token hidden
// states, one TokenStates per input text. Implementations truncate
// over-length input to the model's maximum token length rather than failing.
type TokenBackend interface {
	TokenStates(ctx context.Context, texts []string) ([]TokenStates, error)
	Dimension() int
	ModelName() string
}

// Encoder implements port.Encoder over a TokenBackend. It is a pure
// function of (text, backend): identical text against identical model
// weights yields an identical vector.
type Encoder struct {
	backend TokenBackend
}

// New creates an Encoder over the given backend.
func New(backend TokenBackend) *Encoder {
	return &Encoder{backend: backend}
}

// Embed generates the embedding for a single text.
func (e *Encoder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts, in input order.
func (e *Encoder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("%w: text %d is empty", apperr.ErrInvalidInput, i)
		}
	}

	states, err := e.backend.TokenStates(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrEncoding, err)
	}
	if len(states) != len(texts) {
		return nil, fmt.Errorf("%w: backend returned %d outputs for %d inputs",
			apperr.ErrEncoding, len(states), len(texts))
	}

	dim := e.backend.Dimension()
	vecs := make([][]float32, len(states))
	for i, st := range states {
		if len(st.Hidden) == 0 {
			return nil, fmt.Errorf("%w: backend returned no token states for text %d",
				apperr.ErrEncoding, i)
		}
		v := MeanPool(st.Hidden, st.Mask)
		if len(v) != dim {
			return nil, fmt.Errorf("%w: pooled dimension %d, want %d",
				apperr.ErrEncoding, len(v), dim)
		}
		vecs[i] = v
	}
	return vecs, nil
}

// Dimension returns the embedding vector dimension.
func (e *Encoder) Dimension() int {
	return e.backend.Dimension()
}

// ModelName returns the name of the embedding model.
func (e *Encoder) ModelName() string {
	return e.backend.ModelName()
}
