package port

import "context"

// Encoder turns text into fixed-dimension embedding vectors.
type Encoder interface {
	// Embed generates an embedding for a single text.
	// Fails on empty input; over-length input is truncated, never rejected.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, one vector per
	// input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
