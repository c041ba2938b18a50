package encoder

import (
	"context"
	"errors"
	"math"
	"testing"

	"jfinder/internal/apperr"
)

func TestEmbedDeterministic(t *testing.T) {
	enc := New(NewMockBackend(16))

	a, err := enc.Embed(context.Background(), "protein folding dynamics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := enc.Embed(context.Background(), "protein folding dynamics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-5 {
			t.Errorf("dim %d differs: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestEmbedDimensionInvariant(t *testing.T) {
	enc := New(NewMockBackend(8))

	for _, text := range []string{"x", "a longer sentence about agricultural economics", "日本語のテキスト"} {
		vec, err := enc.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", text, err)
		}
		if len(vec) != 8 {
			t.Errorf("expected 8 dims for %q, got %d", text, len(vec))
		}
	}
}

func TestEmbedEmptyText(t *testing.T) {
	enc := New(NewMockBackend(4))

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := enc.Embed(context.Background(), text)
		if !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for %q, got %v", text, err)
		}
	}
}

func TestEmbedBackendFailure(t *testing.T) {
	enc := New(NewFailingBackend(errors.New("forward pass raised")))

	_, err := enc.Embed(context.Background(), "some text")
	if !errors.Is(err, apperr.ErrEncoding) {
		t.Errorf("expected ErrEncoding, got %v", err)
	}
}

func TestEmbedBatchOrder(t *testing.T) {
	enc := New(NewMockBackend(4))

	texts := []string{"alpha", "beta"}
	batch, err := enc.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(batch))
	}

	single, err := enc.Embed(context.Background(), "beta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range single {
		if batch[1][i] != single[i] {
			t.Fatalf("batch output not in input order")
		}
	}
}

func TestEmbedBatchEmptySlice(t *testing.T) {
	enc := New(NewMockBackend(4))

	vecs, err := enc.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vecs != nil {
		t.Errorf("expected nil for empty batch, got %v", vecs)
	}
}
