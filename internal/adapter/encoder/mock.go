package encoder

import (
	"context"
	"fmt"
)

// MockBackend is a deterministic in-process backend for tests. Each rune of
// the input becomes one "token" whose hidden state is derived from the rune
// value, so identical text always yields identical states.
type MockBackend struct {
	dimension int
	failWith  error
}

// NewMockBackend creates a mock backend with the given dimension.
func NewMockBackend(dimension int) *MockBackend {
	return &MockBackend{dimension: dimension}
}

// NewFailingBackend creates a backend whose TokenStates always fails.
func NewFailingBackend(err error) *MockBackend {
	return &MockBackend{dimension: 1, failWith: err}
}

func (b *MockBackend) TokenStates(_ context.Context, texts []string) ([]TokenStates, error) {
	if b.failWith != nil {
		return nil, b.failWith
	}

	states := make([]TokenStates, len(texts))
	for i, text := range texts {
		runes := []rune(text)
		hidden := make([][]float32, len(runes))
		mask := make([]int, len(runes))
		for j, r := range runes {
			row := make([]float32, b.dimension)
			for d := range row {
				row[d] = float32(r) / float32(1000+d)
			}
			hidden[j] = row
			mask[j] = 1
		}
		states[i] = TokenStates{Hidden: hidden, Mask: mask}
	}
	return states, nil
}

func (b *MockBackend) Dimension() int {
	return b.dimension
}

func (b *MockBackend) ModelName() string {
	return fmt.Sprintf("mock-%d", b.dimension)
}
