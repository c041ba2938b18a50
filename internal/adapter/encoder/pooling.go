package encoder

// minPoolDenom floors the mean-pooling denominator so degenerate all-masked
// input cannot divide by zero.
const minPoolDenom = 1e-9

// MeanPool reduces per-token hidden states to a single vector by
// attention-masked mean pooling: each dimension is the sum of hidden-state
// values over real (mask=1) tokens divided by the count of real tokens.
// Padding tokens (mask=0) contribute nothing. Rows beyond the mask length
// are treated as padding.
func MeanPool(hidden [][]float32, mask []int) []float32 {
	if len(hidden) == 0 {
		return nil
	}

	dim := len(hidden[0])
	sums := make([]float64, dim)
	var count float64

	for i, row := range hidden {
		if i >= len(mask) || mask[i] == 0 {
			continue
		}
		count++
		for j := 0; j < dim && j < len(row); j++ {
			sums[j] += float64(row[j])
		}
	}

	if count < minPoolDenom {
		count = minPoolDenom
	}

	pooled := make([]float32, dim)
	for j := range sums {
		pooled[j] = float32(sums[j] / count)
	}
	return pooled
}
