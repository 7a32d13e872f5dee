package embedding

import (
	"crypto/sha256"
	"math"
)

// MockTextEmbedder produces deterministic vectors derived from the input
// characters. Useful for tests and offline runs.
type MockTextEmbedder struct {
	dimension int
}

func NewMockTextEmbedder(dimension int) *MockTextEmbedder {
	return &MockTextEmbedder{dimension: dimension}
}

func (e *MockTextEmbedder) EmbedTexts(texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, e.dimension)
		for j, r := range text {
			vec[j%e.dimension] += float32(r) / 1000.0
		}
		embeddings[i] = normalizeL2(vec)
	}
	return embeddings, nil
}

func (e *MockTextEmbedder) Dimension() int    { return e.dimension }
func (e *MockTextEmbedder) ModelName() string { return "mock-text" }

// MockImageEmbedder produces deterministic vectors derived from a digest of
// the image bytes.
type MockImageEmbedder struct {
	dimension int
}

func NewMockImageEmbedder(dimension int) *MockImageEmbedder {
	return &MockImageEmbedder{dimension: dimension}
}

func (e *MockImageEmbedder) EmbedImage(data []byte) ([]float32, error) {
	digest := sha256.Sum256(data)
	vec := make([]float32, e.dimension)
	for i := range vec {
		vec[i] = float32(digest[i%len(digest)]) / 255.0
	}
	return normalizeL2(vec), nil
}

func (e *MockImageEmbedder) Dimension() int    { return e.dimension }
func (e *MockImageEmbedder) ModelName() string { return "mock-image" }

// normalizeL2 scales vec to unit length in place. Zero vectors pass through.
func normalizeL2(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
