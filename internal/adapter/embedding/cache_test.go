package embedding

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder wraps the mock and counts gateway calls.
type countingEmbedder struct {
	*MockTextEmbedder
	calls int
	texts int
}

func (c *countingEmbedder) EmbedTexts(texts []string) ([][]float32, error) {
	c.calls++
	c.texts += len(texts)
	return c.MockTextEmbedder.EmbedTexts(texts)
}

func TestCachedEmbedderMemoizes(t *testing.T) {
	inner := &countingEmbedder{MockTextEmbedder: NewMockTextEmbedder(8)}
	cache, err := NewCachedTextEmbedder(filepath.Join(t.TempDir(), "cache.db"), inner)
	require.NoError(t, err)
	defer cache.Close()

	first, err := cache.EmbedTexts([]string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 2, inner.texts)

	second, err := cache.EmbedTexts([]string{"alpha", "beta"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, inner.texts, "cached texts must not hit the gateway again")
}

func TestCachedEmbedderPartialHit(t *testing.T) {
	inner := &countingEmbedder{MockTextEmbedder: NewMockTextEmbedder(8)}
	cache, err := NewCachedTextEmbedder(filepath.Join(t.TempDir(), "cache.db"), inner)
	require.NoError(t, err)
	defer cache.Close()

	_, err = cache.EmbedTexts([]string{"alpha"})
	require.NoError(t, err)

	out, err := cache.EmbedTexts([]string{"alpha", "gamma"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 2, inner.texts, "only the miss goes to the gateway")
}

func TestCachedEmbedderPassthrough(t *testing.T) {
	inner := NewMockTextEmbedder(16)
	cache, err := NewCachedTextEmbedder(filepath.Join(t.TempDir(), "cache.db"), inner)
	require.NoError(t, err)
	defer cache.Close()

	assert.Equal(t, 16, cache.Dimension())
	assert.Equal(t, "mock-text", cache.ModelName())
}
