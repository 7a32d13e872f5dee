package usecase

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visionrag/internal/adapter/embedding"
	"visionrag/internal/adapter/retriever"
	"visionrag/internal/adapter/store"
	"visionrag/internal/domain"
	"visionrag/internal/router"
)

const testDim = 16

// buildMarketStore persists a store holding CSV blocks from two coins plus an
// unrelated text record, and returns its directory.
func buildMarketStore(t *testing.T, embed *embedding.MockTextEmbedder) string {
	t.Helper()

	s := store.New(testDim, 4)

	addCSV := func(file, text string) {
		vecs, err := embed.EmbedTexts([]string{text})
		require.NoError(t, err)
		meta := domain.Metadata{
			Type:      domain.SourceCSV,
			File:      file,
			SourceSet: []string{"coingecko"},
			OriginDir: "markets",
		}
		require.NoError(t, s.AddText(vecs[0], meta))
	}

	addCSV("ethereum.csv", "ethereum on 2024-01-01: price=2300, market_cap=276e9, volume=12e9 (src=coingecko)")
	addCSV("ethereum.csv", "ethereum on 2024-02-01: price=2500, market_cap=300e9, volume=11e9 (src=coingecko)")
	addCSV("bitcoin.csv", "bitcoin on 2024-01-01: price=42000, market_cap=800e9, volume=20e9 (src=coingecko)")

	vecs, err := embed.EmbedTexts([]string{"company history and general notes"})
	require.NoError(t, err)
	require.NoError(t, s.AddText(vecs[0], domain.Metadata{Type: domain.SourceText, File: "notes.txt"}))

	dir := t.TempDir()
	require.NoError(t, s.Save(dir))
	return dir
}

func newAsk(t *testing.T, dir string, embed *embedding.MockTextEmbedder) *AskUseCase {
	t.Helper()
	return NewAskUseCase(
		router.New(nil),
		embed,
		func() (*retriever.Retriever, error) { return retriever.Open(dir) },
		5,
		"Run ingest first.",
	)
}

func TestAskCoinDisambiguation(t *testing.T) {
	embed := embedding.NewMockTextEmbedder(testDim)
	dir := buildMarketStore(t, embed)
	ask := newAsk(t, dir, embed)

	resp := ask.Ask("ETH 價格走勢")

	require.NotEmpty(t, resp.Hits)
	for _, h := range resp.Hits {
		assert.Equal(t, "ethereum.csv", h.Meta.File)
	}
}

func TestAskMarketVocabularyRestrictsToCSV(t *testing.T) {
	embed := embedding.NewMockTextEmbedder(testDim)
	dir := buildMarketStore(t, embed)
	ask := newAsk(t, dir, embed)

	resp := ask.Ask("what is the price trend?")

	require.NotEmpty(t, resp.Hits)
	for _, h := range resp.Hits {
		assert.Equal(t, domain.SourceCSV, h.Meta.Type)
	}
}

func TestAskPlainQuestionUnfiltered(t *testing.T) {
	embed := embedding.NewMockTextEmbedder(testDim)
	dir := buildMarketStore(t, embed)
	ask := newAsk(t, dir, embed)

	resp := ask.Ask("公司歷史")

	assert.Equal(t, domain.TaskTextQA, resp.Plan.Task)
	require.NotEmpty(t, resp.Hits)
	assert.LessOrEqual(t, len(resp.Hits), 3)
}

func TestAskMissingStore(t *testing.T) {
	embed := embedding.NewMockTextEmbedder(testDim)
	dir := filepath.Join(t.TempDir(), "absent")
	ask := newAsk(t, dir, embed)

	resp := ask.Ask("ETH price trend")

	assert.Empty(t, resp.Hits)
	assert.Contains(t, resp.Answer, "[error]")
	assert.Contains(t, resp.Answer, "Run ingest first.")
	assert.Equal(t, domain.TaskTextQA, resp.Plan.Task)
}

func TestAskAnswerNamesTopHit(t *testing.T) {
	embed := embedding.NewMockTextEmbedder(testDim)
	dir := buildMarketStore(t, embed)
	ask := newAsk(t, dir, embed)

	resp := ask.Ask("ETH 價格走勢")
	assert.Contains(t, resp.Answer, "ethereum.csv")
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedTexts([]string) ([][]float32, error) {
	return nil, errors.New("gateway unavailable")
}
func (failingEmbedder) Dimension() int    { return testDim }
func (failingEmbedder) ModelName() string { return "failing" }

func TestAskEmbedFailureDegrades(t *testing.T) {
	dir := buildMarketStore(t, embedding.NewMockTextEmbedder(testDim))
	ask := NewAskUseCase(
		router.New(nil),
		failingEmbedder{},
		func() (*retriever.Retriever, error) { return retriever.Open(dir) },
		5,
		"Run ingest first.",
	)

	resp := ask.Ask("ETH price trend")

	assert.Empty(t, resp.Hits)
	assert.Contains(t, resp.Answer, "[error]")
	assert.Contains(t, resp.Answer, "gateway unavailable")
}

func TestDetectCoin(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"ETH 價格走勢", "ethereum"},
		{"what about Bitcoin?", "bitcoin"},
		{"DOGE to the moon", "dogecoin"},
		{"nothing crypto related", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectCoin(tt.question), "question: %s", tt.question)
	}
}

func TestDetectCoinDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, "bitcoin", DetectCoin("compare btc against eth"))
	}
}
