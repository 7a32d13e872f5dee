// Package retriever answers k-nearest-neighbor queries against a persisted
// vector store, with optional metadata predicate filtering.
package retriever

import (
	"visionrag/internal/adapter/store"
	"visionrag/internal/domain"
)

// Predicate is a post-ranking boolean test over a hit's metadata. It narrows
// results without affecting similarity ranking, so callers needing a filtered
// top-k must over-fetch.
type Predicate func(domain.Metadata) bool

// Retriever wraps a loaded, read-only store for the lifetime of the process.
type Retriever struct {
	store *store.DualStore
}

// Open loads the persisted store under dir. A missing store surfaces
// domain.ErrStoreNotFound: the caller should run ingestion first.
func Open(dir string) (*Retriever, error) {
	st, err := store.Load(dir)
	if err != nil {
		return nil, err
	}
	return &Retriever{store: st}, nil
}

// NewFromStore wraps an already-built store. Used by tests and by callers
// that ingest and query in one process.
func NewFromStore(st *store.DualStore) *Retriever {
	return &Retriever{store: st}
}

// SearchText runs a text-index query. The query vector is L2-normalized
// before search (idempotent when already normalized), k is clamped to
// [1, count], an empty index yields an empty result, and the predicate is
// applied after ranking.
func (r *Retriever) SearchText(query []float32, k int, pred Predicate) ([]domain.Hit, error) {
	return searchFiltered(r.store.SearchText, query, k, pred)
}

// SearchImage is SearchText against the image index. The orchestration path
// never invokes it today; it exists for the vision task flow.
func (r *Retriever) SearchImage(query []float32, k int, pred Predicate) ([]domain.Hit, error) {
	return searchFiltered(r.store.SearchImage, query, k, pred)
}

func searchFiltered(search func([]float32, int) ([]domain.Hit, error), query []float32, k int, pred Predicate) ([]domain.Hit, error) {
	q := make([]float32, len(query))
	copy(q, query)
	store.NormalizeL2(q)

	hits, err := search(q, k)
	if err != nil {
		return nil, err
	}
	if pred == nil {
		return hits, nil
	}

	filtered := make([]domain.Hit, 0, len(hits))
	for _, h := range hits {
		if pred(h.Meta) {
			filtered = append(filtered, h)
		}
	}
	return filtered, nil
}
