package retriever

import (
	"errors"
	"path/filepath"
	"testing"

	"visionrag/internal/adapter/store"
	"visionrag/internal/domain"
)

func buildStore(t *testing.T) *store.DualStore {
	t.Helper()
	s := store.New(2, 2)
	add := func(v []float32, m domain.Metadata) {
		if err := s.AddText(store.NormalizeL2(v), m); err != nil {
			t.Fatal(err)
		}
	}
	add([]float32{1, 0}, domain.Metadata{Type: domain.SourceText, File: "a.txt"})
	add([]float32{0.9, 0.1}, domain.Metadata{Type: domain.SourceCSV, File: "ethereum.csv", OriginDir: "markets"})
	add([]float32{0, 1}, domain.Metadata{Type: domain.SourceCSV, File: "bitcoin.csv", OriginDir: "markets"})
	return s
}

func TestOpenMissingStore(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, domain.ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
}

func TestSearchTextClampsK(t *testing.T) {
	r := NewFromStore(buildStore(t))

	hits, err := r.SearchText([]float32{1, 0}, 100, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Errorf("got %d hits, want all 3", len(hits))
	}

	hits, err = r.SearchText([]float32{1, 0}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("k=0 should clamp to 1, got %d hits", len(hits))
	}
}

func TestSearchTextNormalizesQuery(t *testing.T) {
	r := NewFromStore(buildStore(t))

	// Same direction, different magnitude: identical ranking and scores.
	a, err := r.SearchText([]float32{1, 0}, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.SearchText([]float32{10, 0}, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i].Meta.File != b[i].Meta.File {
			t.Fatalf("ranking differs at %d: %s vs %s", i, a[i].Meta.File, b[i].Meta.File)
		}
		if diff := a[i].Score - b[i].Score; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("score differs at %d: %f vs %f", i, a[i].Score, b[i].Score)
		}
	}
}

func TestSearchTextPredicateIsPostFilter(t *testing.T) {
	r := NewFromStore(buildStore(t))

	pred := func(m domain.Metadata) bool { return m.Type == domain.SourceCSV }

	unfiltered, err := r.SearchText([]float32{1, 0}, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	filtered, err := r.SearchText([]float32{1, 0}, 3, pred)
	if err != nil {
		t.Fatal(err)
	}

	if len(filtered) != 2 {
		t.Fatalf("got %d filtered hits, want 2", len(filtered))
	}

	// The filtered result is exactly the unfiltered ranking minus rejected
	// records, in the same order.
	var want []string
	for _, h := range unfiltered {
		if pred(h.Meta) {
			want = append(want, h.Meta.File)
		}
	}
	for i, h := range filtered {
		if h.Meta.File != want[i] {
			t.Errorf("rank %d: %s, want %s", i, h.Meta.File, want[i])
		}
	}
}

func TestSearchTextDimensionMismatch(t *testing.T) {
	r := NewFromStore(buildStore(t))

	_, err := r.SearchText([]float32{1, 0, 0}, 3, nil)
	var dimErr *domain.DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
}

func TestSearchImageEmptyIndex(t *testing.T) {
	r := NewFromStore(buildStore(t))

	hits, err := r.SearchImage([]float32{1, 0}, 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("expected empty result on empty image index, got %d", len(hits))
	}
}
