// Package store holds the dual-modality vector store: one inner-product index
// per modality (text, image) plus a metadata sequence kept positionally
// aligned with it. The pairing is the sole join key between a vector and its
// provenance, so both sides are owned by one container whose only mutation
// appends to index and metadata together.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"visionrag/internal/domain"
)

// Persisted layout: fixed file names under one base directory.
const (
	textIndexFile  = "text.faiss"
	imageIndexFile = "image.faiss"
	textMetaFile   = "text_meta.json"
	imageMetaFile  = "image_meta.json"
)

type modality struct {
	index *flatIndex
	meta  []domain.Metadata
}

func (m *modality) add(vec []float32, meta domain.Metadata) error {
	if err := m.index.add(vec); err != nil {
		return err
	}
	m.meta = append(m.meta, meta)
	return nil
}

// DualStore holds the text and image indices. It is built by exactly one
// writer during ingestion and read-only thereafter; there is no update or
// delete path, and re-ingestion rebuilds the store from scratch.
type DualStore struct {
	text  modality
	image modality
}

// New creates an empty store with the given fixed dimensions.
func New(dimText, dimImage int) *DualStore {
	return &DualStore{
		text:  modality{index: newFlatIndex(dimText)},
		image: modality{index: newFlatIndex(dimImage)},
	}
}

// AddText appends a text vector and its metadata.
func (s *DualStore) AddText(vec []float32, meta domain.Metadata) error {
	return s.text.add(vec, meta)
}

// AddImage appends an image vector and its metadata.
func (s *DualStore) AddImage(vec []float32, meta domain.Metadata) error {
	return s.image.add(vec, meta)
}

func (s *DualStore) TextCount() int  { return s.text.index.Count() }
func (s *DualStore) ImageCount() int { return s.image.index.Count() }

func (s *DualStore) TextDim() int  { return s.text.index.Dim() }
func (s *DualStore) ImageDim() int { return s.image.index.Dim() }

// SearchText returns the top-k text hits for a pre-normalized query vector,
// highest similarity first, ties broken by insertion order. An empty index
// yields an empty result.
func (s *DualStore) SearchText(query []float32, k int) ([]domain.Hit, error) {
	return s.text.searchHits(query, k)
}

// SearchImage is SearchText for the image index.
func (s *DualStore) SearchImage(query []float32, k int) ([]domain.Hit, error) {
	return s.image.searchHits(query, k)
}

func (m *modality) searchHits(query []float32, k int) ([]domain.Hit, error) {
	ranked, err := m.index.search(query, k)
	if err != nil {
		return nil, err
	}
	hits := make([]domain.Hit, 0, len(ranked))
	for _, r := range ranked {
		hits = append(hits, domain.Hit{Score: r.score, Meta: m.meta[r.pos]})
	}
	return hits, nil
}

// Save persists both indices and both metadata sequences under dir. The write
// is best-effort sequential, not atomic: a crash mid-write can leave a mixed
// state, and re-running ingestion rebuilds it.
func (s *DualStore) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	if err := writeIndexFile(filepath.Join(dir, textIndexFile), s.text.index); err != nil {
		return fmt.Errorf("failed to write text index: %w", err)
	}
	if err := writeIndexFile(filepath.Join(dir, imageIndexFile), s.image.index); err != nil {
		return fmt.Errorf("failed to write image index: %w", err)
	}
	if err := writeMetaFile(filepath.Join(dir, textMetaFile), s.text.meta); err != nil {
		return fmt.Errorf("failed to write text metadata: %w", err)
	}
	if err := writeMetaFile(filepath.Join(dir, imageMetaFile), s.image.meta); err != nil {
		return fmt.Errorf("failed to write image metadata: %w", err)
	}
	return nil
}

// Load reconstructs a store from the fixed layout under dir. A missing
// directory or missing file yields ErrStoreNotFound. A metadata sequence
// whose length disagrees with its index is a hard error: the positional
// pairing is the only join key, and a misaligned store silently corrupts
// every answer derived from it.
func Load(dir string) (*DualStore, error) {
	for _, name := range []string{textIndexFile, imageIndexFile, textMetaFile, imageMetaFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return nil, fmt.Errorf("%w: missing %s under %s", domain.ErrStoreNotFound, name, dir)
		}
	}

	textIdx, err := readIndexFile(filepath.Join(dir, textIndexFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load text index: %w", err)
	}
	imageIdx, err := readIndexFile(filepath.Join(dir, imageIndexFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load image index: %w", err)
	}
	textMeta, err := readMetaFile(filepath.Join(dir, textMetaFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load text metadata: %w", err)
	}
	imageMeta, err := readMetaFile(filepath.Join(dir, imageMetaFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load image metadata: %w", err)
	}

	if len(textMeta) != textIdx.Count() {
		return nil, fmt.Errorf("text metadata count %d does not match index count %d", len(textMeta), textIdx.Count())
	}
	if len(imageMeta) != imageIdx.Count() {
		return nil, fmt.Errorf("image metadata count %d does not match index count %d", len(imageMeta), imageIdx.Count())
	}

	return &DualStore{
		text:  modality{index: textIdx, meta: textMeta},
		image: modality{index: imageIdx, meta: imageMeta},
	}, nil
}

func writeMetaFile(path string, meta []domain.Metadata) error {
	if meta == nil {
		meta = []domain.Metadata{}
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func readMetaFile(path string) ([]domain.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta []domain.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}
