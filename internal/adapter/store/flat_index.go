package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"visionrag/internal/domain"
)

// File header (v1):
//   0..7   magic "VRAGIP01"
//   8..11  dim (uint32, little endian)
//   12..15 count (uint32, little endian)
// followed by count*dim little-endian float32 values.
var indexMagic = [8]byte{'V', 'R', 'A', 'G', 'I', 'P', '0', '1'}

const indexHeaderSize = 16

// flatIndex is an append-only inner-product index over L2-normalized vectors.
// Search is brute force; with normalized vectors the inner product equals the
// cosine similarity.
type flatIndex struct {
	dim     int
	vectors [][]float32
}

func newFlatIndex(dim int) *flatIndex {
	return &flatIndex{dim: dim}
}

func (ix *flatIndex) Count() int { return len(ix.vectors) }

func (ix *flatIndex) Dim() int { return ix.dim }

func (ix *flatIndex) add(vec []float32) error {
	if len(vec) != ix.dim {
		return &domain.DimensionError{Want: ix.dim, Got: len(vec)}
	}
	stored := make([]float32, ix.dim)
	copy(stored, vec)
	ix.vectors = append(ix.vectors, stored)
	return nil
}

type ranked struct {
	pos   int
	score float64
}

// search returns the top-k positions by inner product, highest first. Ties
// are broken by insertion order (earlier-inserted wins).
func (ix *flatIndex) search(query []float32, k int) ([]ranked, error) {
	if len(query) != ix.dim {
		return nil, &domain.DimensionError{Want: ix.dim, Got: len(query)}
	}
	if len(ix.vectors) == 0 {
		return nil, nil
	}

	if k < 1 {
		k = 1
	}
	if k > len(ix.vectors) {
		k = len(ix.vectors)
	}

	scores := make([]ranked, len(ix.vectors))
	for i, vec := range ix.vectors {
		var dot float64
		for j := range vec {
			dot += float64(query[j]) * float64(vec[j])
		}
		scores[i] = ranked{pos: i, score: dot}
	}

	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	return scores[:k], nil
}

// writeTo serializes the index in the fixed binary layout.
func (ix *flatIndex) writeTo(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.Write(indexMagic[:]); err != nil {
		return err
	}
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(ix.dim))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(ix.vectors)))
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}

	var buf [4]byte
	for _, vec := range ix.vectors {
		for _, v := range vec {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
			if _, err := bw.Write(buf[:]); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// readFlatIndex reconstructs an index from the binary layout.
func readFlatIndex(r io.Reader) (*flatIndex, error) {
	br := bufio.NewReader(r)

	var header [indexHeaderSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("index header truncated: %w", err)
	}
	var magic [8]byte
	copy(magic[:], header[:8])
	if magic != indexMagic {
		return nil, fmt.Errorf("invalid index file header (magic mismatch)")
	}

	dim := int(binary.LittleEndian.Uint32(header[8:12]))
	count := int(binary.LittleEndian.Uint32(header[12:16]))
	if dim <= 0 {
		return nil, fmt.Errorf("invalid index dimension %d", dim)
	}

	ix := newFlatIndex(dim)
	ix.vectors = make([][]float32, 0, count)

	row := make([]byte, dim*4)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(br, row); err != nil {
			return nil, fmt.Errorf("index data truncated at vector %d: %w", i, err)
		}
		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(row[j*4 : j*4+4]))
		}
		ix.vectors = append(ix.vectors, vec)
	}

	return ix, nil
}

func writeIndexFile(path string, ix *flatIndex) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ix.writeTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readIndexFile(path string) (*flatIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readFlatIndex(f)
}

// NormalizeL2 scales vec to unit length in place and returns it. Zero vectors
// are returned unchanged. Normalization is idempotent, so applying it to an
// already-normalized query is safe.
func NormalizeL2(vec []float32) []float32 {
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
