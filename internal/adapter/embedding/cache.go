package embedding

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"visionrag/internal/port"
)

var bucketEmbeddings = []byte("embeddings")

// CachedTextEmbedder memoizes text embeddings in a bbolt file keyed by
// model+text digest. Ingestion calls the embedding API once per distinct
// chunk; re-running a build over an unchanged corpus becomes cheap.
type CachedTextEmbedder struct {
	inner port.TextEmbedder
	db    *bbolt.DB
}

var _ port.TextEmbedder = (*CachedTextEmbedder)(nil)

func NewCachedTextEmbedder(path string, inner port.TextEmbedder) (*CachedTextEmbedder, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEmbeddings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return &CachedTextEmbedder{inner: inner, db: db}, nil
}

func (c *CachedTextEmbedder) Close() error {
	return c.db.Close()
}

func (c *CachedTextEmbedder) EmbedTexts(texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))

	var missing []string
	var missingAt []int

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for i, text := range texts {
			data := b.Get(c.key(text))
			if data == nil {
				missing = append(missing, text)
				missingAt = append(missingAt, i)
				continue
			}
			var vec []float32
			if err := json.Unmarshal(data, &vec); err != nil || len(vec) != c.inner.Dimension() {
				// Stale or corrupt entry: re-embed.
				missing = append(missing, text)
				missingAt = append(missingAt, i)
				continue
			}
			results[i] = vec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(missing) == 0 {
		return results, nil
	}

	fresh, err := c.inner.EmbedTexts(missing)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missing) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(missing))
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for j, vec := range fresh {
			results[missingAt[j]] = vec
			data, err := json.Marshal(vec)
			if err != nil {
				return err
			}
			if err := b.Put(c.key(missing[j]), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

func (c *CachedTextEmbedder) key(text string) []byte {
	hash := sha256.Sum256([]byte(c.inner.ModelName() + "\x00" + text))
	return hash[:]
}

func (c *CachedTextEmbedder) Dimension() int    { return c.inner.Dimension() }
func (c *CachedTextEmbedder) ModelName() string { return c.inner.ModelName() }
