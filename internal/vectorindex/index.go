// Package vectorindex implements the serialized similarity index the
// retrieval path searches at query time. Vectors, positional chunk
// references, and the build manifest live together in a single bolt file,
// so an index can never be paired with metadata from a different build.
package vectorindex

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketVectors  = []byte("vectors")
	bucketRefs     = []byte("refs")
	bucketManifest = []byte("manifest")
	keyManifest    = []byte("manifest")
)

// Manifest records how the index was built. ChunkSize is persisted here so
// query-time re-chunking always uses the size the vectors were built with.
type Manifest struct {
	Dimension      int       `json:"dimension"`
	ChunkSize      int       `json:"chunk_size"`
	EmbeddingModel string    `json:"embedding_model"`
	BuiltAt        time.Time `json:"built_at"`
}

// ChunkRef locates a chunk: a source document and its ordinal within it.
type ChunkRef struct {
	Document string `json:"doc"`
	Ordinal  int    `json:"ord"`
}

// Entry pairs an embedding vector with the chunk it was computed from.
type Entry struct {
	Vector []float32
	Ref    ChunkRef
}

// Hit is one search result: the vector's position in the index and its
// inner-product similarity to the query.
type Hit struct {
	Position int
	Score    float32
}

// Index is an in-memory flat inner-product index loaded from a bolt file.
// It is read-only after Open and safe for concurrent use.
type Index struct {
	vectors  [][]float32
	refs     []ChunkRef
	manifest Manifest
}

// Build writes a fresh index file. Vectors must already be L2-normalized;
// inner product over normalized vectors is cosine similarity.
func Build(path string, manifest Manifest, entries []Entry) error {
	if manifest.ChunkSize <= 0 {
		return fmt.Errorf("manifest chunk size must be positive")
	}
	if manifest.Dimension <= 0 {
		return fmt.Errorf("manifest dimension must be positive")
	}
	for i, e := range entries {
		if len(e.Vector) != manifest.Dimension {
			return fmt.Errorf("entry %d has dimension %d, expected %d", i, len(e.Vector), manifest.Dimension)
		}
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to open index file: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	return db.Update(func(tx *bbolt.Tx) error {
		// Drop stale buckets so a rebuild never leaves orphaned positions.
		for _, name := range [][]byte{bucketVectors, bucketRefs, bucketManifest} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return err
				}
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}

		vectors := tx.Bucket(bucketVectors)
		refs := tx.Bucket(bucketRefs)
		for i, e := range entries {
			key := itob(i)
			if err := vectors.Put(key, vectorToBytes(e.Vector)); err != nil {
				return err
			}
			refData, err := json.Marshal(e.Ref)
			if err != nil {
				return err
			}
			if err := refs.Put(key, refData); err != nil {
				return err
			}
		}

		manifestData, err := json.Marshal(manifest)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketManifest).Put(keyManifest, manifestData)
	})
}

// Open loads an index file fully into memory and releases the file handle,
// so a later rebuild by the indexer does not contend on the bolt lock.
func Open(path string) (*Index, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	ix := &Index{}
	err = db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket(bucketManifest)
		if mb == nil {
			return fmt.Errorf("index file has no manifest bucket")
		}
		manifestData := mb.Get(keyManifest)
		if manifestData == nil {
			return fmt.Errorf("index file has no manifest")
		}
		if err := json.Unmarshal(manifestData, &ix.manifest); err != nil {
			return fmt.Errorf("failed to decode manifest: %w", err)
		}

		vb := tx.Bucket(bucketVectors)
		rb := tx.Bucket(bucketRefs)
		if vb == nil || rb == nil {
			return fmt.Errorf("index file is missing vector buckets")
		}

		err := vb.ForEach(func(k, v []byte) error {
			vec, err := bytesToVector(v)
			if err != nil {
				return err
			}
			if len(vec) != ix.manifest.Dimension {
				return fmt.Errorf("vector at position %d has dimension %d, expected %d", btoi(k), len(vec), ix.manifest.Dimension)
			}
			ix.vectors = append(ix.vectors, vec)
			return nil
		})
		if err != nil {
			return err
		}

		return rb.ForEach(func(k, v []byte) error {
			var ref ChunkRef
			if err := json.Unmarshal(v, &ref); err != nil {
				return err
			}
			ix.refs = append(ix.refs, ref)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if len(ix.vectors) != len(ix.refs) {
		return nil, fmt.Errorf("index corrupt: %d vectors but %d refs", len(ix.vectors), len(ix.refs))
	}
	return ix, nil
}

// Search returns up to k nearest neighbors by inner product, best first.
// Ties break on position so repeated searches are deterministic.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	if len(query) != ix.manifest.Dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", ix.manifest.Dimension, len(query))
	}

	hits := make([]Hit, 0, len(ix.vectors))
	for pos, vec := range ix.vectors {
		hits = append(hits, Hit{Position: pos, Score: innerProduct(query, vec)})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Position < hits[j].Position
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Metadata resolves an index position to its chunk reference. The ok result
// is false for sentinel (-1) or out-of-range positions.
func (ix *Index) Metadata(pos int) (ChunkRef, bool) {
	if pos < 0 || pos >= len(ix.refs) {
		return ChunkRef{}, false
	}
	return ix.refs[pos], true
}

// ChunkSize returns the chunk size the index was built with.
func (ix *Index) ChunkSize() int { return ix.manifest.ChunkSize }

// Dimension returns the embedding dimension of the index.
func (ix *Index) Dimension() int { return ix.manifest.Dimension }

// Len returns the number of vectors in the index.
func (ix *Index) Len() int { return len(ix.vectors) }

// Manifest returns the build manifest.
func (ix *Index) Manifest() Manifest { return ix.manifest }

// NormalizeL2 scales a vector to unit length in place and returns it.
// Zero vectors are returned unchanged.
func NormalizeL2(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func innerProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func vectorToBytes(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("vector data length %d is not a multiple of 4", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}

func itob(i int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(i))
	return b
}

func btoi(b []byte) int {
	return int(binary.BigEndian.Uint64(b))
}
