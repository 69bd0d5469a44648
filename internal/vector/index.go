// Package vector provides vector similarity search over the two corpus
// collections.
package vector

import "context"

// Index defines vector storage and similarity search for one collection.
// The article and ruling corpora live in two independent Index instances.
type Index interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	Size() int
	Close() error
}

// Result is a single similarity hit. ID is the opaque entity identifier the
// collection was populated with; Score is cosine similarity clamped to [0,1].
type Result struct {
	ID    string
	Score float64
}
