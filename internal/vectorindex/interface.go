// Package vectorindex defines the interface to approximate nearest-neighbor
// index providers.
//
// The classifier does not implement ANN search. It hands pre-computed
// embedding vectors to an external index and consumes whatever candidates the
// index returns; approximate results are acceptable.
package vectorindex

import (
	"context"
	"errors"
)

// Sentinel errors for vector index operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDocuments indicates empty or nil documents.
	ErrEmptyDocuments = errors.New("empty or nil documents")

	// ErrDimensionMismatch indicates a vector whose length does not match the
	// configured index dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrConnectionFailed indicates the external index server is unreachable.
	ErrConnectionFailed = errors.New("failed to connect to vector index")
)

// Embedder generates vector embeddings from text.
//
// Equal or similar-meaning texts must produce nearby vectors under cosine
// similarity, and dimensionality must be constant across calls. That is all
// the classifier assumes about it.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts, one per input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query. Some models
	// optimize differently for queries vs documents.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Index is the interface to an external approximate nearest-neighbor index.
//
// Implementations:
//   - ChromemIndex: embedded chromem-go (default, pure Go)
//   - QdrantIndex: external Qdrant server over gRPC
type Index interface {
	// Add inserts documents with pre-computed embeddings into the index.
	Add(ctx context.Context, docs []Document) error

	// Search returns up to k nearest documents to the query vector, ordered
	// by descending similarity. Results are approximate; fewer than k may be
	// returned when the index holds fewer documents.
	Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error)

	// Count returns the number of indexed documents.
	Count(ctx context.Context) (int, error)

	// Reset drops all indexed documents so the index can be rebuilt from
	// scratch. Training is idempotent because of this.
	Reset(ctx context.Context) error

	// Close releases resources held by the index.
	Close() error
}
