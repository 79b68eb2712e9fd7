package vectorindex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// chromemTracer for OpenTelemetry instrumentation.
var chromemTracer = otel.Tracer("intentd.vectorindex.chromem")

// ChromemConfig holds configuration for the embedded chromem-go index.
type ChromemConfig struct {
	// Path is the directory for persistent storage. Empty means a purely
	// in-memory index (used by tests and one-shot evaluation runs).
	Path string

	// Compress enables gzip compression for persisted data.
	Compress bool

	// Collection is the collection name.
	// Default: "intentd_training"
	Collection string

	// VectorSize is the expected embedding dimension. Must match the
	// embedding provider's output dimension.
	// Default: 384
	VectorSize int
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Collection == "" {
		c.Collection = "intentd_training"
	}
	if c.VectorSize == 0 {
		c.VectorSize = 384
	}
}

// Validate validates the configuration.
func (c *ChromemConfig) Validate() error {
	if c.VectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive", ErrInvalidConfig)
	}
	return nil
}

// ChromemIndex implements Index using chromem-go.
//
// chromem-go is an embeddable vector database with zero third-party
// dependencies: pure Go, no external service, optional persistence to gob
// files. It is the default index provider.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   Embedder
	config     ChromemConfig
	logger     *zap.Logger
}

// NewChromemIndex creates a ChromemIndex with the given configuration.
func NewChromemIndex(config ChromemConfig, embedder Embedder, logger *zap.Logger) (*ChromemIndex, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	var db *chromem.DB
	if config.Path == "" {
		db = chromem.NewDB()
	} else {
		expanded, err := expandChromemPath(config.Path)
		if err != nil {
			return nil, fmt.Errorf("expanding path: %w", err)
		}
		if err := os.MkdirAll(expanded, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", expanded, err)
		}
		db, err = chromem.NewPersistentDB(expanded, config.Compress)
		if err != nil {
			return nil, fmt.Errorf("creating chromem DB: %w", err)
		}
	}

	idx := &ChromemIndex{
		db:       db,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}
	if err := idx.openCollection(); err != nil {
		return nil, err
	}

	logger.Info("ChromemIndex initialized",
		zap.String("path", config.Path),
		zap.String("collection", config.Collection),
		zap.Int("vector_size", config.VectorSize),
	)
	return idx, nil
}

// expandChromemPath expands ~ to the home directory.
func expandChromemPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// embeddingFunc bridges the Embedder into chromem. Documents carry
// pre-computed vectors and queries go through Search, so chromem only calls
// this when a document arrives without an embedding.
func (x *ChromemIndex) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return x.embedder.EmbedQuery(ctx, text)
	}
}

func (x *ChromemIndex) openCollection() error {
	collection, err := x.db.GetOrCreateCollection(x.config.Collection, nil, x.embeddingFunc())
	if err != nil {
		return fmt.Errorf("opening collection %s: %w", x.config.Collection, err)
	}
	x.collection = collection
	return nil
}

// Add inserts documents with pre-computed embeddings.
func (x *ChromemIndex) Add(ctx context.Context, docs []Document) error {
	ctx, span := chromemTracer.Start(ctx, "ChromemIndex.Add")
	defer span.End()
	span.SetAttributes(attribute.Int("document_count", len(docs)))

	if len(docs) == 0 {
		return ErrEmptyDocuments
	}

	start := time.Now()
	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		if len(doc.Embedding) != x.config.VectorSize {
			err := fmt.Errorf("%w: document %s has %d dimensions, index expects %d",
				ErrDimensionMismatch, doc.ID, len(doc.Embedding), x.config.VectorSize)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		chromemDocs[i] = chromem.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Embedding: doc.Embedding,
			Metadata:  doc.Metadata,
		}
	}

	if err := x.collection.AddDocuments(ctx, chromemDocs, 4); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("adding documents: %w", err)
	}

	x.logger.Debug("documents indexed",
		zap.Int("count", len(docs)),
		zap.Duration("duration", time.Since(start)),
	)
	RecordAdd(x.config.Collection, len(docs))
	return nil
}

// Search returns up to k nearest documents to the query vector.
func (x *ChromemIndex) Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemIndex.Search")
	defer span.End()
	span.SetAttributes(attribute.Int("k", k))

	if len(vector) != x.config.VectorSize {
		err := fmt.Errorf("%w: query has %d dimensions, index expects %d",
			ErrDimensionMismatch, len(vector), x.config.VectorSize)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// chromem rejects nResults larger than the collection size.
	count := x.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	start := time.Now()
	results, err := x.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying index: %w", err)
	}
	ObserveSearch(x.config.Collection, time.Since(start))

	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			ID:         r.ID,
			Content:    r.Content,
			Similarity: r.Similarity,
			Metadata:   r.Metadata,
		}
	}
	return out, nil
}

// Count returns the number of indexed documents.
func (x *ChromemIndex) Count(_ context.Context) (int, error) {
	return x.collection.Count(), nil
}

// Reset drops and recreates the collection.
func (x *ChromemIndex) Reset(ctx context.Context) error {
	_, span := chromemTracer.Start(ctx, "ChromemIndex.Reset")
	defer span.End()

	if err := x.db.DeleteCollection(x.config.Collection); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("deleting collection %s: %w", x.config.Collection, err)
	}
	return x.openCollection()
}

// Close releases resources. The embedded DB has no connection to close.
func (x *ChromemIndex) Close() error {
	return nil
}
