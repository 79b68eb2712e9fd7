package vectorindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// stubEmbedder satisfies Embedder for index tests. The index receives
// pre-computed vectors in Documents and query calls, so the stub never runs.
type stubEmbedder struct{ dim int }

func (s *stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, s.dim)
		out[i][0] = 1
	}
	return out, nil
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	v := make([]float32, s.dim)
	v[0] = 1
	return v, nil
}

func newTestIndex(t *testing.T) *ChromemIndex {
	t.Helper()
	idx, err := NewChromemIndex(ChromemConfig{
		Collection: "test",
		VectorSize: 3,
	}, &stubEmbedder{dim: 3}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return idx
}

func testDocs() []Document {
	return []Document{
		{ID: "row-0", Content: "fee question", Embedding: []float32{1, 0, 0}, Metadata: map[string]string{"category": "namjari_fee"}},
		{ID: "row-1", Content: "fee amount", Embedding: []float32{0.9, 0.1, 0}, Metadata: map[string]string{"category": "namjari_fee"}},
		{ID: "row-2", Content: "greeting", Embedding: []float32{0, 0, 1}, Metadata: map[string]string{"category": "greetings"}},
	}
}

func TestChromemIndexAddAndSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, testDocs()))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "row-0", results[0].ID)
	assert.Equal(t, "row-1", results[1].ID)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
	assert.Equal(t, "namjari_fee", results[0].Metadata["category"])
	assert.Equal(t, "fee question", results[0].Content)
}

func TestChromemIndexSearchClampsK(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, testDocs()))

	// k larger than the collection must not error.
	results, err := idx.Search(ctx, []float32{0, 0, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, "row-2", results[0].ID)
}

func TestChromemIndexAddEmpty(t *testing.T) {
	idx := newTestIndex(t)
	err := idx.Add(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyDocuments)
}

func TestChromemIndexDimensionMismatch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	err := idx.Add(ctx, []Document{{ID: "bad", Content: "x", Embedding: []float32{1, 0}}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	require.NoError(t, idx.Add(ctx, testDocs()))
	_, err = idx.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestChromemIndexReset(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, testDocs()))

	require.NoError(t, idx.Reset(ctx))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// Index stays usable after a reset.
	require.NoError(t, idx.Add(ctx, testDocs()[:1]))
	n, err = idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestChromemIndexAddOverwritesByID(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, testDocs()))

	// Re-adding the same IDs replaces points instead of duplicating them.
	require.NoError(t, idx.Add(ctx, testDocs()))
	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestChromemConfigValidate(t *testing.T) {
	cfg := ChromemConfig{}
	cfg.ApplyDefaults()
	assert.Equal(t, "intentd_training", cfg.Collection)
	assert.Equal(t, 384, cfg.VectorSize)
	assert.NoError(t, cfg.Validate())

	bad := ChromemConfig{Collection: "c", VectorSize: -1}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}

func TestFactoryUnsupportedProvider(t *testing.T) {
	_, err := New(Config{Provider: "pinecone"}, &stubEmbedder{dim: 3}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFactoryDefaultsToChromem(t *testing.T) {
	idx, err := New(Config{Chromem: ChromemConfig{VectorSize: 3}}, &stubEmbedder{dim: 3}, zaptest.NewLogger(t))
	require.NoError(t, err)
	_, ok := idx.(*ChromemIndex)
	assert.True(t, ok)
}
