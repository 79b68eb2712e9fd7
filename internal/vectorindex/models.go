package vectorindex

// Document is one indexed training text with its pre-computed embedding.
type Document struct {
	// ID is the unique identifier, stable across rebuilds. The classifier
	// uses the dataset row index (e.g. "row-000042").
	ID string

	// Content is the original text.
	Content string

	// Embedding is the pre-computed vector for Content. Required; the index
	// never re-embeds documents.
	Embedding []float32

	// Metadata carries additional key-value pairs (e.g. category label).
	Metadata map[string]string
}

// SearchResult is one nearest-neighbor candidate returned by an index.
type SearchResult struct {
	// ID is the document identifier.
	ID string

	// Content is the document text.
	Content string

	// Similarity is the cosine similarity to the query vector. Both backends
	// return it in [0,1] for normalized embeddings (higher = more similar).
	Similarity float32

	// Metadata is the stored document metadata.
	Metadata map[string]string
}
