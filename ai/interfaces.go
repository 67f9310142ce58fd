package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// SimilarityLinker ranks candidate structured entities against a chunk of text.
// It is the last-resort linking method: callers invoke it only after explicit
// identifiers, entity names and section context have all failed to match.
// Implementations must be thread-safe for concurrent use.
type SimilarityLinker interface {
	// SimilarityLink scores each candidate entity against the chunk text and
	// returns matches ordered from most to least similar. Candidates scoring
	// below the implementation's threshold are omitted; an empty result means
	// the chunk should stay unlinked, which is a valid outcome, not an error.
	SimilarityLink(ctx context.Context, chunkText string, candidates []EntityCandidate) ([]EntityMatch, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and SimilarityLinker instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// SimilarityLinker returns the similarity-based entity matching service.
	// The returned SimilarityLinker is safe for concurrent use.
	SimilarityLinker() SimilarityLinker

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
