package ingestion

import "errors"

var (
	// ErrExtractorRequired is returned when an extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrTableRepositoryRequired is returned when a table repository is not provided.
	ErrTableRepositoryRequired = errors.New("table repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrStateRepositoryRequired is returned when a state repository is not provided.
	ErrStateRepositoryRequired = errors.New("state repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrMergeCandidate is returned for a table whose column set overlaps an
	// existing table under a different name. The collision is fatal to that
	// table only and needs explicit operator resolution.
	ErrMergeCandidate = errors.New("table is a merge candidate")
)
