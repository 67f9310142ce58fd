// Package mock provides deterministic in-process test doubles for the ai
// package interfaces.
//
// MockEmbedder derives unit vectors from a hash of the input text, so the
// same text always embeds to the same vector without any network dependency.
// MockSimilarityLinker scores candidates by token overlap. Both expose
// function fields for injecting custom behavior in individual tests:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//		return nil, errors.New("service unavailable")
//	}
package mock
