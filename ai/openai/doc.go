// Package openai implements the ai package interfaces against any
// OpenAI-compatible API (OpenAI, Ollama, LocalAI, vLLM) via langchaingo.
//
// The embedder wraps langchaingo's embeddings client. The similarity linker
// builds on the same embedder: it embeds the chunk text together with every
// candidate entity's display string in one batch call and ranks candidates
// by cosine similarity, filtering anything below Config.MinSimilarity.
//
// Construct services through NewProvider so the embedder instance is shared:
//
//	provider, err := openai.NewProvider(ai.NewConfig(
//		ai.WithEmbeddingHost("http://localhost:11434"),
//		ai.WithEmbeddingModel("embeddinggemma"),
//	))
package openai
