// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai defines the interfaces for external AI services consumed by the
// ingestion pipeline: text embedding and similarity-based entity linking.
//
// The pipeline treats both services as opaque synchronous collaborators. The
// embedder turns chunk text into vectors for corpus search; the similarity
// linker is the last-resort cross-reference method, consulted only after the
// deterministic linking methods have failed.
//
// Two implementations ship with this module:
//
//   - ai/openai: production implementation backed by any OpenAI-compatible
//     embedding API (OpenAI, Ollama, LocalAI, vLLM) via langchaingo.
//   - ai/mock: deterministic in-process doubles for tests, with function
//     fields for injecting custom behavior.
//
// Use a Provider to construct and share configured service instances:
//
//	cfg := ai.NewConfig(ai.WithEmbeddingHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//		return err
//	}
//	defer provider.Close()
//	vec, err := provider.Embedder().EmbedText(ctx, "quarterly revenue summary")
package ai
