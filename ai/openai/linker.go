package openai

import (
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/poiesic/dualstore/ai"
)

// SimilarityLinker implements ai.SimilarityLinker by embedding the chunk text
// and each candidate's display string, then ranking candidates by cosine
// similarity. Candidates below the configured MinSimilarity are dropped.
type SimilarityLinker struct {
	embedder      *Embedder
	minSimilarity float32
	logger        *slog.Logger
}

// newSimilarityLinker is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newSimilarityLinker(config *ai.Config, embedder *Embedder) *SimilarityLinker {
	return &SimilarityLinker{
		embedder:      embedder,
		minSimilarity: config.MinSimilarity,
		logger:        slog.Default().With("component", "openai-similarity-linker"),
	}
}

// NewSimilarityLinker creates a similarity linker backed by its own embedder.
//
// Returns ai.SimilarityLinker interface to enforce abstraction.
func NewSimilarityLinker(config *ai.Config) (ai.SimilarityLinker, error) {
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}
	return newSimilarityLinker(config, embedder), nil
}

// SimilarityLink ranks candidates against the chunk text.
// One batch embedding call covers the chunk and all candidate displays.
func (l *SimilarityLinker) SimilarityLink(ctx context.Context, chunkText string, candidates []ai.EntityCandidate) ([]ai.EntityMatch, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, chunkText)
	for _, candidate := range candidates {
		texts = append(texts, candidate.Display)
	}

	vectors, err := l.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		l.logger.Error("failed to embed chunk and candidates", "candidates", len(candidates), "err", err)
		return nil, err
	}
	if len(vectors) != len(texts) {
		l.logger.Warn("embedder returned unexpected vector count",
			"want", len(texts), "got", len(vectors))
		return nil, nil
	}

	chunkVec := vectors[0]
	var matches []ai.EntityMatch
	for i, candidate := range candidates {
		score := cosineSimilarity(chunkVec, vectors[i+1])
		if score >= l.minSimilarity {
			matches = append(matches, ai.EntityMatch{Candidate: candidate, Score: score})
		}
	}

	slices.SortStableFunc(matches, func(a, b ai.EntityMatch) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	l.logger.Debug("ranked similarity candidates",
		"candidates", len(candidates), "matches", len(matches))
	return matches, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
