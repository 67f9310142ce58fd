package mock

import (
	"context"
	"slices"
	"strings"

	"github.com/poiesic/dualstore/ai"
)

// MockSimilarityLinker is a test double for ai.SimilarityLinker.
// It allows custom behavior injection via a function field.
type MockSimilarityLinker struct {
	// SimilarityLinkFunc is called by SimilarityLink if set.
	// If nil, uses default deterministic token-overlap scoring.
	SimilarityLinkFunc func(ctx context.Context, chunkText string, candidates []ai.EntityCandidate) ([]ai.EntityMatch, error)

	callCount int
}

// NewMockSimilarityLinker creates a mock linker with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockLinker().
func NewMockSimilarityLinker() *MockSimilarityLinker {
	return &MockSimilarityLinker{}
}

// SimilarityLink scores candidates by token overlap with the chunk text.
// The default behavior is deterministic: a candidate matches when at least
// half of its display tokens appear in the chunk, and matches are returned
// in descending score order.
func (m *MockSimilarityLinker) SimilarityLink(ctx context.Context, chunkText string, candidates []ai.EntityCandidate) ([]ai.EntityMatch, error) {
	m.callCount++

	if m.SimilarityLinkFunc != nil {
		return m.SimilarityLinkFunc(ctx, chunkText, candidates)
	}

	chunkTokens := tokenSet(chunkText)
	var matches []ai.EntityMatch
	for _, candidate := range candidates {
		score := overlapScore(chunkTokens, tokens(candidate.Display))
		if score >= 0.5 {
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
	return matches, nil
}

// CallCount returns the number of times SimilarityLink was called.
func (m *MockSimilarityLinker) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockSimilarityLinker) Reset() {
	m.callCount = 0
	m.SimilarityLinkFunc = nil
}

func tokens(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tokens(text) {
		set[tok] = true
	}
	return set
}

// overlapScore is the fraction of candidate tokens present in the chunk.
func overlapScore(chunkTokens map[string]bool, candidateTokens []string) float32 {
	if len(candidateTokens) == 0 {
		return 0
	}
	matched := 0
	for _, tok := range candidateTokens {
		if chunkTokens[tok] {
			matched++
		}
	}
	return float32(matched) / float32(len(candidateTokens))
}
