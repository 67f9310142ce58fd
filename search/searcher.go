package search

import (
	"context"
	"log/slog"
	"maps"
	"sort"

	"github.com/poiesic/dualstore/ai"
	"github.com/poiesic/dualstore/core"
	"github.com/poiesic/dualstore/linker"
	"github.com/poiesic/dualstore/storage"
)

// Searcher provides hybrid search over the corpus: semantic similarity on
// chunk vectors combined with entity-linked retrieval through the
// db-to-rag index.
// defaultMinSemanticScore is the cosine similarity floor below which a
// chunk is not considered a semantic hit.
const defaultMinSemanticScore = 0.60

type Searcher struct {
	chunks           storage.ChunkRepository
	states           storage.StateRepository
	embedder         ai.Embedder
	linker           *linker.Linker
	minSemanticScore float32
	logger           *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "searcher")
		return nil
	}
}

// WithMinSemanticScore sets the similarity floor for semantic hits.
// Default is 0.60.
func WithMinSemanticScore(min float32) Option {
	return func(s *Searcher) error {
		if min <= 0 || min > 1 {
			return ErrInvalidMinSemanticScore
		}
		s.minSemanticScore = min
		return nil
	}
}

// NewSearcher creates a new searcher. Entity references in queries are
// resolved with the deterministic linking methods only; the similarity
// fallback is deliberately left out so a vague query cannot fabricate an
// entity hit.
func NewSearcher(
	chunks storage.ChunkRepository,
	states storage.StateRepository,
	tables storage.TableRepository,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if states == nil {
		return nil, ErrStateRepositoryRequired
	}
	if tables == nil {
		return nil, ErrTableRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	queryLinker, err := linker.New(tables, nil)
	if err != nil {
		return nil, err
	}

	s := &Searcher{
		chunks:           chunks,
		states:           states,
		embedder:         provider.Embedder(),
		linker:           queryLinker,
		minSemanticScore: defaultMinSemanticScore,
		logger:           slog.Default().With("component", "searcher"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches the corpus for chunks relevant to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, nil)
}

// FindSimilarWithMonitor searches with monitoring callbacks at each stage.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	// 1. Semantic search over chunk vectors
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.chunks.FindSimilar(ctx, embedding, s.minSemanticScore, maxHits)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}

	semanticSet := make(map[core.ID]bool)
	semanticScores := make(map[core.ID]float32)
	semanticIds := make([]core.ID, 0, len(matches))
	for _, match := range matches {
		semanticSet[match.Chunk.Id] = true
		semanticScores[match.Chunk.Id] = match.Score
		semanticIds = append(semanticIds, match.Chunk.Id)
	}
	monitor.AfterSemanticSearch(semanticIds)

	// 2. Resolve entity references in the query itself
	state, err := s.states.Load(ctx)
	if err != nil {
		s.logger.Error("error loading ingestion state", "err", err)
		return nil, err
	}

	probe := &core.Chunk{Content: query}
	if _, err := s.linker.Link(ctx, probe, state); err != nil {
		s.logger.Error("error linking query to entities", "err", err)
		return nil, err
	}

	// 3. Follow the db-to-rag index from matched entities to their chunks
	linkedSet := make(map[core.ID]bool)
	if probe.Linked() {
		monitor.AfterEntityMatch(probe.LinkedTable, probe.LinkedIDs)
		for _, rowID := range probe.LinkedIDs {
			for _, chunkID := range state.ChunksForEntity(probe.LinkedTable, rowID) {
				linkedSet[chunkID] = true
			}
		}
	}
	monitor.AfterLinkedRetrieval(maps.Keys(linkedSet))

	// 4. Combine and score results
	allIds := make(map[core.ID]bool)
	for id := range semanticSet {
		allIds[id] = true
	}
	for id := range linkedSet {
		allIds[id] = true
	}

	if len(allIds) == 0 {
		return []*core.SearchResult{}, nil
	}

	uniqueIds := make([]core.ID, 0, len(allIds))
	for id := range allIds {
		uniqueIds = append(uniqueIds, id)
	}

	chunks, err := s.chunks.GetChunks(ctx, uniqueIds...)
	if err != nil {
		s.logger.Error("error retrieving chunks", "chunkCount", len(uniqueIds), "err", err)
		return nil, err
	}
	monitor.AfterChunkRetrieval(chunks)

	results := make([]*core.SearchResult, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}

		inSemantic := semanticSet[chunk.Id]
		inLinked := linkedSet[chunk.Id]

		var score float32
		if inSemantic && inLinked {
			// In both: boost by 1.5x, weighted by similarity score
			score = 1.5 * semanticScores[chunk.Id]
			monitor.SemanticAndLinkedHit(chunk)
		} else if inLinked {
			// Linked only: 1.2
			score = 1.2
			monitor.LinkedHit(chunk)
		} else {
			// Semantic only: 1.0, weighted by similarity score
			score = 1.0 * semanticScores[chunk.Id]
			monitor.SemanticHit(chunk)
		}

		// Apply verbatim match boost
		if containsAllQueryWords(chunk.Content, query) {
			score += 0.3
		}

		results = append(results, &core.SearchResult{
			Chunk: chunk,
			Score: score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}
