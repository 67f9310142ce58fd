package search

import (
	"iter"

	"github.com/poiesic/dualstore/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(ids []core.ID)
	AfterEntityMatch(table string, rowIDs []string)
	AfterLinkedRetrieval(iter.Seq[core.ID])
	AfterChunkRetrieval(chunks []*core.Chunk)
	SemanticAndLinkedHit(chunk *core.Chunk)
	SemanticHit(chunk *core.Chunk)
	LinkedHit(chunk *core.Chunk)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                           {}
func (n *noopMonitor) AfterSemanticSearch(_ []core.ID)          {}
func (n *noopMonitor) AfterEntityMatch(_ string, _ []string)    {}
func (n *noopMonitor) AfterLinkedRetrieval(_ iter.Seq[core.ID]) {}
func (n *noopMonitor) AfterChunkRetrieval(_ []*core.Chunk)      {}
func (n *noopMonitor) SemanticAndLinkedHit(_ *core.Chunk)       {}
func (n *noopMonitor) SemanticHit(_ *core.Chunk)                {}
func (n *noopMonitor) LinkedHit(_ *core.Chunk)                  {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)            {}
