// Package search provides hybrid retrieval over the corpus.
//
// A query is served from two directions at once. The semantic side embeds
// the query and ranks chunk vectors by similarity. The linked side runs the
// query text through the deterministic cross-reference methods; when the
// query names a known entity ("customer 101"), every chunk the db-to-rag
// index ties to that entity becomes a candidate, whether or not its vector
// is close to the query's.
//
// Chunks found by both paths are boosted above either path alone, and an
// exact-words match adds a further boost. The SearchMonitor interface
// exposes each stage for diagnostics.
package search
