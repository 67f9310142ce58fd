// Package reembed provides offline maintenance passes over the corpus.
//
// Two passes are available. The Reembedder regenerates every chunk's
// embedding vector in batches, with retry and exponential backoff around
// the embedding service; run it after changing embedding models. The
// Relinker re-runs cross-reference linking over every chunk against the
// current ingestion state; run it after ingesting tables that earlier
// chunks may reference. Relinking is monotone, so a pass can upgrade links
// but never weaken them.
//
// Both passes report progress to a configurable writer and check for
// cancellation between batches.
package reembed
