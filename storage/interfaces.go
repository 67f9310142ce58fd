package storage

import (
	"context"

	"github.com/poiesic/dualstore/core"
)

// TableRepository provides operations for the structured store.
// Implementations must be thread-safe and support concurrent access.
type TableRepository interface {
	// Materialize fully rebuilds a table's row set: any previously stored
	// rows for the table are cleared before the new rows are written, so
	// reproducibility is a property of the source, never of accumulated
	// mutation history. Columns fixes the stored column order.
	Materialize(ctx context.Context, table string, columns []string, rows [][]string) error

	// Columns returns the stored column order of a table.
	// Returns ErrNotFound if the table has never been materialized.
	Columns(ctx context.Context, table string) ([]string, error)

	// Rows returns every stored row of a table in insertion order.
	Rows(ctx context.Context, table string) ([][]string, error)

	// Query returns the rows matching a predicate, in insertion order.
	Query(ctx context.Context, table string, predicate func(row []string) bool) ([][]string, error)

	// ColumnValues returns every stored value of a table column in row
	// order. Unknown tables and columns yield an empty slice, not an
	// error: an absent domain is simply empty.
	ColumnValues(ctx context.Context, table, column string) ([]string, error)

	// DropTable removes a table's rows and column record. Table specs in
	// the ingestion state are never dropped automatically; callers invoke
	// this only on explicit operator confirmation.
	DropTable(ctx context.Context, table string) error

	// Close closes the repository and releases resources.
	Close() error
}

// ChunkRepository provides operations for the semantic corpus.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	// ReplaceSource clears every chunk owned by sourceFile and writes the
	// given chunks in their place. Partial updates are forbidden: a stale
	// chunk surviving a source change is a silent correctness bug.
	// Sets InsertedAt/UpdatedAt timestamps and returns the stored chunks.
	ReplaceSource(ctx context.Context, sourceFile string, chunks []*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks rewrites existing chunk records, refreshing UpdatedAt.
	// Returns ErrNotFound if any chunk does not exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk does not exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// IterateChunks calls fn for every stored chunk. Iteration stops at
	// the first error, which is returned to the caller.
	IterateChunks(ctx context.Context, fn func(chunk *core.Chunk) error) error

	// FindSimilar finds chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit
	// results, ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// Close closes the repository and releases resources.
	Close() error
}

// StateRepository persists the project's ingestion state as one
// serialized document. Save is a single critical section: concurrent
// writers are serialized by the implementation.
type StateRepository interface {
	// Load reads the persisted state, returning a fresh empty state when
	// none has been saved yet. A document that fails to parse returns
	// ErrStateCorruption; implementations must never auto-repair by
	// discarding state.
	Load(ctx context.Context) (*core.IngestionState, error)

	// Save atomically replaces the persisted state document.
	Save(ctx context.Context, state *core.IngestionState) error

	// Close closes the repository and releases resources.
	Close() error
}
