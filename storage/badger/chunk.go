package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/dualstore/core"
	"github.com/poiesic/dualstore/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
//
// Returns storage.ChunkRepository interface to enforce abstraction.
func NewChunkRepository(backend *Backend) (storage.ChunkRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &ChunkRepository{backend: backend}, nil
}

// Close releases repository resources. The backend is owned by the
// caller and stays open.
func (r *ChunkRepository) Close() error {
	return nil
}

// ReplaceSource clears every chunk owned by sourceFile and writes the
// given chunks in their place.
func (r *ChunkRepository) ReplaceSource(ctx context.Context, sourceFile string, chunks []*core.Chunk) ([]*core.Chunk, error) {
	// Collect the ids currently owned by the source.
	var staleIDs []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkSourcePrefix(sourceFile)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var umErr error
				id, umErr = storage.UnmarshalID(val)
				return umErr
			})
			if err != nil {
				return err
			}
			staleIDs = append(staleIDs, id)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range staleIDs {
			if err := tx.Delete(makeChunkKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkSourceKey(sourceFile, id)); err != nil {
				return err
			}
		}

		for _, chunk := range chunks {
			chunk.SourceFile = sourceFile
			chunk.InsertedAt = now
			chunk.UpdatedAt = now
			if err := tx.Set(makeChunkKey(chunk.Id), storage.MarshalChunkRecord(chunk)); err != nil {
				return err
			}
			if err := tx.Set(makeChunkSourceKey(sourceFile, chunk.Id), storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// UpdateChunks rewrites existing chunk records.
func (r *ChunkRepository) UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.Id)
			if _, err := tx.Get(key); err != nil {
				if err == badger.ErrKeyNotFound {
					return storage.ErrNotFound
				}
				return err
			}
			chunk.UpdatedAt = time.Now().UTC()
			if err := tx.Set(key, storage.MarshalChunkRecord(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var chunk *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeChunkKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var umErr error
			chunk, umErr = storage.UnmarshalChunkRecord(val)
			return umErr
		})
	}, false)
	return chunk, err
}

// GetChunks retrieves multiple chunks by their IDs, skipping misses.
func (r *ChunkRepository) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := tx.Get(makeChunkKey(id))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			err = item.Value(func(val []byte) error {
				chunk, umErr := storage.UnmarshalChunkRecord(val)
				if umErr != nil {
					return umErr
				}
				chunks = append(chunks, chunk)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// IterateChunks calls fn for every stored chunk record.
func (r *ChunkRepository) IterateChunks(ctx context.Context, fn func(chunk *core.Chunk) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var umErr error
				chunk, umErr = storage.UnmarshalChunkRecord(val)
				return umErr
			})
			if err != nil {
				return err
			}
			if err := fn(chunk); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// FindSimilar finds chunks similar to the given vector.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	var results []*core.SearchResult

	err := r.IterateChunks(ctx, func(chunk *core.Chunk) error {
		if len(chunk.Vector) == 0 {
			return nil
		}
		similarity := dotProduct(vector, chunk.Vector)
		if similarity >= minSimilarity {
			results = append(results, &core.SearchResult{Chunk: chunk, Score: similarity})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
