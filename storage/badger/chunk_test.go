package badger

import (
	"context"
	"testing"

	"github.com/poiesic/dualstore/core"
	"github.com/poiesic/dualstore/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupChunkRepo(t *testing.T) storage.ChunkRepository {
	t.Helper()
	repo, err := NewChunkRepository(setupBackend(t))
	require.NoError(t, err)
	return repo
}

func TestReplaceSourceAndGet(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	chunks := []*core.Chunk{
		{Id: 1, SourceFile: "notes.docx", Content: "first", Vector: []float32{1, 0}},
		{Id: 2, SourceFile: "notes.docx", Content: "second", Vector: []float32{0, 1}},
	}

	stored, err := repo.ReplaceSource(ctx, "notes.docx", chunks)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.False(t, stored[0].InsertedAt.IsZero())

	got, err := repo.GetChunk(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Content)
	assert.Equal(t, []float32{1, 0}, got.Vector)
}

func TestReplaceSourceClearsStaleChunks(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	_, err := repo.ReplaceSource(ctx, "notes.docx", []*core.Chunk{
		{Id: 1, SourceFile: "notes.docx", Content: "first"},
		{Id: 2, SourceFile: "notes.docx", Content: "second"},
	})
	require.NoError(t, err)

	_, err = repo.ReplaceSource(ctx, "notes.docx", []*core.Chunk{
		{Id: 3, SourceFile: "notes.docx", Content: "replacement"},
	})
	require.NoError(t, err)

	_, err = repo.GetChunk(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = repo.GetChunk(ctx, 2)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	got, err := repo.GetChunk(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "replacement", got.Content)
}

func TestReplaceSourceLeavesOtherSourcesAlone(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	_, err := repo.ReplaceSource(ctx, "a.docx", []*core.Chunk{{Id: 1, SourceFile: "a.docx", Content: "a"}})
	require.NoError(t, err)
	_, err = repo.ReplaceSource(ctx, "b.docx", []*core.Chunk{{Id: 2, SourceFile: "b.docx", Content: "b"}})
	require.NoError(t, err)

	_, err = repo.ReplaceSource(ctx, "a.docx", nil)
	require.NoError(t, err)

	_, err = repo.GetChunk(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	got, err := repo.GetChunk(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Content)
}

func TestUpdateChunks(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	_, err := repo.ReplaceSource(ctx, "notes.docx", []*core.Chunk{
		{Id: 1, SourceFile: "notes.docx", Content: "original"},
	})
	require.NoError(t, err)

	chunk, err := repo.GetChunk(ctx, 1)
	require.NoError(t, err)
	chunk.LinkedTable = "customers"
	chunk.LinkedIDs = []string{"101"}
	chunk.LinkType = core.LinkTypeDescribes
	chunk.Method = core.LinkMethodIdentifier

	updated, err := repo.UpdateChunks(ctx, chunk)
	require.NoError(t, err)
	require.Len(t, updated, 1)

	got, err := repo.GetChunk(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "customers", got.LinkedTable)
	assert.Equal(t, core.LinkMethodIdentifier, got.Method)
	assert.True(t, got.UpdatedAt.After(got.InsertedAt) || got.UpdatedAt.Equal(got.InsertedAt))
}

func TestUpdateChunksMissing(t *testing.T) {
	repo := setupChunkRepo(t)

	_, err := repo.UpdateChunks(context.Background(), &core.Chunk{Id: 42, SourceFile: "x", Content: "y"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetChunksSkipsMissing(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	_, err := repo.ReplaceSource(ctx, "notes.docx", []*core.Chunk{
		{Id: 1, SourceFile: "notes.docx", Content: "present"},
	})
	require.NoError(t, err)

	got, err := repo.GetChunks(ctx, 1, 99)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.ID(1), got[0].Id)
}

func TestIterateChunks(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	_, err := repo.ReplaceSource(ctx, "notes.docx", []*core.Chunk{
		{Id: 1, SourceFile: "notes.docx", Content: "a"},
		{Id: 2, SourceFile: "notes.docx", Content: "b"},
	})
	require.NoError(t, err)

	seen := 0
	err = repo.IterateChunks(ctx, func(chunk *core.Chunk) error {
		seen++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, seen)
}

func TestFindSimilar(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	_, err := repo.ReplaceSource(ctx, "notes.docx", []*core.Chunk{
		{Id: 1, SourceFile: "notes.docx", Content: "aligned", Vector: []float32{1, 0}},
		{Id: 2, SourceFile: "notes.docx", Content: "orthogonal", Vector: []float32{0, 1}},
		{Id: 3, SourceFile: "notes.docx", Content: "close", Vector: []float32{0.9, 0.1}},
	})
	require.NoError(t, err)

	results, err := repo.FindSimilar(ctx, []float32{1, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, core.ID(1), results[0].Chunk.Id)
	assert.Equal(t, core.ID(3), results[1].Chunk.Id)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}
