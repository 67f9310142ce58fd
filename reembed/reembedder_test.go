package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/poiesic/dualstore/ai/mock"
	"github.com/poiesic/dualstore/core"
	"github.com/poiesic/dualstore/storage"
	"github.com/poiesic/dualstore/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupChunks(t *testing.T, chunks ...*core.Chunk) storage.ChunkRepository {
	t.Helper()

	backend, err := badger.OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	repo, err := badger.NewChunkRepository(backend)
	require.NoError(t, err)

	if len(chunks) > 0 {
		_, err = repo.ReplaceSource(context.Background(), "source.docx", chunks)
		require.NoError(t, err)
	}
	return repo
}

func TestReembedderRegeneratesVectors(t *testing.T) {
	repo := setupChunks(t,
		&core.Chunk{Id: 1, SourceFile: "source.docx", Content: "first chunk", Vector: []float32{0.5}},
		&core.Chunk{Id: 2, SourceFile: "source.docx", Content: "second chunk", Vector: []float32{0.5}},
	)

	embedder := mock.NewMockEmbedder()
	var out bytes.Buffer
	reembedder := NewReembedder(repo, embedder, nil, &out)

	require.NoError(t, reembedder.Run(context.Background()))
	assert.Equal(t, 1, embedder.CallCount())

	chunk, err := repo.GetChunk(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, chunk.Vector, 384)
	assert.Contains(t, out.String(), "Reembedding complete")
}

func TestReembedderNormalizesVectors(t *testing.T) {
	repo := setupChunks(t,
		&core.Chunk{Id: 1, SourceFile: "source.docx", Content: "content"},
	)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{3, 4}}, nil
	}

	var out bytes.Buffer
	require.NoError(t, NewReembedder(repo, embedder, nil, &out).Run(context.Background()))

	chunk, err := repo.GetChunk(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, chunk.Vector[0], 0.001)
	assert.InDelta(t, 0.8, chunk.Vector[1], 0.001)
}

func TestReembedderEmptyCorpus(t *testing.T) {
	repo := setupChunks(t)

	var out bytes.Buffer
	err := NewReembedder(repo, mock.NewMockEmbedder(), nil, &out).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No chunks found")
}

func TestReembedderRetriesTransientFailures(t *testing.T) {
	repo := setupChunks(t,
		&core.Chunk{Id: 1, SourceFile: "source.docx", Content: "content"},
	)

	attempts := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts < 2 {
			return nil, errors.New("service unavailable")
		}
		return [][]float32{{1, 0}}, nil
	}

	config := DefaultConfig()
	config.RetryDelay = 0

	var out bytes.Buffer
	require.NoError(t, NewReembedder(repo, embedder, config, &out).Run(context.Background()))
	assert.Equal(t, 2, attempts)
}

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want []float32
	}{
		{"unit preserved", []float32{1, 0}, []float32{1, 0}},
		{"scaled down", []float32{3, 4}, []float32{0.6, 0.8}},
		{"zero stays zero", []float32{0, 0}, []float32{0, 0}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeVector(tt.in)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 0.001)
			}
		})
	}
}
