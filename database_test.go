package dualstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/dualstore/ai/mock"
	"github.com/poiesic/dualstore/extract"
	"github.com/poiesic/dualstore/reembed"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.TableRepository())
		assert.NotNil(t, db.ChunkRepository())
		assert.NotNil(t, db.StateRepository())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, db)

	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := db.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})

	t.Run("can create reembedder and relinker", func(t *testing.T) {
		reembedder := db.NewReembedder(reembed.DefaultConfig(), os.Stderr)
		require.NotNil(t, reembedder)

		relinker, err := db.NewRelinker(reembed.DefaultConfig(), os.Stderr)
		require.NoError(t, err)
		require.NotNil(t, relinker)
	})
}

func TestDatabase_EndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	doc := &extract.Document{
		FileID: "customers_q3.xlsx",
		Segments: []extract.Segment{
			{
				Name: "Accounts",
				Items: []extract.Item{
					{
						Kind:      extract.ItemTable,
						TableName: "Customers",
						Header:    []string{"ID", "Name", "Region"},
						Rows: [][]string{
							{"101", "Acme Corporation", "West"},
							{"102", "Globex Industries", "East"},
						},
					},
					{
						Kind: extract.ItemParagraph,
						Text: "Customer 101 renewed their annual contract early after a strong quarter of support interactions and has asked about upgrading to the premium tier before the next renewal window.",
					},
				},
			},
		},
	}

	ctx := context.Background()
	report, err := pipeline.IngestFiles(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesProcessed)
	assert.Equal(t, 1, report.TablesWritten)
	assert.Equal(t, 1, report.ChunksWritten)

	rows, err := db.TableRepository().Rows(ctx, "customers")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	searcher, err := db.NewSearcher()
	require.NoError(t, err)

	results, err := searcher.FindSimilar(ctx, "renewed annual contract", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Chunk.Content, "renewed")
}
