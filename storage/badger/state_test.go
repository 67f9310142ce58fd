package badger

import (
	"context"
	"testing"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/poiesic/dualstore/core"
	"github.com/poiesic/dualstore/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateLoadEmpty(t *testing.T) {
	repo, err := NewStateRepository(setupBackend(t))
	require.NoError(t, err)

	state, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Empty(t, state.Tables)
	assert.Empty(t, state.Relationships)
	assert.Empty(t, state.Pending)
	assert.Empty(t, state.Chunks)
	assert.Empty(t, state.DBToRAG)
}

func TestStateSaveLoadRoundTrip(t *testing.T) {
	repo, err := NewStateRepository(setupBackend(t))
	require.NoError(t, err)
	ctx := context.Background()

	pk := "id"
	state := core.NewIngestionState()
	state.Tables["customers"] = &core.TableSpec{
		Name:       "customers",
		Sources:    map[string]core.Fingerprint{"customers.xlsx": 42},
		Columns:    map[string]core.ColumnType{"id": core.ColumnTypeInteger, "name": core.ColumnTypeText},
		PrimaryKey: &pk,
		RowCount:   2,
	}
	state.AddRelationship(core.Relationship{
		FromTable: "orders", FromColumn: "customer_id", ToTable: "customers", ToColumn: "id",
	})
	state.AddPending(core.PendingRelationship{
		Table: "orders", Column: "region_id", AwaitedTableHint: "region",
	})
	state.RecordChunk(&core.Chunk{
		Id:          7,
		SourceFile:  "notes.docx",
		Content:     "Customer 101 detail",
		LinkedTable: "customers",
		LinkedIDs:   []string{"101"},
		LinkType:    core.LinkTypeDescribes,
	})

	require.NoError(t, repo.Save(ctx, state))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded.Table("customers"))
	assert.Equal(t, 2, loaded.Table("customers").RowCount)
	assert.Len(t, loaded.Relationships, 1)
	assert.Len(t, loaded.Pending, 1)
	require.Contains(t, loaded.Chunks, core.ID(7))
	assert.Equal(t, []core.ID{7}, loaded.ChunksForEntity("customers", "101"))
}

func TestStateSaveOverwrites(t *testing.T) {
	repo, err := NewStateRepository(setupBackend(t))
	require.NoError(t, err)
	ctx := context.Background()

	first := core.NewIngestionState()
	first.AddPending(core.PendingRelationship{Table: "a", Column: "b_id", AwaitedTableHint: "b"})
	require.NoError(t, repo.Save(ctx, first))

	second := core.NewIngestionState()
	require.NoError(t, repo.Save(ctx, second))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Pending)
}

func TestStateCorruptionIsSurfaced(t *testing.T) {
	backend := setupBackend(t)
	repo, err := NewStateRepository(backend)
	require.NoError(t, err)

	// Write garbage where the state document lives.
	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		if setErr := tx.Set([]byte("ingstate"), []byte("{not json")); setErr != nil {
			return setErr
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	_, err = repo.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrStateCorruption)

	// The corrupt document must survive for operator inspection.
	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		item, getErr := tx.Get([]byte("ingstate"))
		if getErr != nil {
			return getErr
		}
		return item.Value(func(val []byte) error {
			assert.Equal(t, "{not json", string(val))
			return nil
		})
	}, false)
	require.NoError(t, err)
}
