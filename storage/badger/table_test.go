package badger

import (
	"context"
	"testing"

	"github.com/poiesic/dualstore/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend
}

func setupTableRepo(t *testing.T) storage.TableRepository {
	t.Helper()
	repo, err := NewTableRepository(setupBackend(t))
	require.NoError(t, err)
	return repo
}

func TestMaterializeAndRows(t *testing.T) {
	repo := setupTableRepo(t)
	ctx := context.Background()

	columns := []string{"id", "name"}
	rows := [][]string{{"1", "Alice"}, {"2", "Bob"}}

	require.NoError(t, repo.Materialize(ctx, "customers", columns, rows))

	gotCols, err := repo.Columns(ctx, "customers")
	require.NoError(t, err)
	assert.Equal(t, columns, gotCols)

	gotRows, err := repo.Rows(ctx, "customers")
	require.NoError(t, err)
	assert.Equal(t, rows, gotRows)
}

func TestMaterializeIsFullRebuild(t *testing.T) {
	repo := setupTableRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Materialize(ctx, "customers",
		[]string{"id", "name"},
		[][]string{{"1", "Alice"}, {"2", "Bob"}, {"3", "Carol"}}))

	// Rebuild with fewer rows: stale rows must not survive.
	replacement := [][]string{{"9", "Zed"}}
	require.NoError(t, repo.Materialize(ctx, "customers", []string{"id", "name"}, replacement))

	rows, err := repo.Rows(ctx, "customers")
	require.NoError(t, err)
	assert.Equal(t, replacement, rows)
}

func TestMaterializeIdempotent(t *testing.T) {
	repo := setupTableRepo(t)
	ctx := context.Background()

	columns := []string{"id", "total"}
	rows := [][]string{{"1", "10"}, {"2", "20"}}

	require.NoError(t, repo.Materialize(ctx, "orders", columns, rows))
	first, err := repo.Rows(ctx, "orders")
	require.NoError(t, err)

	require.NoError(t, repo.Materialize(ctx, "orders", columns, rows))
	second, err := repo.Rows(ctx, "orders")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestQueryPredicate(t *testing.T) {
	repo := setupTableRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Materialize(ctx, "orders",
		[]string{"id", "customer_id"},
		[][]string{{"1", "101"}, {"2", "102"}, {"3", "101"}}))

	matched, err := repo.Query(ctx, "orders", func(row []string) bool {
		return row[1] == "101"
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "101"}, {"3", "101"}}, matched)
}

func TestColumnValues(t *testing.T) {
	repo := setupTableRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Materialize(ctx, "customers",
		[]string{"id", "name"},
		[][]string{{"1", "Alice"}, {"2", "Bob"}}))

	values, err := repo.ColumnValues(ctx, "customers", "id")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, values)

	// Unknown table and column are empty domains, not errors.
	values, err = repo.ColumnValues(ctx, "missing", "id")
	require.NoError(t, err)
	assert.Empty(t, values)

	values, err = repo.ColumnValues(ctx, "customers", "missing")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestColumnsNotFound(t *testing.T) {
	repo := setupTableRepo(t)

	_, err := repo.Columns(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDropTable(t *testing.T) {
	repo := setupTableRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Materialize(ctx, "tmp", []string{"id"}, [][]string{{"1"}}))
	require.NoError(t, repo.DropTable(ctx, "tmp"))

	_, err := repo.Columns(ctx, "tmp")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	rows, err := repo.Rows(ctx, "tmp")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTableNamePrefixIsolation(t *testing.T) {
	repo := setupTableRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Materialize(ctx, "orders", []string{"id"}, [][]string{{"1"}}))
	require.NoError(t, repo.Materialize(ctx, "orders_archive", []string{"id"}, [][]string{{"2"}, {"3"}}))

	rows, err := repo.Rows(ctx, "orders")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
