package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/dualstore/core"
	"github.com/poiesic/dualstore/storage"
)

// TableRepository implements storage.TableRepository for BadgerDB.
type TableRepository struct {
	backend *Backend
}

var _ storage.TableRepository = (*TableRepository)(nil)

// NewTableRepository creates a new TableRepository.
//
// Returns storage.TableRepository interface to enforce abstraction.
func NewTableRepository(backend *Backend) (storage.TableRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &TableRepository{backend: backend}, nil
}

// Close releases repository resources. The backend is owned by the
// caller and stays open.
func (r *TableRepository) Close() error {
	return nil
}

// Materialize fully rebuilds a table's stored rows.
// Existing rows are cleared first so the result depends only on the
// source input, never on prior contents.
func (r *TableRepository) Materialize(ctx context.Context, table string, columns []string, rows [][]string) error {
	if table == "" {
		return core.ErrEmptyTableName
	}

	if err := r.backend.deletePrefix(makeTableRowPrefix(table)); err != nil {
		return err
	}

	// A write batch keeps large rebuilds under badger's txn size limit.
	wb := r.backend.db.NewWriteBatch()
	defer wb.Cancel()

	if err := wb.Set(makeTableColumnsKey(table), storage.MarshalRow(columns)); err != nil {
		return err
	}
	for i, row := range rows {
		if err := wb.Set(makeTableRowKey(table, i), storage.MarshalRow(row)); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Columns returns the stored column order of a table.
func (r *TableRepository) Columns(ctx context.Context, table string) ([]string, error) {
	var columns []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeTableColumnsKey(table))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var umErr error
			columns, umErr = storage.UnmarshalRow(val)
			return umErr
		})
	}, false)
	return columns, err
}

// Rows returns every stored row of a table in insertion order.
func (r *TableRepository) Rows(ctx context.Context, table string) ([][]string, error) {
	return r.Query(ctx, table, nil)
}

// Query returns the rows matching a predicate, in insertion order.
// A nil predicate matches everything.
func (r *TableRepository) Query(ctx context.Context, table string, predicate func(row []string) bool) ([][]string, error) {
	var rows [][]string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeTableRowPrefix(table)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var row []string
			err := iter.Item().Value(func(val []byte) error {
				var umErr error
				row, umErr = storage.UnmarshalRow(val)
				return umErr
			})
			if err != nil {
				return err
			}
			if predicate == nil || predicate(row) {
				rows = append(rows, row)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ColumnValues returns every stored value of a table column in row order.
// Unknown tables and columns yield an empty slice.
func (r *TableRepository) ColumnValues(ctx context.Context, table, column string) ([]string, error) {
	columns, err := r.Columns(ctx, table)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	col := slices.Index(columns, column)
	if col < 0 {
		return nil, nil
	}

	rows, err := r.Rows(ctx, table)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if col < len(row) {
			values = append(values, row[col])
		}
	}
	return values, nil
}

// DropTable removes a table's rows and its column record.
func (r *TableRepository) DropTable(ctx context.Context, table string) error {
	if err := r.backend.deletePrefix(makeTableRowPrefix(table)); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeTableColumnsKey(table)); err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		return tx.Commit()
	}, true)
}
