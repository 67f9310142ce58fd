package storage

import (
	"errors"
	"testing"

	"github.com/poiesic/dualstore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Customer ID", "customer_id"},
		{"  Total (USD)  ", "total_usd"},
		{"order-date", "orderdate"},
		{"Región", "regin"},
		{"already_fine", "already_fine"},
		{"A\tB", "a_b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeColumnName(tt.in), "NormalizeColumnName(%q)", tt.in)
	}
}

func TestNormalizeColumnsCollision(t *testing.T) {
	_, err := NormalizeColumns([]string{"Customer ID", "customer id"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaConflict))

	columns, err := NormalizeColumns([]string{"ID", "Name", "Country"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "country"}, columns)
}

func TestInferColumnType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   core.ColumnType
	}{
		{"integers", []string{"1", "42", "1,000"}, core.ColumnTypeInteger},
		{"reals", []string{"1.5", "2", "3.25"}, core.ColumnTypeReal},
		{"booleans", []string{"true", "no", "YES"}, core.ColumnTypeBool},
		{"timestamps", []string{"2026-01-15", "2026-02-01"}, core.ColumnTypeTimestamp},
		{"text", []string{"Alice", "Bob"}, core.ColumnTypeText},
		{"mixed", []string{"1", "Alice"}, core.ColumnTypeText},
		{"empty cells ignored", []string{"", "7", ""}, core.ColumnTypeInteger},
		{"all empty", []string{"", ""}, core.ColumnTypeText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferColumnType(tt.values))
		})
	}
}

func TestInferColumns(t *testing.T) {
	types := InferColumns(
		[]string{"id", "name", "joined"},
		[][]string{
			{"1", "Alice", "2026-01-02"},
			{"2", "Bob", "2026-03-04"},
		})

	assert.Equal(t, core.ColumnTypeInteger, types["id"])
	assert.Equal(t, core.ColumnTypeText, types["name"])
	assert.Equal(t, core.ColumnTypeTimestamp, types["joined"])
}
